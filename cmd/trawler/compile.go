package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"trawler/internal/platform/logger"
	"trawler/internal/platform/net/http/bind"
	"trawler/internal/services/compile/domain"

	"github.com/spf13/cobra"
)

func newCompileCmd() *cobra.Command {
	var (
		opts   domain.RunOptions
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Run the pipeline once and write the digest",
		Long:  "Gathers candidates from every source, scores and judges them, and writes the digest, decision log and registry under the data directory. Exits non-zero when the quality floor is not met.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := bind.Struct(opts); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			res, err := a.compile.Runner.Run(ctx, opts)
			if err != nil {
				return fmt.Errorf("compile failed: %w", err)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res.Digest)
			}

			d := res.Digest
			logger.Get().Info().
				Str("digest_id", d.ID).
				Str("run_id", d.RunID).
				Int("picks", len(d.Discoveries)).
				Bool("quiet_week", d.IsQuietWeek).
				Bool("dry_run", opts.DryRun).
				Msg("compile: done")

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", d.Name, d.Date.Format("2006-01-02"))
			for i, p := range d.Discoveries {
				fmt.Fprintf(out, "%2d. %s  %s\n", i+1, p.Title, p.Source.URL)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.DryRun, "dry-run", false, "compute everything but only persist the decision log")
	f.StringVar(&opts.Name, "name", "", "digest name override")
	f.IntVar(&opts.MaxPicks, "max-picks", 0, "maximum picks (0 uses TRAWLER_MAX_PICKS)")
	f.IntVar(&opts.MinPicks, "min-picks", 0, "quality floor (0 uses TRAWLER_MIN_PICKS)")
	f.Float64Var(&opts.MinScore, "min-score", 0, "minimum rubric score (0 uses TRAWLER_MIN_SCORE)")
	f.Float64Var(&opts.BudgetCap, "budget-cap", 0, "metered spend cap in USD (0 uses TRAWLER_BUDGET_CAP)")
	f.BoolVar(&asJSON, "json", false, "print the digest as JSON")
	return cmd
}
