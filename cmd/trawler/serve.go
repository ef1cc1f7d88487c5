package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"trawler/internal/platform/config"
	"trawler/internal/platform/logger"
	phttp "trawler/internal/platform/net/http"
	"trawler/internal/services/api"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the operator API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			hc := config.New().Prefix("TRAWLER_HTTP_")
			if addr == "" {
				addr = hc.MayString("ADDR", ":8080")
			}

			srv := phttp.NewServer(addr)
			api.Mount(srv.Router(), api.Options{
				Deps:        a.deps,
				Compile:     a.compile,
				CORSOrigins: hc.MayCSV("CORS_ORIGINS", nil),
			})

			logger.Get().Info().Str("addr", addr).Msg("serve: api ready")
			return srv.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default TRAWLER_HTTP_ADDR or :8080)")
	return cmd
}
