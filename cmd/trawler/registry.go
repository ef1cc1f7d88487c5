package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newRegistryCmd() *cobra.Command {
	reg := &cobra.Command{
		Use:   "registry",
		Short: "Inspect the discovery registry",
	}

	var published bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List registry entries ordered by key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			entries, err := a.compile.Registry.List(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "LAST SEEN\tPICKED\tTITLE\tKEY")
			for _, e := range entries {
				if published && !e.Published() {
					continue
				}
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", e.LastSeen.Format("2006-01-02"), e.TimesPicked, e.Title, e.Key)
			}
			return tw.Flush()
		},
	}
	list.Flags().BoolVar(&published, "published", false, "only entries that made it into a digest")

	reg.AddCommand(list)
	return reg
}
