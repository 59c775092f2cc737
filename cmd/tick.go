package main

import (
	"github.com/spf13/cobra"
)

func newTickCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "tick",
		Short: "Run one adjustment cycle against the configured store and device",
		Long: `tick restores the persisted debounce window, runs a single adjustment cycle
and prints its report. A cycle inside the window reports "debounced".`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			comps, err := openComponents(ctx, c.cfg)
			if err != nil {
				return err
			}
			defer func() { _ = comps.close() }()

			svc := newService(c.cfg, comps)
			if err := svc.RestoreState(ctx); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), svc.OnSchedulerTick(ctx))
		},
	}
}
