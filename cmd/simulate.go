package main

import (
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/comfortloop/internal/domain/model"
	"github.com/okian/comfortloop/internal/simulate"
)

func newSimulateCmd(_ *cli) *cobra.Command {
	var (
		cfg      simulate.Config
		gender   string
		age, bmi float64
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Post synthetic wearable samples to a running service",
		Example: `  comfortloop simulate --samples 3 --scenario warm --tick
  comfortloop simulate --url http://localhost:8000 --samples 100 --interval 2s --gender F --age 30 --bmi 22`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if gender != "" {
				g, err := model.ParseGender(gender)
				if err != nil {
					return err
				}
				cfg.Profile = &simulate.Profile{Age: age, BMI: bmi, Female: g == model.Female}
			}
			stats, err := simulate.Run(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			if stats.Failed > 0 {
				return fmt.Errorf("%d of %d samples failed", stats.Failed, stats.Submitted)
			}
			return printJSON(cmd.OutOrStdout(), stats)
		},
	}
	cmd.Flags().StringVar(&cfg.BaseURL, "url", "http://localhost:8000", "base URL of the service")
	cmd.Flags().IntVar(&cfg.Samples, "samples", 3, "number of samples")
	cmd.Flags().IntVar(&cfg.Workers, "workers", runtime.NumCPU(), "concurrent submitters")
	cmd.Flags().DurationVar(&cfg.Interval, "interval", 0, "delay between samples")
	cmd.Flags().DurationVar(&cfg.Timeout, "timeout", 10*time.Second, "HTTP request timeout")
	cmd.Flags().StringVar(&cfg.Scenario, "scenario", simulate.ScenarioMixed, "warm, cool or mixed")
	cmd.Flags().Uint64Var(&cfg.Seed, "seed", 0, "random seed (0 = time based)")
	cmd.Flags().BoolVar(&cfg.Tick, "tick", false, "request one control cycle afterwards")
	cmd.Flags().StringVar(&gender, "gender", "", "attach a profile: F or M")
	cmd.Flags().Float64Var(&age, "age", 30, "profile age")
	cmd.Flags().Float64Var(&bmi, "bmi", 22, "profile BMI")
	return cmd
}
