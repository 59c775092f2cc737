package main

import (
	"github.com/spf13/cobra"

	"github.com/okian/comfortloop/internal/domain/comfort"
	"github.com/okian/comfortloop/internal/domain/model"
)

func newComfortCmd(c *cli) *cobra.Command {
	var (
		gender   string
		age, bmi float64
		save     bool
	)
	cmd := &cobra.Command{
		Use:   "comfort",
		Short: "Resolve the comfort range for an occupant profile",
		Example: `  comfortloop comfort --gender F --age 65 --bmi 22
  comfortloop comfort --gender M --age 30 --bmi 27 --save`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, err := model.ParseGender(gender)
			if err != nil {
				return err
			}
			p := model.Profile{Gender: g, Age: age, BMI: bmi}
			if err := p.Validate(); err != nil {
				return err
			}
			if !save {
				return printJSON(cmd.OutOrStdout(), comfort.Resolve(p))
			}

			ctx := cmd.Context()
			comps, err := openComponents(ctx, c.cfg)
			if err != nil {
				return err
			}
			defer func() { _ = comps.close() }()

			rng, err := newService(c.cfg, comps).ConfigureComfortRange(ctx, p)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rng)
		},
	}
	cmd.Flags().StringVar(&gender, "gender", "", "F or M (0 or 1)")
	cmd.Flags().Float64Var(&age, "age", 0, "age in years")
	cmd.Flags().Float64Var(&bmi, "bmi", 0, "body mass index")
	cmd.Flags().BoolVar(&save, "save", false, "persist the range to the configured store")
	_ = cmd.MarkFlagRequired("gender")
	_ = cmd.MarkFlagRequired("age")
	_ = cmd.MarkFlagRequired("bmi")
	return cmd
}
