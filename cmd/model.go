package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/comfortloop/internal/adapters/inference"
)

func newModelCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Manage the skin temperature model",
	}

	var path string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the sample linear model to the configured model path",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path == "" {
				path = c.cfg.Model.Path
			}
			if path == "" {
				return fmt.Errorf("no model path configured")
			}
			if err := inference.WriteSampleModel(path); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "wrote", path)
			return nil
		},
	}
	initCmd.Flags().StringVar(&path, "path", "", "model file (defaults to model.path)")
	cmd.AddCommand(initCmd)
	return cmd
}
