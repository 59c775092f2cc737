package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/comfortloop/internal/config"
	"github.com/okian/comfortloop/pkg/logger"
)

// cli carries state shared by every subcommand.
type cli struct {
	cfgFile  string
	logLevel string
	cfg      *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "comfortloop",
		Short: "Closed-loop thermal comfort controller",
		Long: `comfortloop turns wearable vitals into skin temperature estimates, classifies
them against comfort thresholds and steps the air conditioner setpoint inside
the occupant's comfort range, at most once per debounce window.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.load,
	}
	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "YAML config file (overrides "+config.EnvConfigFile+")")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newServeCmd(c),
		newTickCmd(c),
		newComfortCmd(c),
		newSimulateCmd(c),
		newModelCmd(c),
	)
	return root
}

// load reads .env, then the layered config, and applies the log level.
func (c *cli) load(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	if c.cfgFile != "" {
		if err := os.Setenv(config.EnvConfigFile, c.cfgFile); err != nil {
			return fmt.Errorf("set %s: %w", config.EnvConfigFile, err)
		}
	}
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(cmd.Context(), "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	c.cfg = cfg
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
