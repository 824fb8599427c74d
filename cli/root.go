// Package cli implements the yamlmedic command-line interface.
package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/yamlmedic/yamlmedic/pkg/config"
	"github.com/yamlmedic/yamlmedic/pkg/logger"
)

// RootCmd builds the yamlmedic root command.
func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "yamlmedic",
		Short: "Audit and heal structurally broken YAML manifests",
		Long: "yamlmedic repairs indentation disasters, inconsistent line endings and\n" +
			"multi-document corruption in YAML manifests so that a standards-compliant\n" +
			"parser can load them, without ever touching anchors, aliases, directives\n" +
			"or block scalars.",
		SilenceUsage: true,
	}
	// Accept underscore spellings like --log_level for the shared flags.
	root.PersistentFlags().SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
	root.PersistentFlags().String("log-level", "info", "logging level (debug, info, warn, error)")
	root.PersistentFlags().Bool("log-json", false, "emit logs as JSON")
	root.PersistentFlags().Bool("log-source", false, "include caller positions in logs")

	root.AddCommand(
		HealCmd(),
		WatchCmd(),
	)
	return root
}

// setupCommand loads configuration and initializes logging from the shared
// flags. Flag values override environment-provided settings.
func setupCommand(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.NewLoader().Load()
	if err != nil {
		return nil, err
	}
	logLevel, logJSON, logSource, err := logger.GetLoggerConfig(cmd)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("log-level") || cfg.Log.Level == "" {
		cfg.Log.Level = logLevel
	}
	if cmd.Flags().Changed("log-json") {
		cfg.Log.JSON = logJSON
	}
	if cmd.Flags().Changed("log-source") {
		cfg.Log.Source = logSource
	}
	logger.SetupLogger(cfg.Log.Level, cfg.Log.JSON, cfg.Log.Source)
	return cfg, nil
}
