// Package main is the goGate command: it serves the guard pipeline in front
// of a page handler, issues test session tokens, lints configuration and
// load-tests the session registry.
package main

import (
	"fmt"
	"os"

	goGate "github.com/MrEthical07/goGate"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cliState is shared by all subcommands after PersistentPreRunE.
type cliState struct {
	configPath string
	logLevel   string

	config goGate.Config
	logger *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	st := &cliState{}

	rootCmd := &cobra.Command{
		Use:   "goGate",
		Short: "Localized, authenticated request gate",
		Long: `goGate runs every page request through an ordered guard pipeline:
auth guard, device guard, then locale guard.

Configuration is read from a YAML file (--config) over built-in defaults,
then NODE_ENV, AUTH_SECRET, AUTH_URL, REDIS_ADDR and REDIS_PASSWORD are
applied on top.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := goGate.LoadConfig(st.configPath)
			if err != nil {
				return err
			}
			if st.logLevel != "" {
				cfg.Log.Level = st.logLevel
			}
			st.config = cfg

			logger, err := newLogger(cfg.Log)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			st.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if st.logger != nil {
				_ = st.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&st.configPath, "config", "c", "", "Path to configuration file (YAML)")
	rootCmd.PersistentFlags().StringVarP(&st.logLevel, "log-level", "l", "", "Log level override (debug, info, warn, error)")

	rootCmd.AddCommand(
		newServeCmd(st),
		newTokenCmd(st),
		newCheckCmd(st),
		newLoadtestCmd(st),
	)
	return rootCmd
}

func newLogger(cfg goGate.LogConfig) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if cfg.Development {
		config = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		config.Level = level
	}
	return config.Build()
}
