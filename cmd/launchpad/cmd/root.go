package cmd

import (
	"fmt"
	"os"

	"github.com/rovshanmuradov/launchpad/internal/config"
	"github.com/rovshanmuradov/launchpad/internal/utils/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type app struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *logger.Logger
}

func NewRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "launchpad",
		Short: "Bonding-curve token launchpad",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			a.close()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (yaml, json or toml)")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "also log to the console")

	cmd.AddCommand(
		newDeriveCmd(a),
		newSimulateCmd(a),
		newConfigCmd(a),
		newJournalCmd(a),
	)
	return cmd
}

func (a *app) init() error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.logger, err = logger.New(&logger.Config{
		LogFile:     cfg.Log.File,
		MaxSize:     cfg.Log.MaxSize,
		MaxAge:      cfg.Log.MaxAge,
		MaxBackups:  cfg.Log.MaxBackups,
		Compress:    true,
		Development: cfg.Log.Development,
		Quiet:       !a.verbose,
	})
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	a.logger.Debug("Configuration loaded", zap.String("path", a.configPath))
	return nil
}

func (a *app) close() {
	if a.logger == nil {
		return
	}
	if err := a.logger.Sync(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to sync logger: %v\n", err)
	}
}
