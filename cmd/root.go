package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/heartrisk/internal/artifact"
	"github.com/abhisek/heartrisk/internal/config"
	"github.com/abhisek/heartrisk/internal/logging"
	"github.com/abhisek/heartrisk/internal/store"
)

var (
	cfg    config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "heartrisk",
	Short: "Heart disease risk prediction in the terminal",
	Long: `heartrisk collects thirteen clinical measurements in a terminal form and
reports "High Risk" or "Low Risk" from a pre-trained classifier loaded from
an artifact bundle.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := resolveConfig(cmd); err != nil {
			return err
		}
		verbose, _ := cmd.Flags().GetBool("verbose")
		l, err := logging.New(cfg.Logging, verbose)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("artifacts", "", "Artifact bundle directory (overrides HEARTRISK_ARTIFACTS)")
	pf.String("config", "", "Config file (default $XDG_CONFIG_HOME/heartrisk/config.yaml)")
	pf.String("db", "", "Path to SQLite history database (overrides HEARTRISK_DB)")
	pf.Bool("history", false, "Store completed predictions in the local history database")
	pf.BoolP("verbose", "v", false, "Log at debug level")

	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveConfig loads defaults, the config file and the environment, then
// applies any flags the user set.
func resolveConfig(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	c, err := config.Load(path)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("artifacts") {
		c.Artifacts, _ = cmd.Flags().GetString("artifacts")
	}
	if cmd.Flags().Changed("db") {
		c.History.DB, _ = cmd.Flags().GetString("db")
	}
	if cmd.Flags().Changed("history") {
		c.History.Enabled, _ = cmd.Flags().GetBool("history")
	}
	cfg = c
	return nil
}

// resolveDBPath returns the configured database path, then the default XDG
// path.
func resolveDBPath() (string, error) {
	if p := cfg.History.DB; p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// openStore opens the history database.
func openStore() (*store.Store, error) {
	dbPath, err := resolveDBPath()
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	logger.Debug("history store opened", zap.String("path", dbPath))
	return st, nil
}

// loadBundle loads the configured artifact bundle.
func loadBundle(ctx context.Context) (*artifact.Bundle, error) {
	b, err := artifact.Load(ctx, cfg.Artifacts, artifact.Options{
		RequireChecksums: cfg.RequireChecksums,
		Logger:           logger,
	})
	if err != nil {
		logger.Error("artifact load failed", zap.String("dir", cfg.Artifacts), zap.Error(err))
		return nil, fmt.Errorf("load artifacts from %s: %w", cfg.Artifacts, err)
	}
	return b, nil
}
