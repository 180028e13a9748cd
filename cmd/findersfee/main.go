// Command findersfee runs the lost-and-found marketplace server and its
// maintenance tasks.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/erazemk/findersfee/internal/config"
	"github.com/erazemk/findersfee/internal/logging"
)

var (
	configPath string
	dbPath     string
	logLevel   string
	logFile    string
	addr       string

	rootCmd = &cobra.Command{
		Use:           "findersfee",
		Short:         "Lost and found marketplace server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (initializes the database on first run)",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Create the database and the admin account",
		Args:  cobra.NoArgs,
		RunE:  runInit,
	}

	promoteCmd = &cobra.Command{
		Use:   "promote <email>",
		Short: "Give an account the admin role",
		Args:  cobra.ExactArgs(1),
		RunE:  runPromote,
	}

	reconcileCmd = &cobra.Command{
		Use:   "reconcile",
		Short: "Retry closing items of approved claims that failed to close",
		Args:  cobra.NoArgs,
		RunE:  runReconcile,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "SQLite database path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&logFile, "log", "l", "", "also write logs to this file")

	serveCmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address")

	rootCmd.AddCommand(serveCmd, initCmd, promoteCmd, reconcileCmd)
}

// loadConfig reads the configuration and applies command-line overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}
	if addr != "" {
		cfg.Addr = addr
	}
	return cfg, cfg.Validate()
}

// setup loads the configuration and installs the logger.
func setup() (config.Config, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return cfg, nil, fmt.Errorf("loading config: %w", err)
	}
	_, cleanup, err := logging.Setup(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	if err != nil {
		return cfg, nil, err
	}
	return cfg, cleanup, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
