package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/erazemk/trznica/internal/config"
)

var (
	// Global flags
	envFile  string
	dbFlag   string
	logFlag  string
	logLevel string

	cfg      *config.Config
	closeLog func()
)

var rootCmd = &cobra.Command{
	Use:   "trznica",
	Short: "Trznica - multi-tenant marketplace server",
	Long: `Trznica serves a marketplace where companies and partners sell products,
farmers list animals, and customers and partners check out their carts.

Settings come from the environment (TRZNICA_*), optionally from a .env file,
and are overridden by flags.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(envFile)
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		if flags.Changed("db") {
			loaded.DB = dbFlag
		}
		if flags.Changed("log") {
			loaded.LogPath = logFlag
		}
		if flags.Changed("log-level") {
			level, err := config.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			loaded.LogLevel = level
		}
		if flags.Changed("addr") {
			loaded.Addr = addrFlag
		}
		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		cfg = loaded

		closeLog, err = setupLogger(cfg.LogPath, cfg.LogLevel)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if closeLog != nil {
			closeLog()
		}
	},
}

func init() {
	defaults := config.Default()

	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "environment file to load if it exists")
	rootCmd.PersistentFlags().StringVarP(&dbFlag, "db", "d", defaults.DB, "SQLite database path or postgres:// URL")
	rootCmd.PersistentFlags().StringVarP(&logFlag, "log", "l", "", "log file path (default: stdout/stderr only)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaults.LogLevel.String(), "debug, info, warn or error")

	rootCmd.AddCommand(serveCmd, initCmd, stockCmd)
}
