package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// defaultDataDir is where search writes runs and where trace and runs read them.
const defaultDataDir = "./data"

var (
	logLevel string
	logger   *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "dlogsolve",
	Short: "Discrete logarithm solver and hash-formula search",
	Long: `dlogsolve solves g^x ≡ h (mod p) with baby-step giant-step or Pollard's rho,
and searches for an (input, formula) pair that produces a given 32-bit hash.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		var level slog.Level
		switch logLevel {
		case "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		default:
			level = slog.LevelInfo
		}

		// Logs go to stderr; stdout carries prompts and results.
		opts := &slog.HandlerOptions{Level: level}
		handler := slog.NewJSONHandler(os.Stderr, opts)
		logger = slog.New(handler)
		slog.SetDefault(logger)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
}
