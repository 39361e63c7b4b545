package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cyderes/trending-topics-service/internal/config"
)

// app carries the configuration and logger built once per invocation
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "trendsd",
		Short: "Trending topics research and curation service",
		Long: `trendsd researches trending content topics for a brand with an LLM,
stores curated trends and serves them over an HTTP API.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			a.cfg = cfg
			a.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: parseLevel(cfg.Log.Level),
			}))
			return nil
		},
	}

	rootCmd.AddCommand(a.serveCmd(), a.researchCmd())
	return rootCmd
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
