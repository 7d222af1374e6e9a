// Command windstats computes multi-source wind statistics for measurement
// sites. It runs either once for a single site (analyze) or as a worker that
// consumes analysis requests from Kafka (worker).
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Ciel-et-Terre-International/Wind-Data-v1/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "windstats",
		Short:        "Wind statistics across multiple weather data sources",
		SilenceUsage: true,
	}
	root.AddCommand(newAnalyzeCommand(), newWorkerCommand())
	return root
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return nil, err
	}
	return cfg, nil
}
