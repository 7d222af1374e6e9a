package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/Ciel-et-Terre-International/Wind-Data-v1/internal/adapter/csvdir"
	httpadapter "github.com/Ciel-et-Terre-International/Wind-Data-v1/internal/adapter/http"
	kafkaadapter "github.com/Ciel-et-Terre-International/Wind-Data-v1/internal/adapter/kafka"
	"github.com/Ciel-et-Terre-International/Wind-Data-v1/internal/adapter/parquet"
	"github.com/Ciel-et-Terre-International/Wind-Data-v1/internal/adapter/xlsx"
	"github.com/Ciel-et-Terre-International/Wind-Data-v1/internal/domain"
	"github.com/Ciel-et-Terre-International/Wind-Data-v1/internal/observability"
	"github.com/Ciel-et-Terre-International/Wind-Data-v1/internal/pipeline"
)

func newWorkerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Consume analysis requests from Kafka and publish result tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWorker(cmd.Context())
		},
	}
}

func runWorker(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)

	stages := pipeline.Stages{
		Sources:   csvdir.NewLoader(domain.DefaultPrefixRules, logger),
		Artifacts: []pipeline.ArtifactWriter{csvdir.NewWriter(cfg.OutputDir, logger)},
		Requests:  reader,
		Decoder:   pipeline.NewRequestDecoder(cfg.DataDir),
		Results:   writer,
	}
	if cfg.XLSXEnabled {
		stages.Artifacts = append(stages.Artifacts, xlsx.NewWriter(cfg.OutputDir, logger))
	}
	if cfg.ParquetEnabled {
		stages.Series = parquet.NewWriter(cfg.OutputDir, logger)
	}

	analyzer := pipeline.NewAnalyzer(cfg.GumbelMinYears, cfg.DirectionBinWidth, logger, metrics)
	p := pipeline.New(stages, analyzer, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start the request loop.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}
