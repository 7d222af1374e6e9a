package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/Ciel-et-Terre-International/Wind-Data-v1/internal/config"
	"github.com/Ciel-et-Terre-International/Wind-Data-v1/internal/report"
)

// Writer publishes result tables to a Kafka topic.
// It implements pipeline.ResultLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured result topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaResultTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// TableMessage is the JSON value of one result message.
type TableMessage struct {
	RequestID string     `json:"request_id"`
	Site      string     `json:"site"`
	Table     string     `json:"table"`
	Columns   []string   `json:"columns"`
	Rows      [][]string `json:"rows"`
}

// LoadResults publishes one message per table in a single WriteMessages call.
// Messages are keyed by <site>/<table>.
func (w *Writer) LoadResults(ctx context.Context, result report.Result) error {
	if len(result.Tables) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(result.Tables))
	for i, t := range result.Tables {
		msg, err := serializeToMessage(result, t)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish results: %w", err)
	}
	w.logger.Debug("results published", "request_id", result.RequestID, "site", result.Site, "tables", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals one table of a result into a Kafka message.
func serializeToMessage(result report.Result, t report.Table) (kafkago.Message, error) {
	rows := t.Rows
	if rows == nil {
		rows = [][]string{}
	}
	data, err := json.Marshal(TableMessage{
		RequestID: result.RequestID,
		Site:      result.Site,
		Table:     t.Name,
		Columns:   t.Columns,
		Rows:      rows,
	})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize table %s: %w", t.Name, err)
	}
	return kafkago.Message{
		Key:   []byte(result.Site + "/" + t.Name),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "request_id", Value: []byte(result.RequestID)},
			{Key: "table", Value: []byte(t.Name)},
			{Key: "processed_at", Value: []byte(result.ProcessedAt.Format(time.RFC3339))},
		},
	}, nil
}
