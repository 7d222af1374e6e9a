//go:build integration

package integration_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node broker for the duration of the test and
// returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("wind-stats-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate kafka container: %v", err)
		}
	})

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err, "kafka brokers")
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a single-partition topic through the cluster controller.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err, "dial broker")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "find controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err, "dial controller")
	defer controllerConn.Close()

	require.NoError(t, controllerConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}), "create topic %s", topic)
}

// writeSite writes one daily source file per entry of years (source → number
// of years) into dataDir/name and returns the site folder.
func writeSite(t *testing.T, dataDir, name string, years map[string]int) string {
	t.Helper()
	folder := filepath.Join(dataDir, name)
	require.NoError(t, os.MkdirAll(folder, 0o755))

	for source, n := range years {
		var b strings.Builder
		b.WriteString("time,windspeed_mean,windspeed_gust\n")
		start := time.Date(2024-n, 1, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		for d, i := start, 0; d.Before(end); d, i = d.AddDate(0, 0, 1), i+1 {
			mean := 3 + float64(i%6)
			if d.Month() == time.October && d.Day() == 3 {
				mean = 19 + float64((d.Year()*5)%13)
			}
			fmt.Fprintf(&b, "%s,%g,%g\n", d.Format(time.DateOnly), mean, mean*1.45)
		}
		path := filepath.Join(folder, source+"_"+name+".csv")
		require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	}
	return folder
}
