//go:build integration

package integration_test

import (
	"context"
	"io"
	"log/slog"
	"net"
	"path/filepath"
	"strconv"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/wildfire-dashboard/internal/adapter/csvgz"
	"github.com/couchcryptid/wildfire-dashboard/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node broker for the duration of the test and
// returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := kafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		kafka.WithClusterID("test-cluster"),
	)
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a single-partition topic through the cluster controller.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// writeDataset writes records to a compressed dataset in a temp dir.
func writeDataset(t *testing.T, records []domain.FireRecord) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fires.csv.gz")
	w, err := csvgz.Create(path)
	require.NoError(t, err)
	for _, rec := range records {
		require.NoError(t, w.WriteRecord(rec))
	}
	require.NoError(t, w.Close())
	return path
}

// fixtureRecords gives CA a rising count, TX a falling one, and NV a single
// year so its slope is undefined.
func fixtureRecords() []domain.FireRecord {
	var out []domain.FireRecord
	add := func(state string, year, n int) {
		for i := range n {
			out = append(out, domain.FireRecord{
				Year:       year,
				DayOfYear:  float64(10 + i*30),
				CauseCode:  1,
				CauseDescr: "Lightning",
				Longitude:  -120,
				Latitude:   38,
				Size:       1.5,
				SizeClass:  "B",
				State:      state,
			})
		}
	}
	add("CA", 2010, 1)
	add("CA", 2011, 2)
	add("CA", 2012, 3)
	add("TX", 2010, 3)
	add("TX", 2011, 2)
	add("TX", 2012, 1)
	add("NV", 2012, 2)
	return out
}
