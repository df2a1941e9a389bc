//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkatc "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/burn-severity-etl/internal/domain"
)

// startKafka launches a single-node Kafka container and returns its broker
// address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := kafkatc.Run(ctx,
		"confluentinc/confluent-local:7.5.0",
		kafkatc.WithClusterID("test-cluster"),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err, "start kafka container")

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err, "resolve kafka brokers")
	require.NotEmpty(t, brokers)

	return brokers[0]
}

// createTopic creates a single-partition topic on the broker.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err, "dial kafka")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "resolve controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err, "dial controller")
	defer controllerConn.Close()

	require.NoError(t, controllerConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}), "create topic %s", topic)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testGrid() domain.Grid {
	return domain.Grid{Width: 4, Height: 4, CRS: "EPSG:32755", OriginX: 500000, OriginY: 6000000, CellSize: 20}
}

func testScene(id string, at time.Time, nir, swir2 float64) domain.Scene {
	g := testGrid()
	fill := func(v float64) []float64 {
		out := make([]float64, g.Pixels())
		for i := range out {
			out[i] = v
		}
		return out
	}
	return domain.Scene{
		ID:         id,
		Sensor:     "sentinel2",
		AcquiredAt: at,
		Grid:       g,
		Bands:      map[string][]float64{"B8": fill(nir), "B12": fill(swir2)},
		Quality:    make([]uint32, g.Pixels()),
	}
}

func writeScene(t *testing.T, dir string, scene domain.Scene) {
	t.Helper()
	data, err := json.Marshal(scene)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, scene.ID+".json"), data, 0o644))
}

// requestPayload builds an analysis request covering the test grid.
func requestPayload(t *testing.T) []byte {
	t.Helper()
	g := testGrid()
	maxX := g.OriginX + float64(g.Width)*g.CellSize
	minY := g.OriginY - float64(g.Height)*g.CellSize
	payload, err := json.Marshal(map[string]any{
		"sensor":     "sentinel2",
		"pre_start":  "2019-11-01T00:00:00Z",
		"pre_end":    "2019-12-01T00:00:00Z",
		"post_start": "2020-02-01T00:00:00Z",
		"post_end":   "2020-03-01T00:00:00Z",
		"aoi": [][2]float64{
			{g.OriginX, minY},
			{maxX, minY},
			{maxX, g.OriginY},
			{g.OriginX, g.OriginY},
		},
	})
	require.NoError(t, err)
	return payload
}
