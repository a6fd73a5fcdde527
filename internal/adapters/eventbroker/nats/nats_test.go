package nats_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	natsadapter "object-gateway/internal/adapters/eventbroker/nats"
	"object-gateway/internal/config"
	"object-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupNATSContainer(t *testing.T) (string, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "nats:2.10-alpine",
		ExposedPorts: []string{"4222/tcp"},
		Cmd:          []string{"-js"},
		WaitingFor:   wait.ForLog("Server is ready"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "4222")
	require.NoError(t, err)

	cleanup := func() {
		_ = container.Terminate(ctx)
	}

	return "nats://" + host + ":" + port.Port(), cleanup
}

func TestPublisher_Publish(t *testing.T) {
	// Arrange
	natsURL, cleanup := setupNATSContainer(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg := config.NATSConfig{URL: natsURL, StreamName: "TRANSFERS", SubjectPrefix: "transfers"}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	publisher, err := natsadapter.NewNATSPublisher(ctx, cfg, logger)
	require.NoError(t, err)
	defer publisher.Close()

	nc, err := nats.Connect(natsURL)
	require.NoError(t, err)
	defer nc.Close()
	js, err := jetstream.New(nc)
	require.NoError(t, err)
	consumer, err := js.OrderedConsumer(ctx, "TRANSFERS", jetstream.OrderedConsumerConfig{
		FilterSubjects: []string{"transfers.completed"},
	})
	require.NoError(t, err)

	event := domain.TransferEvent{
		TransferID: uuid.New(),
		Direction:  domain.TransferDirectionUpload,
		Bucket:     "bucket",
		Key:        "reports/a.csv",
		State:      domain.TransferStateCompleted,
		TotalBytes: 42,
		OccurredAt: time.Now().UTC(),
	}

	// Act
	err = publisher.Publish(ctx, event)

	// Assert
	require.NoError(t, err)
	msg, err := consumer.Next(jetstream.FetchMaxWait(5 * time.Second))
	require.NoError(t, err)
	assert.Equal(t, "transfers.completed", msg.Subject())

	var received domain.TransferEvent
	require.NoError(t, json.Unmarshal(msg.Data(), &received))
	assert.Equal(t, event.TransferID, received.TransferID)
	assert.Equal(t, event.Key, received.Key)
	assert.Equal(t, domain.TransferStateCompleted, received.State)
}

func TestPublisher_DuplicateEventIsDeduplicated(t *testing.T) {
	// Arrange
	natsURL, cleanup := setupNATSContainer(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg := config.NATSConfig{URL: natsURL, StreamName: "TRANSFERS", SubjectPrefix: "transfers"}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	publisher, err := natsadapter.NewNATSPublisher(ctx, cfg, logger)
	require.NoError(t, err)
	defer publisher.Close()

	event := domain.TransferEvent{TransferID: uuid.New(), State: domain.TransferStateFailed, Error: "boom"}

	// Act
	require.NoError(t, publisher.Publish(ctx, event))
	require.NoError(t, publisher.Publish(ctx, event))

	// Assert
	nc, err := nats.Connect(natsURL)
	require.NoError(t, err)
	defer nc.Close()
	js, err := jetstream.New(nc)
	require.NoError(t, err)
	stream, err := js.Stream(ctx, "TRANSFERS")
	require.NoError(t, err)
	info, err := stream.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), info.State.Msgs)
}

func TestPublisher_Subject(t *testing.T) {
	// Arrange
	natsURL, cleanup := setupNATSContainer(t)
	defer cleanup()

	cfg := config.NATSConfig{URL: natsURL, StreamName: "EVENTS", SubjectPrefix: "gateway.transfers"}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	publisher, err := natsadapter.NewNATSPublisher(context.Background(), cfg, logger)
	require.NoError(t, err)
	defer publisher.Close()

	// Act
	subject := publisher.Subject(domain.TransferStateAborted)

	// Assert
	assert.Equal(t, "gateway.transfers.aborted", subject)
}

func TestNopPublisher(t *testing.T) {
	// Arrange
	publisher := natsadapter.NopPublisher{}

	// Act
	err := publisher.Publish(context.Background(), domain.TransferEvent{})

	// Assert
	assert.NoError(t, err)
	assert.NoError(t, publisher.Close())
}
