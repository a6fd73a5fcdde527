package nats

import (
	"context"
	"object-gateway/internal/core/domain"
	"object-gateway/internal/core/port"
)

// NopPublisher drops every event. It is used when no NATS url is configured.
type NopPublisher struct{}

var _ port.EventPublisher = NopPublisher{}

func (NopPublisher) Publish(context.Context, domain.TransferEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
