// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package notify emits "category changed" events for cache or UI
// invalidation. Delivery is best-effort, at-most-once: a failed publish is
// logged and dropped, never propagated to the mutation that triggered it.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Channel is the Valkey pub/sub channel category events are published on.
const Channel = "reportdesk:category-events"

// Event actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Event describes one category mutation.
type Event struct {
	Action     string    `json:"action"`
	CategoryID string    `json:"category_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	At         time.Time `json:"at"`
}

// Notifier publishes category change events.
type Notifier interface {
	CategoryChanged(ctx context.Context, e Event)
}

// Publisher sends events over a Valkey channel.
type Publisher struct {
	client *redis.Client
}

// NewPublisher returns a Publisher backed by the given Valkey client.
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// CategoryChanged publishes the event. Errors are logged and swallowed —
// subscribers get at-most-once delivery and mutations never fail because
// of a notification.
func (p *Publisher) CategoryChanged(ctx context.Context, e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	payload, err := json.Marshal(e)
	if err != nil {
		slog.Error("category event marshal failed", "error", err)
		return
	}
	if err := p.client.Publish(ctx, Channel, payload).Err(); err != nil {
		slog.Warn("category event publish failed",
			"action", e.Action,
			"category_id", e.CategoryID,
			"error", err,
		)
	}
}

// Noop discards all events. Used where no Valkey is available.
type Noop struct{}

// CategoryChanged does nothing.
func (Noop) CategoryChanged(context.Context, Event) {}
