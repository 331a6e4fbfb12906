// Copyright 2025 SportsApp Authors
// SPDX-License-Identifier: Apache-2.0

package favserver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// RedisBroker fans out change notifications through redis pub/sub so that
// watch streams held by one server instance see writes handled by another.
type RedisBroker struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// NewRedisBroker creates a broker over an existing redis client. The key
// prefix namespaces channels; empty defaults to "favsync".
func NewRedisBroker(client *redis.Client, prefix string, logger *slog.Logger) *RedisBroker {
	if prefix == "" {
		prefix = "favsync"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisBroker{client: client, prefix: prefix, logger: logger}
}

func (b *RedisBroker) channel(userID string) string {
	return b.prefix + ":favorites_changed:" + userID
}

func (b *RedisBroker) Publish(ctx context.Context, userID string) error {
	if err := b.client.Publish(ctx, b.channel(userID), "1").Err(); err != nil {
		return fmt.Errorf("failed to publish favorites change: %w", err)
	}
	return nil
}

func (b *RedisBroker) Subscribe(ctx context.Context, userID string) (<-chan struct{}, func(), error) {
	sub := b.client.Subscribe(ctx, b.channel(userID))
	// Force the subscription to be established before we report success,
	// otherwise a change published right after Subscribe could be missed.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("failed to subscribe to favorites channel: %w", err)
	}

	ch := make(chan struct{}, 1)
	go func() {
		for range sub.Channel() {
			select {
			case ch <- struct{}{}:
			default:
			}
		}
		close(ch)
	}()

	cancel := func() {
		if err := sub.Close(); err != nil {
			b.logger.Warn("failed to close redis subscription", "error", err)
		}
	}
	return ch, cancel, nil
}
