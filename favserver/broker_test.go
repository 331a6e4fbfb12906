// Copyright 2025 SportsApp Authors
// SPDX-License-Identifier: Apache-2.0

package favserver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryBrokerDeliversTicksPerUser(t *testing.T) {
	b := NewMemoryBroker()
	ctx := context.Background()

	ch1, cancel1, err := b.Subscribe(ctx, "u1")
	require.NoError(t, err)
	defer cancel1()
	ch2, cancel2, err := b.Subscribe(ctx, "u2")
	require.NoError(t, err)
	defer cancel2()

	require.NoError(t, b.Publish(ctx, "u1"))

	select {
	case <-ch1:
	default:
		t.Fatal("expected a tick for u1")
	}
	select {
	case <-ch2:
		t.Fatal("u2 must not receive u1's tick")
	default:
	}
}

func TestMemoryBrokerCoalescesBursts(t *testing.T) {
	b := NewMemoryBroker()
	ctx := context.Background()

	ch, cancel, err := b.Subscribe(ctx, "u1")
	require.NoError(t, err)
	defer cancel()

	// Publishing with no receiver draining must never block.
	for i := 0; i < 10; i++ {
		require.NoError(t, b.Publish(ctx, "u1"))
	}

	// Exactly one coalesced tick is buffered.
	select {
	case <-ch:
	default:
		t.Fatal("expected a buffered tick")
	}
	select {
	case <-ch:
		t.Fatal("burst must coalesce into a single tick")
	default:
	}
}

func TestMemoryBrokerCancelStopsDelivery(t *testing.T) {
	b := NewMemoryBroker()
	ctx := context.Background()

	ch, cancel, err := b.Subscribe(ctx, "u1")
	require.NoError(t, err)
	cancel()

	require.NoError(t, b.Publish(ctx, "u1"))
	select {
	case <-ch:
		t.Fatal("canceled subscription must not receive ticks")
	default:
	}
}

func TestMemoryBrokerFansOutToAllSubscribers(t *testing.T) {
	b := NewMemoryBroker()
	ctx := context.Background()

	ch1, cancel1, err := b.Subscribe(ctx, "u1")
	require.NoError(t, err)
	defer cancel1()
	ch2, cancel2, err := b.Subscribe(ctx, "u1")
	require.NoError(t, err)
	defer cancel2()

	require.NoError(t, b.Publish(ctx, "u1"))
	select {
	case <-ch1:
	default:
		t.Fatal("first subscriber missed the tick")
	}
	select {
	case <-ch2:
	default:
		t.Fatal("second subscriber missed the tick")
	}
}
