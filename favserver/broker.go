// Copyright 2025 SportsApp Authors
// SPDX-License-Identifier: Apache-2.0

package favserver

import (
	"context"
	"sync"
)

// Broker fans out per-user "favorites changed" notifications to watch
// streams. Notifications carry no payload; receivers re-read the
// collection, so coalescing concurrent notifications is safe.
type Broker interface {
	// Publish signals that the user's favorites collection changed.
	Publish(ctx context.Context, userID string) error
	// Subscribe returns a channel that receives a tick per change signal
	// and a cancel func releasing the subscription.
	Subscribe(ctx context.Context, userID string) (<-chan struct{}, func(), error)
}

// MemoryBroker is an in-process Broker for single-instance deployments,
// tests, and the simulator.
type MemoryBroker struct {
	mu     sync.Mutex
	subs   map[string]map[int]chan struct{}
	nextID int
}

// NewMemoryBroker creates an empty in-process broker.
func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[string]map[int]chan struct{})}
}

func (b *MemoryBroker) Publish(_ context.Context, userID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs[userID] {
		// Non-blocking: one buffered tick is enough, the receiver re-reads
		// the full collection anyway.
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(_ context.Context, userID string) (<-chan struct{}, func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan struct{}, 1)
	id := b.nextID
	b.nextID++
	if b.subs[userID] == nil {
		b.subs[userID] = make(map[int]chan struct{})
	}
	b.subs[userID][id] = ch
	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if chans, ok := b.subs[userID]; ok {
			delete(chans, id)
			if len(chans) == 0 {
				delete(b.subs, userID)
			}
		}
	}
	return ch, cancel, nil
}
