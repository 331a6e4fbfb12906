// Copyright 2025 SportsApp Authors
// SPDX-License-Identifier: Apache-2.0

package favsync

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Monitor is the single source of truth for "can the device currently
// reach the remote store". It keeps no retry or polling policy of its own
// beyond what the concrete implementation needs to observe transitions.
type Monitor interface {
	// Connected reports the current reachability state.
	Connected(ctx context.Context) bool
	// Subscribe registers a listener for transitions. The returned func
	// cancels the subscription.
	Subscribe(fn func(online bool)) (cancel func())
}

// ManualMonitor is a Monitor driven by explicit SetConnected calls. It is
// the injection point for platform connectivity signals and for tests.
type ManualMonitor struct {
	mu     sync.Mutex
	online bool
	subs   map[int]func(bool)
	nextID int
}

// NewManualMonitor creates a monitor with the given initial state.
func NewManualMonitor(online bool) *ManualMonitor {
	return &ManualMonitor{online: online, subs: make(map[int]func(bool))}
}

func (m *ManualMonitor) Connected(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

func (m *ManualMonitor) Subscribe(fn func(online bool)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// SetConnected updates the state and notifies subscribers on transition.
// Listeners run synchronously, outside the monitor lock.
func (m *ManualMonitor) SetConnected(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	listeners := make([]func(bool), 0, len(m.subs))
	for _, fn := range m.subs {
		listeners = append(listeners, fn)
	}
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(online)
	}
}

// ProbeMonitor derives reachability from a periodic HTTP probe against a
// health endpoint of the remote store.
type ProbeMonitor struct {
	url      string
	interval time.Duration
	client   *http.Client
	logger   *slog.Logger
	state    *ManualMonitor
}

// NewProbeMonitor creates a probe monitor against the given URL. The
// monitor assumes offline until the first successful probe; call Run to
// start probing.
func NewProbeMonitor(url string, interval time.Duration, logger *slog.Logger) *ProbeMonitor {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &ProbeMonitor{
		url:      url,
		interval: interval,
		client:   &http.Client{Timeout: 5 * time.Second},
		logger:   logger,
		state:    NewManualMonitor(false),
	}
}

func (p *ProbeMonitor) Connected(ctx context.Context) bool {
	return p.state.Connected(ctx)
}

func (p *ProbeMonitor) Subscribe(fn func(online bool)) func() {
	return p.state.Subscribe(fn)
}

// Run probes until the context is canceled. Transitions are delivered to
// subscribers; steady states are not re-announced.
func (p *ProbeMonitor) Run(ctx context.Context) {
	p.state.SetConnected(p.probe(ctx))
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.state.SetConnected(p.probe(ctx))
		}
	}
}

func (p *ProbeMonitor) probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		p.logger.Warn("failed to build connectivity probe request", "error", err)
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < 500
}
