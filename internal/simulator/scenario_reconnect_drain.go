// Copyright 2025 SportsApp Authors
// SPDX-License-Identifier: Apache-2.0

package simulator

import (
	"context"
	"fmt"
	"time"

	"github.com/GabiApc/SportsApp/favsync"
)

func runReconnectDrain(ctx context.Context, env *Env) error {
	user := &favsync.SessionUser{ID: "user-c"}
	device := env.NewDevice("phone-c", user, true)
	if err := device.Launch(ctx); err != nil {
		return err
	}
	defer device.Shutdown()

	device.SetOnline(false)
	if err := device.Sync.ToggleFavorite(ctx, TeamManCity); err != nil {
		return fmt.Errorf("offline toggle failed: %w", err)
	}
	if n := device.Sync.PendingCount(); n != 1 {
		return fmt.Errorf("expected 1 queued operation before reconnect, got %d", n)
	}

	device.SetOnline(true)
	if err := waitFor(5*time.Second, func() bool {
		return device.Sync.PendingCount() == 0
	}); err != nil {
		return fmt.Errorf("queue never drained: %w", err)
	}
	if ok, err := env.RemoteHas(ctx, user.ID, TeamManCity.ID); err != nil || !ok {
		return fmt.Errorf("drained operation never reached the service (has=%v err=%v)", ok, err)
	}
	if ops := device.Cache.ReadPendingOps(ctx, user.ID); len(ops) != 0 {
		return fmt.Errorf("persisted queue not rewritten to empty: %+v", ops)
	}
	return nil
}
