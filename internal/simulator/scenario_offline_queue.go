// Copyright 2025 SportsApp Authors
// SPDX-License-Identifier: Apache-2.0

package simulator

import (
	"context"
	"fmt"

	"github.com/GabiApc/SportsApp/favsync"
)

func runOfflineQueue(ctx context.Context, env *Env) error {
	user := &favsync.SessionUser{ID: "user-b"}
	device := env.NewDevice("phone-b", user, true)
	if err := device.Launch(ctx); err != nil {
		return err
	}
	defer device.Shutdown()

	device.SetOnline(false)
	if err := device.Sync.ToggleFavorite(ctx, TeamManCity); err != nil {
		return fmt.Errorf("offline toggle failed: %w", err)
	}

	if !device.Sync.IsFavorite(TeamManCity.ID) {
		return fmt.Errorf("optimistic add not visible in memory")
	}
	if n := device.Sync.PendingCount(); n != 1 {
		return fmt.Errorf("expected 1 queued operation, got %d", n)
	}
	ops := device.Cache.ReadPendingOps(ctx, user.ID)
	if len(ops) != 1 || ops[0].Action != favsync.ActionAdd || ops[0].TeamID != TeamManCity.ID || ops[0].Team == nil {
		return fmt.Errorf("persisted queue mismatch: %+v", ops)
	}
	cached := device.Cache.ReadFavorites(ctx, user.ID)
	if len(cached) != 1 || cached[0].ID != TeamManCity.ID {
		return fmt.Errorf("cache snapshot does not reflect the offline add: %+v", cached)
	}
	if ok, err := env.RemoteHas(ctx, user.ID, TeamManCity.ID); err != nil || ok {
		return fmt.Errorf("offline toggle must not reach the service (has=%v err=%v)", ok, err)
	}
	return nil
}
