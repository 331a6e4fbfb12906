// Copyright 2025 SportsApp Authors
// SPDX-License-Identifier: Apache-2.0

package simulator

import (
	"context"
	"fmt"
	"time"

	"github.com/GabiApc/SportsApp/favsync"
)

func runOfflineFlipFlop(ctx context.Context, env *Env) error {
	user := &favsync.SessionUser{ID: "user-e"}
	if err := env.Store.Upsert(ctx, user.ID, TeamChelsea); err != nil {
		return err
	}

	device := env.NewDevice("phone-e", user, true)
	if err := device.Launch(ctx); err != nil {
		return err
	}
	defer device.Shutdown()

	if err := waitFor(5*time.Second, func() bool {
		return device.Sync.IsFavorite(TeamChelsea.ID)
	}); err != nil {
		return fmt.Errorf("initial snapshot never arrived: %w", err)
	}

	// Toggle off then back on while offline: two queued entries, no
	// coalescing, net effect preserved.
	device.SetOnline(false)
	if err := device.Sync.ToggleFavorite(ctx, TeamChelsea); err != nil {
		return err
	}
	if err := device.Sync.ToggleFavorite(ctx, TeamChelsea); err != nil {
		return err
	}

	ops := device.Cache.ReadPendingOps(ctx, user.ID)
	if len(ops) != 2 || ops[0].Action != favsync.ActionRemove || ops[1].Action != favsync.ActionAdd {
		return fmt.Errorf("expected [remove add] queue, got %+v", ops)
	}
	if !device.Sync.IsFavorite(TeamChelsea.ID) {
		return fmt.Errorf("final local state should still contain team %s", TeamChelsea.ID)
	}

	device.SetOnline(true)
	if err := waitFor(5*time.Second, func() bool {
		return device.Sync.PendingCount() == 0
	}); err != nil {
		return fmt.Errorf("queue never drained: %w", err)
	}
	if ok, err := env.RemoteHas(ctx, user.ID, TeamChelsea.ID); err != nil || !ok {
		return fmt.Errorf("net effect lost after replay (has=%v err=%v)", ok, err)
	}
	return nil
}
