// Copyright 2025 SportsApp Authors
// SPDX-License-Identifier: Apache-2.0

package simulator

import (
	"context"
	"fmt"
	"time"

	"github.com/GabiApc/SportsApp/favsync"
)

func runUserSwitch(ctx context.Context, env *Env) error {
	userA := &favsync.SessionUser{ID: "user-f"}
	userB := &favsync.SessionUser{ID: "user-g"}

	device := env.NewDevice("phone-f", userA, true)
	if err := device.Launch(ctx); err != nil {
		return err
	}
	defer device.Shutdown()

	if err := device.Sync.ToggleFavorite(ctx, TeamChelsea); err != nil {
		return err
	}
	if err := waitFor(5*time.Second, func() bool {
		return device.Sync.IsFavorite(TeamChelsea.ID)
	}); err != nil {
		return fmt.Errorf("favorite never synced for user A: %w", err)
	}

	device.Logout()
	if len(device.Sync.Favorites()) != 0 || device.Sync.PendingCount() != 0 {
		return fmt.Errorf("logout must clear in-memory favorites and queue")
	}
	if cached := device.Cache.ReadFavorites(ctx, userA.ID); len(cached) != 0 {
		return fmt.Errorf("logout must delete the user's cache entries, got %+v", cached)
	}

	device.Login(userB)
	if favs := device.Sync.Favorites(); len(favs) != 0 {
		return fmt.Errorf("user B must not observe user A's favorites: %+v", favs)
	}

	// A's data is untouched on the service.
	if ok, err := env.RemoteHas(ctx, userA.ID, TeamChelsea.ID); err != nil || !ok {
		return fmt.Errorf("user A's remote favorites should survive the switch (has=%v err=%v)", ok, err)
	}
	return nil
}
