// Copyright 2025 SportsApp Authors
// SPDX-License-Identifier: Apache-2.0

package simulator

import (
	"context"
	"fmt"
	"time"

	"github.com/GabiApc/SportsApp/favsync"
)

func runOfflineColdStart(ctx context.Context, env *Env) error {
	user := &favsync.SessionUser{ID: "user-d"}
	device := env.NewDevice("phone-d", user, true)
	if err := device.Launch(ctx); err != nil {
		return err
	}

	if err := device.Sync.ToggleFavorite(ctx, TeamChelsea); err != nil {
		device.Shutdown()
		return fmt.Errorf("toggle failed: %w", err)
	}
	if err := waitFor(5*time.Second, func() bool {
		return device.Sync.IsFavorite(TeamChelsea.ID)
	}); err != nil {
		device.Shutdown()
		return fmt.Errorf("favorite never synced before shutdown: %w", err)
	}
	device.Shutdown()

	// Restart with no live session and no connectivity. The effective user
	// must resolve from the cached identity and favorites from the cache,
	// with no network involved.
	device.Logout() // session gone, cached identity stays
	device.SetOnline(false)
	if err := device.Launch(ctx); err != nil {
		return err
	}
	defer device.Shutdown()

	restored := device.Sync.User()
	if restored == nil || restored.ID != user.ID {
		return fmt.Errorf("effective user not restored from cache: %+v", restored)
	}
	favs := device.Sync.Favorites()
	if len(favs) != 1 || favs[0].ID != TeamChelsea.ID {
		return fmt.Errorf("cached favorites not restored: %+v", favs)
	}
	return nil
}
