// Copyright 2025 SportsApp Authors
// SPDX-License-Identifier: Apache-2.0

package simulator

import (
	"context"
	"fmt"
	"time"

	"github.com/GabiApc/SportsApp/favsync"
)

func runOnlineToggle(ctx context.Context, env *Env) error {
	user := &favsync.SessionUser{ID: "user-a"}
	device := env.NewDevice("phone-a", user, true)
	if err := device.Launch(ctx); err != nil {
		return err
	}
	defer device.Shutdown()

	if err := device.Sync.ToggleFavorite(ctx, TeamChelsea); err != nil {
		return fmt.Errorf("toggle failed: %w", err)
	}

	// The remote write lands synchronously; the in-memory flag flips when
	// the watch stream delivers the fresh snapshot.
	if ok, err := env.RemoteHas(ctx, user.ID, TeamChelsea.ID); err != nil || !ok {
		return fmt.Errorf("remote document for team %s missing after online toggle (err=%v)", TeamChelsea.ID, err)
	}
	if err := waitFor(5*time.Second, func() bool {
		return device.Sync.IsFavorite(TeamChelsea.ID)
	}); err != nil {
		return fmt.Errorf("in-memory state never reflected the snapshot: %w", err)
	}

	teams, err := env.RemoteFavorites(ctx, user.ID)
	if err != nil {
		return err
	}
	if len(teams) != 1 || teams[0] != TeamChelsea {
		return fmt.Errorf("unexpected remote collection: %+v", teams)
	}
	if device.Sync.PendingCount() != 0 {
		return fmt.Errorf("online toggle must not queue operations")
	}
	return nil
}
