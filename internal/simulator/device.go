// Copyright 2025 SportsApp Authors
// SPDX-License-Identifier: Apache-2.0

package simulator

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/GabiApc/SportsApp/favsync"
)

const tokenTTL = time.Hour

// Device simulates one installed app instance: a SQLite-backed cache on
// its own database file, a manually driven connectivity monitor, and a
// favorites synchronizer talking to the environment's service. The
// database file survives Shutdown, so a relaunch behaves like an app
// restart.
type Device struct {
	Name     string
	DeviceID string

	env    *Env
	auth   *StaticAuth
	online bool
	dbPath string

	db      *sql.DB
	Cache   *favsync.CacheStore
	Monitor *favsync.ManualMonitor
	Sync    *favsync.Synchronizer
	cancel  context.CancelFunc
}

// NewDevice creates a device with the given initial session and
// connectivity state. Call Launch to start it.
func (e *Env) NewDevice(name string, user *favsync.SessionUser, online bool) *Device {
	return &Device{
		Name:     name,
		DeviceID: uuid.New().String(),
		env:      e,
		auth:     NewStaticAuth(user),
		online:   online,
		dbPath:   filepath.Join(e.dir, name+".db"),
	}
}

// Launch opens the device database and starts the synchronizer.
func (d *Device) Launch(ctx context.Context) error {
	if d.db != nil {
		return fmt.Errorf("device %s is already running", d.Name)
	}
	db, err := sql.Open("sqlite3", d.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open device database: %w", err)
	}
	kv, err := favsync.NewSQLiteKV(db)
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to initialize device kv store: %w", err)
	}
	d.db = db
	d.Cache = favsync.NewCacheStore(kv, d.env.Logger)
	d.Monitor = favsync.NewManualMonitor(d.online)

	userID := ""
	if u := d.auth.CurrentUser(); u != nil {
		userID = u.ID
	}
	remote := favsync.NewHTTPRemoteStore(d.env.Server.URL, d.tokenFunc(userID), d.env.Logger)
	d.Sync = favsync.NewSynchronizer(d.Cache, remote, d.Monitor, d.auth, &favsync.Options{
		Notifications: favsync.LogNotifications{Logger: d.env.Logger},
		Logger:        d.env.Logger,
	})

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.Sync.Start(runCtx)
	return nil
}

// tokenFunc mints a token for whoever the device session currently is.
// The initial user id is only a fallback for cold starts where the
// identity comes from the cache.
func (d *Device) tokenFunc(fallbackUserID string) favsync.TokenFunc {
	return func(ctx context.Context) (string, error) {
		userID := fallbackUserID
		if u := d.auth.CurrentUser(); u != nil {
			userID = u.ID
		} else if d.Sync != nil {
			if u := d.Sync.User(); u != nil {
				userID = u.ID
			}
		}
		return d.env.JWT.GenerateToken(userID, d.DeviceID, tokenTTL)
	}
}

// Shutdown stops the synchronizer and closes the database. The database
// file is preserved for a later Launch.
func (d *Device) Shutdown() {
	if d.Sync != nil {
		d.Sync.Stop()
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.db != nil {
		_ = d.db.Close()
		d.db = nil
	}
}

// SetOnline drives the connectivity monitor.
func (d *Device) SetOnline(online bool) {
	d.online = online
	if d.Monitor != nil {
		d.Monitor.SetConnected(online)
	}
}

// Login sets the device session.
func (d *Device) Login(user *favsync.SessionUser) {
	d.auth.SetUser(user)
}

// Logout clears the device session.
func (d *Device) Logout() {
	d.auth.SetUser(nil)
}
