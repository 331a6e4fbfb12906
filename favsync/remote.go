// Copyright 2025 SportsApp Authors
// SPDX-License-Identifier: Apache-2.0

package favsync

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RemoteStore is the remote favorites collection collaborator. Each user
// owns one collection of documents keyed by team id; writes are
// last-write-wins and Watch delivers the entire current collection on every
// change, including the initial read.
type RemoteStore interface {
	// Upsert creates or replaces the favorites document for a team.
	Upsert(ctx context.Context, userID string, team FavoriteTeam) error
	// Delete removes the favorites document for a team. Deleting an absent
	// document is not an error.
	Delete(ctx context.Context, userID, teamID string) error
	// Watch opens a live subscription to the user's collection. onSnapshot
	// receives the full collection on every change; onError receives a
	// terminal subscription failure. The returned func cancels the
	// subscription.
	Watch(ctx context.Context, userID string, onSnapshot func([]FavoriteTeam), onError func(error)) (cancel func(), err error)
}

// TokenFunc returns a bearer token for remote requests.
type TokenFunc func(ctx context.Context) (string, error)

// HTTPRemoteStore talks to the favorites service over HTTP. Live
// subscriptions use the service's SSE watch endpoint.
type HTTPRemoteStore struct {
	BaseURL string
	Token   TokenFunc
	HTTP    *http.Client
	logger  *slog.Logger
}

// NewHTTPRemoteStore creates a remote store client for the given base URL.
func NewHTTPRemoteStore(baseURL string, token TokenFunc, logger *slog.Logger) *HTTPRemoteStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPRemoteStore{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

func (r *HTTPRemoteStore) docURL(userID, teamID string) string {
	return fmt.Sprintf("%s/users/%s/favorites/%s",
		r.BaseURL, url.PathEscape(userID), url.PathEscape(teamID))
}

func (r *HTTPRemoteStore) collectionURL(userID, suffix string) string {
	return fmt.Sprintf("%s/users/%s/favorites%s", r.BaseURL, url.PathEscape(userID), suffix)
}

func (r *HTTPRemoteStore) newRequest(ctx context.Context, method, u string, body []byte) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	token, err := r.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (r *HTTPRemoteStore) Upsert(ctx context.Context, userID string, team FavoriteTeam) error {
	payload, err := json.Marshal(DocumentFor(team))
	if err != nil {
		return fmt.Errorf("failed to marshal team document: %w", err)
	}
	req, err := r.newRequest(ctx, http.MethodPut, r.docURL(userID, team.ID), payload)
	if err != nil {
		return err
	}
	return r.do(req)
}

func (r *HTTPRemoteStore) Delete(ctx context.Context, userID, teamID string) error {
	req, err := r.newRequest(ctx, http.MethodDelete, r.docURL(userID, teamID), nil)
	if err != nil {
		return err
	}
	return r.do(req)
}

// Snapshot fetches the current full collection without subscribing.
func (r *HTTPRemoteStore) Snapshot(ctx context.Context, userID string) ([]FavoriteTeam, error) {
	req, err := r.newRequest(ctx, http.MethodGet, r.collectionURL(userID, ""), nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch favorites snapshot: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("snapshot request failed with status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot body: %w", err)
	}
	return decodeSnapshot(data, r.logger), nil
}

func (r *HTTPRemoteStore) do(req *http.Request) error {
	resp, err := r.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("remote request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("remote request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// Watch opens the SSE stream. The stream stays open until the returned
// cancel func is called, the context ends, or the connection drops; a
// dropped connection is reported once through onError.
func (r *HTTPRemoteStore) Watch(ctx context.Context, userID string, onSnapshot func([]FavoriteTeam), onError func(error)) (func(), error) {
	watchCtx, cancel := context.WithCancel(ctx)
	req, err := r.newRequest(watchCtx, http.MethodGet, r.collectionURL(userID, "/watch"), nil)
	if err != nil {
		cancel()
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	// The watch stream is long-lived; bypass the client-wide timeout.
	client := &http.Client{Transport: r.HTTP.Transport}
	resp, err := client.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open watch stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("watch request failed with status %d", resp.StatusCode)
	}

	go func() {
		defer resp.Body.Close()
		err := r.readEvents(resp.Body, onSnapshot)
		if err != nil && watchCtx.Err() == nil {
			onError(err)
		}
	}()

	return cancel, nil
}

// readEvents consumes an SSE stream, dispatching one snapshot per event.
func (r *HTTPRemoteStore) readEvents(body io.Reader, onSnapshot func([]FavoriteTeam)) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	var data bytes.Buffer
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			if data.Len() > 0 {
				onSnapshot(decodeSnapshot(data.Bytes(), r.logger))
				data.Reset()
			}
			continue
		}
		if payload, ok := strings.CutPrefix(line, "data: "); ok {
			data.WriteString(payload)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("watch stream closed: %w", err)
	}
	return errors.New("watch stream ended")
}

// teamRecord is one collection entry on the wire: the document plus its key.
type teamRecord struct {
	ID string `json:"id"`
	TeamDocument
}

// decodeSnapshot is the validation boundary for remote data: records
// without an id are dropped, missing optional fields default to empty, and
// a malformed body yields an empty collection rather than an error.
func decodeSnapshot(data []byte, logger *slog.Logger) []FavoriteTeam {
	var records []teamRecord
	if err := json.Unmarshal(data, &records); err != nil {
		logger.Warn("malformed favorites snapshot from remote", "error", err)
		return nil
	}
	teams := make([]FavoriteTeam, 0, len(records))
	for _, rec := range records {
		if rec.ID == "" {
			logger.Warn("dropping favorites record without id")
			continue
		}
		teams = append(teams, rec.TeamDocument.Team(rec.ID))
	}
	return teams
}
