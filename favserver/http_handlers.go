// Copyright 2025 SportsApp Authors
// SPDX-License-Identifier: Apache-2.0

package favserver

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GabiApc/SportsApp/favsync"
	"github.com/GabiApc/SportsApp/internal/auth"
)

// ClientAuthenticator extracts user and device identity from HTTP
// requests. Implementations should validate auth (e.g., JWT) and provide
// both identifiers.
type ClientAuthenticator interface {
	GetUserID(r *http.Request) (string, error)
	GetDeviceID(r *http.Request) (string, error)
}

// HTTPHandlers serves the favorites document API: per-user document
// upsert/delete, full-collection reads, and an SSE watch stream that emits
// the entire collection on connect and after every change.
type HTTPHandlers struct {
	store         Store
	broker        Broker
	authenticator ClientAuthenticator
	logger        *slog.Logger
}

// NewHTTPHandlers creates the handler set.
func NewHTTPHandlers(store Store, broker Broker, authenticator ClientAuthenticator, logger *slog.Logger) *HTTPHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPHandlers{
		store:         store,
		broker:        broker,
		authenticator: authenticator,
		logger:        logger,
	}
}

// Router builds the chi router for the service.
func (h *HTTPHandlers) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", h.HandleHealth)
	r.Route("/users/{userID}/favorites", func(r chi.Router) {
		r.Use(h.requireUser)
		r.Get("/", h.HandleList)
		r.Get("/watch", h.HandleWatch)
		r.Put("/{teamID}", h.HandleUpsert)
		r.Delete("/{teamID}", h.HandleDelete)
	})
	return r
}

// requireUser authenticates the request and rejects tokens whose subject
// does not match the user in the path. Identity is stashed in the context
// for handlers downstream.
func (h *HTTPHandlers) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := h.authenticator.GetUserID(r)
		if err != nil {
			h.writeError(w, http.StatusUnauthorized, "authentication_failed", err.Error())
			return
		}
		deviceID, err := h.authenticator.GetDeviceID(r)
		if err != nil {
			h.writeError(w, http.StatusUnauthorized, "authentication_failed", err.Error())
			return
		}
		if pathUser := chi.URLParam(r, "userID"); pathUser != userID {
			h.writeError(w, http.StatusForbidden, "forbidden", "token does not grant access to this user's favorites")
			return
		}
		ctx := auth.SetUserID(r.Context(), userID)
		ctx = auth.SetDeviceID(ctx, deviceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// HandleHealth reports liveness.
func (h *HTTPHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// HandleUpsert creates or replaces one favorites document.
func (h *HTTPHandlers) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserID(r.Context())
	teamID := chi.URLParam(r, "teamID")

	var doc favsync.TeamDocument
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "failed to parse team document")
		return
	}

	if err := h.store.Upsert(r.Context(), userID, doc.Team(teamID)); err != nil {
		h.logger.Error("failed to upsert favorite", "user_id", userID, "team_id", teamID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "store_failed", "failed to store favorite")
		return
	}
	h.notifyChanged(r, userID)
	w.WriteHeader(http.StatusNoContent)
}

// HandleDelete removes one favorites document. Deleting an absent document
// succeeds.
func (h *HTTPHandlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserID(r.Context())
	teamID := chi.URLParam(r, "teamID")

	if err := h.store.Delete(r.Context(), userID, teamID); err != nil {
		h.logger.Error("failed to delete favorite", "user_id", userID, "team_id", teamID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "store_failed", "failed to delete favorite")
		return
	}
	h.notifyChanged(r, userID)
	w.WriteHeader(http.StatusNoContent)
}

// HandleList returns the full favorites collection.
func (h *HTTPHandlers) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserID(r.Context())

	teams, err := h.store.List(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list favorites", "user_id", userID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "store_failed", "failed to list favorites")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(teams); err != nil {
		h.logger.Error("failed to encode favorites list", "user_id", userID, "error", err)
	}
}

// HandleWatch streams the favorites collection over SSE: one full snapshot
// immediately, then one per change notification. The stream ends when the
// client disconnects.
func (h *HTTPHandlers) HandleWatch(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserID(r.Context())

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "streaming_unsupported", "response writer does not support streaming")
		return
	}

	changes, cancel, err := h.broker.Subscribe(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to subscribe to favorites changes", "user_id", userID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "subscribe_failed", "failed to subscribe to changes")
		return
	}
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	sendSnapshot := func() bool {
		teams, err := h.store.List(r.Context(), userID)
		if err != nil {
			h.logger.Warn("failed to read favorites for watch event", "user_id", userID, "error", err)
			return true // keep the stream; the next change retries
		}
		data, err := json.Marshal(teams)
		if err != nil {
			h.logger.Error("failed to marshal watch snapshot", "user_id", userID, "error", err)
			return true
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	if !sendSnapshot() {
		return
	}
	for {
		select {
		case <-r.Context().Done():
			return
		case _, ok := <-changes:
			if !ok {
				return
			}
			if !sendSnapshot() {
				return
			}
		}
	}
}

func (h *HTTPHandlers) notifyChanged(r *http.Request, userID string) {
	if err := h.broker.Publish(r.Context(), userID); err != nil {
		h.logger.Warn("failed to publish favorites change", "user_id", userID, "error", err)
	}
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (h *HTTPHandlers) writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(errorResponse{Error: code, Message: message}); err != nil {
		h.logger.Error("failed to encode error response", "error", err)
	}
}
