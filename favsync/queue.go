// Copyright 2025 SportsApp Authors
// SPDX-License-Identifier: Apache-2.0

package favsync

import (
	"context"
	"log/slog"
)

// Queue is the ordered log of deferred favorite mutations accumulated while
// offline. Operations are replayed strictly in insertion order; there is no
// coalescing, so an add/remove pair on the same team stays two entries and
// the net effect after replay equals applying them sequentially.
//
// Queue is not safe for concurrent use; the Synchronizer serializes access.
type Queue struct {
	ops []PendingOp
}

// NewQueue creates a queue from previously persisted operations.
func NewQueue(ops []PendingOp) *Queue {
	return &Queue{ops: ops}
}

// Append adds an operation at the tail.
func (q *Queue) Append(op PendingOp) {
	q.ops = append(q.ops, op)
}

// Len returns the number of queued operations.
func (q *Queue) Len() int {
	return len(q.ops)
}

// Ops returns a copy of the queued operations in order.
func (q *Queue) Ops() []PendingOp {
	out := make([]PendingOp, len(q.ops))
	copy(out, q.ops)
	return out
}

// Drain replays the queue against the remote store in insertion order. The
// queue is replaced with exactly the subset that failed, order preserved,
// so no operation is silently lost and relative order never changes.
// Returns the number of operations applied remotely.
//
// An add operation without a team payload can never succeed remotely and is
// dropped with a warning.
func (q *Queue) Drain(ctx context.Context, userID string, remote RemoteStore, logger *slog.Logger) int {
	if len(q.ops) == 0 {
		return 0
	}
	applied := 0
	remaining := make([]PendingOp, 0, len(q.ops))
	for _, op := range q.ops {
		var err error
		switch {
		case op.Action == ActionAdd && op.Team != nil:
			err = remote.Upsert(ctx, userID, *op.Team)
		case op.Action == ActionRemove:
			err = remote.Delete(ctx, userID, op.TeamID)
		default:
			logger.Warn("dropping unreplayable pending operation",
				"team_id", op.TeamID, "action", op.Action)
			continue
		}
		if err != nil {
			logger.Warn("failed to replay pending operation, keeping it queued",
				"team_id", op.TeamID, "action", op.Action, "error", err)
			remaining = append(remaining, op)
			continue
		}
		applied++
	}
	q.ops = remaining
	return applied
}
