package repo

import (
	"context"
	"time"

	"postqueue/internal/model"
)

// PostRepository is the durable store for scheduled posts. The store is
// the only source of truth for what should still fire; the scheduler's
// timer map is rebuilt from ListPending on every process start.
//
// The Mark* methods are conditional: they only transition rows still in
// the scheduled state and report whether a row actually changed, so a
// delivery racing a cancel (or a duplicate fire) resolves to exactly
// one transition.
type PostRepository interface {
	Insert(ctx context.Context, text string, scheduledUTC time.Time) (int64, error)
	GetByID(ctx context.Context, id int64) (model.ScheduledPost, error)
	ListRecent(ctx context.Context, limit int) ([]model.ScheduledPost, error)
	ListPending(ctx context.Context) ([]model.ScheduledPost, error)
	MarkPosted(ctx context.Context, id int64, externalID string, postedAt time.Time) (bool, error)
	MarkFailed(ctx context.Context, id int64, reason string, postedAt time.Time) (bool, error)
	MarkCancelled(ctx context.Context, id int64) (bool, error)
}
