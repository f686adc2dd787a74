package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"postqueue/internal/cache"
	"postqueue/internal/model"
	"postqueue/internal/repo"
)

// PublishProvider is the external service that actually transmits the
// post. Any error it returns is recorded on the record as a failed
// delivery; it is never retried.
type PublishProvider interface {
	Publish(ctx context.Context, text string) (externalID string, err error)
}

// Executor performs a single delivery attempt for a record id: re-read,
// status guard, publish, conditional write-back. The full sequence is
// serialized per record id, so a duplicate fire or a racing cancel
// results in exactly one transition out of the scheduled state.
type Executor struct {
	repo      repo.PostRepository
	publisher PublishProvider
	posted    cache.PostCache // optional
	locks     *recordLocks
}

func NewExecutor(r repo.PostRepository, p PublishProvider) *Executor {
	return &Executor{
		repo:      r,
		publisher: p,
		locks:     newRecordLocks(),
	}
}

// WithPostedCache records successful deliveries in c as well. Cache
// writes are best effort; a cache failure never fails the delivery.
func (e *Executor) WithPostedCache(c cache.PostCache) *Executor {
	e.posted = c
	return e
}

// Execute delivers the post with the given id. A missing record or one
// already out of the scheduled state is a no-op. Publish failures are
// recorded on the record and not returned; only store failures are.
func (e *Executor) Execute(ctx context.Context, id int64) error {
	e.locks.acquire(id)
	defer e.locks.release(id)

	p, err := e.repo.GetByID(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		slog.Warn("delivery skipped: record gone", "id", id)
		return nil
	}
	if err != nil {
		return err
	}

	if p.Status != model.Scheduled {
		slog.Info("delivery skipped: record no longer scheduled", "id", id, "status", string(p.Status))
		return nil
	}

	externalID, pubErr := e.publisher.Publish(ctx, p.Text)
	now := time.Now().UTC()

	if pubErr != nil {
		slog.Error("publish failed", "id", id, "err", pubErr)
		updated, err := e.repo.MarkFailed(ctx, id, pubErr.Error(), now)
		if err != nil {
			return err
		}
		if !updated {
			slog.Info("failure not recorded: record left scheduled state concurrently", "id", id)
		}
		return nil
	}

	updated, err := e.repo.MarkPosted(ctx, id, externalID, now)
	if err != nil {
		return err
	}
	if !updated {
		// Lost the write race (e.g. a concurrent cancel); the publish
		// already happened, but the record keeps its terminal state.
		slog.Warn("posted but record left scheduled state concurrently", "id", id, "external_id", externalID)
		return nil
	}

	slog.Info("post delivered", "id", id, "external_id", externalID)

	if e.posted != nil {
		if err := e.posted.StorePosted(ctx, id, externalID, now); err != nil {
			slog.Warn("posted cache write failed", "id", id, "err", err)
		}
	}
	return nil
}
