package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"postqueue/internal/model"
	"postqueue/internal/repo"
	"postqueue/internal/timeutil"
)

var (
	ErrEmptyText   = errors.New("post text must not be empty")
	ErrTextTooLong = errors.New("post text too long")

	// ErrDeliveryDelayed is returned together with a stored record when
	// the row was inserted but no timer could be armed; delivery happens
	// after the next pending reload or restart.
	ErrDeliveryDelayed = errors.New("post stored but delivery delayed")
)

// Timers is the scheduler surface the post service drives.
type Timers interface {
	Add(id int64, fireAtUTC time.Time) error
	Cancel(id int64)
}

// PostService owns the create/cancel/list operations the request layer
// calls into. Validation failures leave no state behind.
type PostService struct {
	repo    repo.PostRepository
	timers  Timers
	textMax int
}

func NewPostService(r repo.PostRepository, t Timers, textMax int) *PostService {
	return &PostService{repo: r, timers: t, textMax: textMax}
}

// Create validates the input, converts the client-local datetime to
// UTC, persists the record and arms its timer. On ErrDeliveryDelayed
// the returned record is valid and persisted, just not yet armed.
func (s *PostService) Create(ctx context.Context, text, localDatetime string, offsetMinutes int) (model.ScheduledPost, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.ScheduledPost{}, ErrEmptyText
	}
	if utf8.RuneCountInString(text) > s.textMax {
		return model.ScheduledPost{}, fmt.Errorf("%w: %d runes (max %d)", ErrTextTooLong, utf8.RuneCountInString(text), s.textMax)
	}

	scheduledUTC, err := timeutil.ToUTC(localDatetime, offsetMinutes)
	if err != nil {
		return model.ScheduledPost{}, err
	}

	id, err := s.repo.Insert(ctx, text, scheduledUTC)
	if err != nil {
		return model.ScheduledPost{}, err
	}

	post := model.ScheduledPost{
		ID:           id,
		Text:         text,
		ScheduledUTC: scheduledUTC,
		Status:       model.Scheduled,
	}

	if err := s.timers.Add(id, scheduledUTC); err != nil {
		return post, fmt.Errorf("%w: %w", ErrDeliveryDelayed, err)
	}
	return post, nil
}

// Cancel transitions a scheduled record to cancelled and disarms its
// timer. Records already out of the scheduled state are rejected with
// ErrNotCancellable and left untouched.
func (s *PostService) Cancel(ctx context.Context, id int64) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p.Status.Terminal() {
		return fmt.Errorf("%w: status is %s", model.ErrNotCancellable, p.Status)
	}

	updated, err := s.repo.MarkCancelled(ctx, id)
	if err != nil {
		return err
	}
	if !updated {
		// Delivery won the race between our read and the write.
		return model.ErrNotCancellable
	}

	s.timers.Cancel(id)
	return nil
}

// List returns the most recently scheduled records, newest first.
func (s *PostService) List(ctx context.Context, limit int) ([]model.ScheduledPost, error) {
	return s.repo.ListRecent(ctx, limit)
}
