package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"postqueue/internal/model"
	"postqueue/internal/repo"
)

// memRepo is an in-memory PostRepository with the same conditional
// transition semantics as the Postgres implementation.
type memRepo struct {
	mu     sync.Mutex
	nextID int64
	posts  map[int64]model.ScheduledPost

	insertErr error
	getErr    error
}

var _ repo.PostRepository = (*memRepo)(nil)

func newMemRepo() *memRepo {
	return &memRepo{posts: make(map[int64]model.ScheduledPost)}
}

func (r *memRepo) Insert(ctx context.Context, text string, scheduledUTC time.Time) (int64, error) {
	if r.insertErr != nil {
		return 0, r.insertErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	r.posts[r.nextID] = model.ScheduledPost{
		ID:           r.nextID,
		Text:         text,
		ScheduledUTC: scheduledUTC.UTC(),
		Status:       model.Scheduled,
	}
	return r.nextID, nil
}

func (r *memRepo) GetByID(ctx context.Context, id int64) (model.ScheduledPost, error) {
	if r.getErr != nil {
		return model.ScheduledPost{}, r.getErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.posts[id]
	if !ok {
		return model.ScheduledPost{}, model.ErrNotFound
	}
	return p, nil
}

func (r *memRepo) ListRecent(ctx context.Context, limit int) ([]model.ScheduledPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []model.ScheduledPost
	for _, p := range r.posts {
		out = append(out, p)
	}
	return out, nil
}

func (r *memRepo) ListPending(ctx context.Context) ([]model.ScheduledPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []model.ScheduledPost
	for _, p := range r.posts {
		if p.Status == model.Scheduled {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memRepo) MarkPosted(ctx context.Context, id int64, externalID string, postedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.posts[id]
	if !ok || p.Status != model.Scheduled {
		return false, nil
	}

	t := postedAt.UTC()
	p.Status = model.Posted
	p.PostedAt = &t
	p.ExternalID = &externalID
	r.posts[id] = p
	return true, nil
}

func (r *memRepo) MarkFailed(ctx context.Context, id int64, reason string, postedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.posts[id]
	if !ok || p.Status != model.Scheduled {
		return false, nil
	}

	t := postedAt.UTC()
	p.Status = model.Failed
	p.PostedAt = &t
	p.Error = &reason
	r.posts[id] = p
	return true, nil
}

func (r *memRepo) MarkCancelled(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.posts[id]
	if !ok || p.Status != model.Scheduled {
		return false, nil
	}

	p.Status = model.Cancelled
	r.posts[id] = p
	return true, nil
}

// mustGet fetches a record directly, bypassing error injection.
func (r *memRepo) mustGet(id int64) model.ScheduledPost {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.posts[id]
}

type fakePublisher struct {
	mu    sync.Mutex
	calls int

	externalID string
	err        error
}

var _ PublishProvider = (*fakePublisher)(nil)

func (f *fakePublisher) Publish(ctx context.Context, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.externalID, nil
}

func (f *fakePublisher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeTimers struct {
	mu        sync.Mutex
	added     map[int64]time.Time
	cancelled []int64

	addErr error
}

var _ Timers = (*fakeTimers)(nil)

func newFakeTimers() *fakeTimers {
	return &fakeTimers{added: make(map[int64]time.Time)}
}

func (f *fakeTimers) Add(id int64, fireAtUTC time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return f.addErr
	}
	f.added[id] = fireAtUTC
	return nil
}

func (f *fakeTimers) Cancel(id int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, id)
}

type fakeCache struct {
	mu     sync.Mutex
	stored map[int64]string
	err    error
}

func newFakeCache() *fakeCache {
	return &fakeCache{stored: make(map[int64]string)}
}

func (f *fakeCache) StorePosted(ctx context.Context, postID int64, externalID string, postedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.stored[postID] = externalID
	return nil
}

var errBoom = errors.New("boom")
