package model

import "time"

type Status string

const (
	Scheduled Status = "scheduled"
	Posted    Status = "posted"
	Failed    Status = "failed"
	Cancelled Status = "cancelled"
)

// Terminal reports whether no further transitions are allowed from s.
func (s Status) Terminal() bool {
	return s == Posted || s == Failed || s == Cancelled
}

// ScheduledPost is a post queued for future delivery. Text and
// ScheduledUTC are immutable after insert; a record leaves Scheduled
// exactly once (to Posted, Failed or Cancelled) and never re-enters it.
type ScheduledPost struct {
	ID           int64      `json:"id"`
	Text         string     `json:"text"`
	ScheduledUTC time.Time  `json:"scheduledUtc"`
	Status       Status     `json:"status"`
	PostedAt     *time.Time `json:"postedAt,omitempty"`
	ExternalID   *string    `json:"externalId,omitempty"`
	Error        *string    `json:"error,omitempty"`
}
