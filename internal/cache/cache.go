package cache

import (
	"context"
	"time"
)

type PostCache interface {
	StorePosted(ctx context.Context, postID int64, externalID string, postedAt time.Time) error
}
