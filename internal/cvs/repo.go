package cvs

import (
	"context"
	"time"
)

// Repo defines persistence operations for CV records.
type Repo interface {
	Create(ctx context.Context, rec CVRecord) error
	Get(ctx context.Context, id string) (CVRecord, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]CVRecord, error)
	// FindCompletedByDigest returns the newest COMPLETED record for the
	// user+digest pair, used for dedup.
	FindCompletedByDigest(ctx context.Context, userID, digest string) (CVRecord, bool, error)
	MarkAnalyzing(ctx context.Context, id string, at time.Time) error
	MarkCompleted(ctx context.Context, id string, score int, extractedText string, at time.Time) error
	MarkFailed(ctx context.Context, id string, errorCode, errorMessage string, at time.Time) error
}
