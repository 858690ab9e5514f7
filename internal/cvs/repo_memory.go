package cvs

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo for tests and dev mode.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]CVRecord // id -> record
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]CVRecord)}
}

func (r *MemoryRepo) Create(ctx context.Context, rec CVRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.data[rec.ID]; exists {
		return fmt.Errorf("record %s already exists", rec.ID)
	}
	r.data[rec.ID] = rec
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (CVRecord, error) {
	if err := ctx.Err(); err != nil {
		return CVRecord{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.data[id]
	if !ok {
		return CVRecord{}, ErrNotFound
	}
	return rec, nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]CVRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []CVRecord
	for _, rec := range r.data {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepo) FindCompletedByDigest(ctx context.Context, userID, digest string) (CVRecord, bool, error) {
	if err := ctx.Err(); err != nil {
		return CVRecord{}, false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var best CVRecord
	found := false
	for _, rec := range r.data {
		if rec.UserID != userID || rec.ContentDigest != digest || rec.Status != StatusCompleted {
			continue
		}
		if !found || rec.CreatedAt.After(best.CreatedAt) {
			best = rec
			found = true
		}
	}
	return best, found, nil
}

func (r *MemoryRepo) MarkAnalyzing(ctx context.Context, id string, at time.Time) error {
	return r.update(ctx, id, func(rec *CVRecord) error {
		if rec.Status.terminal() {
			return fmt.Errorf("record %s already terminal (%s)", id, rec.Status)
		}
		rec.Status = StatusAnalyzing
		rec.StartedAt = &at
		rec.UpdatedAt = at
		return nil
	})
}

func (r *MemoryRepo) MarkCompleted(ctx context.Context, id string, score int, extractedText string, at time.Time) error {
	return r.update(ctx, id, func(rec *CVRecord) error {
		if rec.Status.terminal() {
			return fmt.Errorf("record %s already terminal (%s)", id, rec.Status)
		}
		rec.Status = StatusCompleted
		rec.ImprovementScore = &score
		rec.ExtractedText = extractedText
		rec.CompletedAt = &at
		rec.UpdatedAt = at
		return nil
	})
}

func (r *MemoryRepo) MarkFailed(ctx context.Context, id string, errorCode, errorMessage string, at time.Time) error {
	return r.update(ctx, id, func(rec *CVRecord) error {
		if rec.Status.terminal() {
			return fmt.Errorf("record %s already terminal (%s)", id, rec.Status)
		}
		rec.Status = StatusFailed
		rec.ErrorCode = errorCode
		rec.ErrorMessage = errorMessage
		rec.CompletedAt = &at
		rec.UpdatedAt = at
		return nil
	})
}

func (r *MemoryRepo) update(ctx context.Context, id string, apply func(*CVRecord) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.data[id]
	if !ok {
		return ErrNotFound
	}
	if err := apply(&rec); err != nil {
		return err
	}
	r.data[id] = rec
	return nil
}
