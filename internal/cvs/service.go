package cvs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/google/uuid"

	"cvprofile-backend/internal/llm"
	"cvprofile-backend/internal/llmretry"
	"cvprofile-backend/internal/profile"
	"cvprofile-backend/internal/shared/cache"
	"cvprofile-backend/internal/shared/metrics"
	"cvprofile-backend/internal/shared/storage/object"
	"cvprofile-backend/internal/shared/telemetry"
	"cvprofile-backend/internal/shared/util"
)

// Service runs the upload pipeline: intake, storage, extraction, scoring,
// profile sync, and the status lifecycle around them.
type Service struct {
	repo           Repo
	store          object.ObjectStore
	llm            llm.Client
	syncer         profile.Syncer
	cache          cache.Cache
	strategy       ExtractionStrategy
	retry          llmretry.Config
	maxUploadBytes int64
	now            func() time.Time
}

// NewService wires the pipeline dependencies explicitly.
func NewService(repo Repo, store object.ObjectStore, client llm.Client, syncer profile.Syncer, c cache.Cache, strategy ExtractionStrategy, retry llmretry.Config, maxUploadBytes int64) *Service {
	if retry.Flow == "" {
		retry.Flow = "extraction"
	}
	return &Service{
		repo:           repo,
		store:          store,
		llm:            client,
		syncer:         syncer,
		cache:          c,
		strategy:       strategy,
		retry:          retry,
		maxUploadBytes: maxUploadBytes,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// UploadCeiling is the effective intake size limit in bytes.
func (s *Service) UploadCeiling() int64 {
	if s.maxUploadBytes > 0 {
		return s.maxUploadBytes
	}
	return DefaultMaxUploadBytes
}

// Upload validates and stores an upload, then runs analysis synchronously.
// The returned record is created as soon as intake passes; an analysis
// failure surfaces in the record's status, not as an Upload error.
func (s *Service) Upload(ctx context.Context, userID string, fh *multipart.FileHeader, data []byte) (CVRecord, error) {
	if err := ValidateIntake(fh, data, s.UploadCeiling()); err != nil {
		return CVRecord{}, err
	}

	sanitized, err := util.SanitizeFileName(fh.Filename)
	if err != nil {
		return CVRecord{}, fmt.Errorf("%w: %v", ErrInvalidFileName, err)
	}

	storageKey, sizeBytes, storedMime, err := s.store.Save(ctx, userID, sanitized, bytes.NewReader(data))
	if err != nil {
		return CVRecord{}, fmt.Errorf("store upload: %w", err)
	}

	mimeType := normalizeMime(fh.Header.Get("Content-Type"))
	if mimeType == "" {
		mimeType = storedMime
	}

	now := s.now()
	rec := CVRecord{
		ID:            uuid.NewString(),
		UserID:        userID,
		FileName:      sanitized,
		MimeType:      mimeType,
		SizeBytes:     sizeBytes,
		StorageKey:    storageKey,
		ContentDigest: util.ContentDigest(data),
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return CVRecord{}, fmt.Errorf("create record: %w", err)
	}

	s.runPipeline(ctx, rec, data)

	final, err := s.repo.Get(ctx, rec.ID)
	if err != nil {
		return rec, nil
	}
	return final, nil
}

// runPipeline drives one record from PENDING to a terminal status. It never
// returns an error; every failure is absorbed into the record.
func (s *Service) runPipeline(ctx context.Context, rec CVRecord, data []byte) {
	metrics.IncExtractionStarted()
	start := s.now()

	if s.dedup(ctx, rec) {
		return
	}

	// ANALYZING is set unconditionally before any extraction work, on both
	// strategies.
	if err := s.repo.MarkAnalyzing(ctx, rec.ID, s.now()); err != nil {
		s.fail(ctx, rec, fmt.Errorf("mark analyzing: %w", err))
		return
	}

	req, auditText, err := s.strategy.Prepare(ctx, data, rec.MimeType, rec.FileName)
	if err != nil {
		s.fail(ctx, rec, err)
		return
	}

	outcome, err := llmretry.Run(ctx, s.retry, llmretry.Steps[*profile.ExtractedProfile]{
		Invoke: func(ctx context.Context, attempt int) (string, error) {
			metrics.IncLLMAttempt()
			return s.llm.Generate(ctx, req)
		},
		Parse: func(candidate string) (*profile.ExtractedProfile, error) {
			var p profile.ExtractedProfile
			if err := json.Unmarshal([]byte(candidate), &p); err != nil {
				return nil, err
			}
			return &p, nil
		},
		Validate: profile.ValidateExtraction,
	})
	if err != nil {
		s.fail(ctx, rec, err)
		return
	}
	if outcome.Degraded {
		telemetry.Warn("cv.extraction.degraded", map[string]any{
			"cv_id":   rec.ID,
			"attempt": outcome.Attempt,
			"errors":  outcome.Errors,
		})
	}

	score := profile.Score(outcome.Value)
	if err := s.syncer.Sync(ctx, rec.ID, rec.UserID, outcome.Value); err != nil {
		s.fail(ctx, rec, fmt.Errorf("profile sync: %w", err))
		return
	}

	if err := s.repo.MarkCompleted(ctx, rec.ID, score, auditText, s.now()); err != nil {
		// Completion bookkeeping failed after sync; force FAILED so the
		// record still reaches a terminal state.
		s.fail(ctx, rec, fmt.Errorf("mark completed: %w", err))
		return
	}
	s.cacheSummary(ctx, rec.ID, rec.UserID, score)

	metrics.IncExtractionCompleted()
	metrics.ObserveExtractionDurationMs(float64(s.now().Sub(start).Microseconds()) / 1000.0)
	telemetry.Info("cv.extraction.completed", map[string]any{
		"cv_id":    rec.ID,
		"score":    score,
		"strategy": s.strategy.Name(),
		"attempt":  outcome.Attempt,
	})
}

// dedup completes the record from a prior COMPLETED analysis of identical
// content, skipping the model call entirely.
func (s *Service) dedup(ctx context.Context, rec CVRecord) bool {
	prior, found, err := s.repo.FindCompletedByDigest(ctx, rec.UserID, rec.ContentDigest)
	if err != nil || !found || prior.ID == rec.ID {
		return false
	}
	score := 0
	if prior.ImprovementScore != nil {
		score = *prior.ImprovementScore
	}
	if err := s.repo.MarkCompleted(ctx, rec.ID, score, prior.ExtractedText, s.now()); err != nil {
		telemetry.Warn("cv.dedup.completion_failed", map[string]any{
			"cv_id": rec.ID,
			"error": sanitizeError(err),
		})
		return false
	}
	s.cacheSummary(ctx, rec.ID, rec.UserID, score)
	metrics.IncExtractionDedup()
	telemetry.Info("cv.dedup_hit", map[string]any{
		"cv_id":    rec.ID,
		"prior_id": prior.ID,
		"digest":   rec.ContentDigest,
	})
	return true
}

// fail forces the record to FAILED. Bookkeeping runs detached from request
// cancellation; a failed terminal update is logged critical, never surfaced.
func (s *Service) fail(ctx context.Context, rec CVRecord, cause error) {
	metrics.IncExtractionFailed()
	code := classifyFailure(cause)
	msg := sanitizeError(cause)
	telemetry.Error("cv.extraction.failed", map[string]any{
		"cv_id": rec.ID,
		"code":  code,
		"error": msg,
	})

	detached := context.WithoutCancel(ctx)
	if err := s.repo.MarkFailed(detached, rec.ID, code, msg, s.now()); err != nil {
		telemetry.Critical("cv.status.update_failed", map[string]any{
			"cv_id": rec.ID,
			"error": sanitizeError(err),
		})
	}

	if s.cache != nil {
		pattern := "cv:analysis:" + rec.ID + ":*"
		if _, err := s.cache.InvalidatePattern(detached, pattern); err != nil {
			telemetry.Warn("cv.cache.invalidate_failed", map[string]any{
				"cv_id":   rec.ID,
				"pattern": pattern,
				"error":   sanitizeError(err),
			})
		}
	}
}

// Status returns a record for its owning user. Completed analyses are
// served from the cache when present; the FAILED-transition invalidation
// purges the same keys.
func (s *Service) Status(ctx context.Context, userID, id string) (CVRecord, error) {
	if rec, ok := s.cachedStatus(ctx, id); ok {
		if rec.UserID != userID {
			return CVRecord{}, ErrForbidden
		}
		return rec, nil
	}

	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return CVRecord{}, err
	}
	if rec.UserID != userID {
		return CVRecord{}, ErrForbidden
	}
	return rec, nil
}

const analysisCacheTTL = 15 * time.Minute

func analysisSummaryKey(id string) string {
	return "cv:analysis:" + id + ":summary"
}

type analysisSummary struct {
	UserID           string `json:"userId"`
	Status           Status `json:"status"`
	ImprovementScore int    `json:"improvementScore"`
}

// cacheSummary stores a COMPLETED analysis for status reads. Best effort;
// a cache fault never disturbs the pipeline.
func (s *Service) cacheSummary(ctx context.Context, id, userID string, score int) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(analysisSummary{
		UserID:           userID,
		Status:           StatusCompleted,
		ImprovementScore: score,
	})
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, analysisSummaryKey(id), string(payload), analysisCacheTTL); err != nil {
		telemetry.Warn("cv.cache.store_failed", map[string]any{
			"cv_id": id,
			"error": sanitizeError(err),
		})
	}
}

func (s *Service) cachedStatus(ctx context.Context, id string) (CVRecord, bool) {
	if s.cache == nil {
		return CVRecord{}, false
	}
	raw, found, err := s.cache.Get(ctx, analysisSummaryKey(id))
	if err != nil || !found {
		return CVRecord{}, false
	}
	var summary analysisSummary
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		return CVRecord{}, false
	}
	score := summary.ImprovementScore
	return CVRecord{
		ID:               id,
		UserID:           summary.UserID,
		Status:           summary.Status,
		ImprovementScore: &score,
	}, true
}

// List returns the user's records, newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]CVRecord, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}
