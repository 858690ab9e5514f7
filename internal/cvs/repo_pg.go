package cvs

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const cvColumns = `
id, user_id, file_name, mime_type, size_bytes, storage_key, content_digest,
status, improvement_score, extracted_text, error_code, error_message,
started_at, completed_at, created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, rec CVRecord) error {
	const query = `
INSERT INTO cvs (
    id,
    user_id,
    file_name,
    mime_type,
    size_bytes,
    storage_key,
    content_digest,
    status,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.DB.ExecContext(
		ctx,
		query,
		rec.ID,
		rec.UserID,
		rec.FileName,
		rec.MimeType,
		rec.SizeBytes,
		rec.StorageKey,
		rec.ContentDigest,
		string(rec.Status),
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	return err
}

func (r *PGRepo) Get(ctx context.Context, id string) (CVRecord, error) {
	query := `SELECT ` + cvColumns + ` FROM cvs WHERE id = $1`
	rec, err := scanRecord(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return CVRecord{}, ErrNotFound
	}
	return rec, err
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]CVRecord, error) {
	query := `SELECT ` + cvColumns + `
FROM cvs
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CVRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *PGRepo) FindCompletedByDigest(ctx context.Context, userID, digest string) (CVRecord, bool, error) {
	query := `SELECT ` + cvColumns + `
FROM cvs
WHERE user_id = $1 AND content_digest = $2 AND status = $3
ORDER BY created_at DESC
LIMIT 1`
	rec, err := scanRecord(r.DB.QueryRowContext(ctx, query, userID, digest, string(StatusCompleted)))
	if errors.Is(err, sql.ErrNoRows) {
		return CVRecord{}, false, nil
	}
	if err != nil {
		return CVRecord{}, false, err
	}
	return rec, true, nil
}

func (r *PGRepo) MarkAnalyzing(ctx context.Context, id string, at time.Time) error {
	const query = `
UPDATE cvs
SET status = $1, started_at = $2, updated_at = $2
WHERE id = $3 AND status NOT IN ($4, $5)`
	return r.exec(ctx, query, string(StatusAnalyzing), at, id, string(StatusCompleted), string(StatusFailed))
}

func (r *PGRepo) MarkCompleted(ctx context.Context, id string, score int, extractedText string, at time.Time) error {
	const query = `
UPDATE cvs
SET status = $1, improvement_score = $2, extracted_text = $3, completed_at = $4, updated_at = $4
WHERE id = $5 AND status NOT IN ($6, $7)`
	return r.exec(ctx, query, string(StatusCompleted), score, extractedText, at, id, string(StatusCompleted), string(StatusFailed))
}

func (r *PGRepo) MarkFailed(ctx context.Context, id string, errorCode, errorMessage string, at time.Time) error {
	const query = `
UPDATE cvs
SET status = $1, error_code = $2, error_message = $3, completed_at = $4, updated_at = $4
WHERE id = $5 AND status NOT IN ($6, $7)`
	return r.exec(ctx, query, string(StatusFailed), errorCode, errorMessage, at, id, string(StatusCompleted), string(StatusFailed))
}

func (r *PGRepo) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (CVRecord, error) {
	var rec CVRecord
	var status string
	var score sql.NullInt64
	var extractedText, errorCode, errorMessage sql.NullString
	var startedAt, completedAt sql.NullTime
	err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.FileName,
		&rec.MimeType,
		&rec.SizeBytes,
		&rec.StorageKey,
		&rec.ContentDigest,
		&status,
		&score,
		&extractedText,
		&errorCode,
		&errorMessage,
		&startedAt,
		&completedAt,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return CVRecord{}, err
	}
	rec.Status = Status(status)
	if score.Valid {
		v := int(score.Int64)
		rec.ImprovementScore = &v
	}
	rec.ExtractedText = extractedText.String
	rec.ErrorCode = errorCode.String
	rec.ErrorMessage = errorMessage.String
	if startedAt.Valid {
		rec.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		rec.CompletedAt = &completedAt.Time
	}
	return rec, nil
}
