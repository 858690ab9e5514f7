package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Syncer persists a validated profile into normalized storage. A sync
// failure is fatal for the owning upload.
type Syncer interface {
	Sync(ctx context.Context, cvID, userID string, p *ExtractedProfile) error
}

// PGSyncer writes normalized profile rows in one transaction.
type PGSyncer struct {
	DB *sql.DB
}

func (s *PGSyncer) Sync(ctx context.Context, cvID, userID string, p *ExtractedProfile) error {
	if p == nil {
		return fmt.Errorf("profile is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin profile sync: %w", err)
	}
	defer tx.Rollback()

	if err := s.syncContact(ctx, tx, cvID, userID, p); err != nil {
		return err
	}
	if err := s.syncSkills(ctx, tx, cvID, userID, p.Skills); err != nil {
		return err
	}
	if err := s.syncExperience(ctx, tx, cvID, userID, p.Experience); err != nil {
		return err
	}
	if err := s.syncEducation(ctx, tx, cvID, userID, p.Education); err != nil {
		return err
	}
	if err := s.syncAchievements(ctx, tx, cvID, userID, p.Achievements); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit profile sync: %w", err)
	}
	return nil
}

func (s *PGSyncer) syncContact(ctx context.Context, tx *sql.Tx, cvID, userID string, p *ExtractedProfile) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM profile_contacts WHERE cv_id = $1`, cvID); err != nil {
		return fmt.Errorf("clear contacts: %w", err)
	}
	if p.ContactInfo == nil && p.About == nil {
		return nil
	}

	var name, email, phone sql.NullString
	var links []byte
	if c := p.ContactInfo; c != nil {
		name = nullString(c.Name)
		email = nullString(c.Email)
		phone = nullString(c.Phone)
		if len(c.Links) > 0 {
			encoded, err := json.Marshal(c.Links)
			if err != nil {
				return fmt.Errorf("encode links: %w", err)
			}
			links = encoded
		}
	}

	const query = `
INSERT INTO profile_contacts (cv_id, user_id, name, email, phone, links, about, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := tx.ExecContext(ctx, query, cvID, userID, name, email, phone, links, nullString(p.About), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert contact: %w", err)
	}
	return nil
}

func (s *PGSyncer) syncSkills(ctx context.Context, tx *sql.Tx, cvID, userID string, skills []Skill) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM profile_skills WHERE cv_id = $1`, cvID); err != nil {
		return fmt.Errorf("clear skills: %w", err)
	}
	const query = `
INSERT INTO profile_skills (id, cv_id, user_id, position, name, level)
VALUES ($1, $2, $3, $4, $5, $6)`
	for i, skill := range skills {
		if _, err := tx.ExecContext(ctx, query, uuid.NewString(), cvID, userID, i, skill.Name, nullString(skill.Level)); err != nil {
			return fmt.Errorf("insert skill %d: %w", i, err)
		}
	}
	return nil
}

func (s *PGSyncer) syncExperience(ctx context.Context, tx *sql.Tx, cvID, userID string, items []Experience) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM profile_experience WHERE cv_id = $1`, cvID); err != nil {
		return fmt.Errorf("clear experience: %w", err)
	}
	const query = `
INSERT INTO profile_experience (id, cv_id, user_id, position, title, company, start_date, end_date, description)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	for i, item := range items {
		if _, err := tx.ExecContext(ctx, query, uuid.NewString(), cvID, userID, i,
			item.Title, emptyNull(item.Company), emptyNull(item.StartDate), emptyNull(item.EndDate), emptyNull(item.Description)); err != nil {
			return fmt.Errorf("insert experience %d: %w", i, err)
		}
	}
	return nil
}

func (s *PGSyncer) syncEducation(ctx context.Context, tx *sql.Tx, cvID, userID string, items []Education) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM profile_education WHERE cv_id = $1`, cvID); err != nil {
		return fmt.Errorf("clear education: %w", err)
	}
	const query = `
INSERT INTO profile_education (id, cv_id, user_id, position, institution, degree, field, start_date, end_date)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	for i, item := range items {
		start := item.StartDate
		if start == "" {
			start = item.Year
		}
		if _, err := tx.ExecContext(ctx, query, uuid.NewString(), cvID, userID, i,
			item.Institution, emptyNull(item.Degree), emptyNull(item.Field), emptyNull(start), emptyNull(item.EndDate)); err != nil {
			return fmt.Errorf("insert education %d: %w", i, err)
		}
	}
	return nil
}

func (s *PGSyncer) syncAchievements(ctx context.Context, tx *sql.Tx, cvID, userID string, items []Achievement) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM profile_achievements WHERE cv_id = $1`, cvID); err != nil {
		return fmt.Errorf("clear achievements: %w", err)
	}
	const query = `
INSERT INTO profile_achievements (id, cv_id, user_id, position, title, description)
VALUES ($1, $2, $3, $4, $5, $6)`
	for i, item := range items {
		if _, err := tx.ExecContext(ctx, query, uuid.NewString(), cvID, userID, i,
			item.Title, emptyNull(item.Description)); err != nil {
			return fmt.Errorf("insert achievement %d: %w", i, err)
		}
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func emptyNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// MemorySyncer stores synced profiles in memory for tests and dev mode.
type MemorySyncer struct {
	mu       sync.RWMutex
	profiles map[string]*ExtractedProfile
}

func NewMemorySyncer() *MemorySyncer {
	return &MemorySyncer{profiles: make(map[string]*ExtractedProfile)}
}

func (s *MemorySyncer) Sync(ctx context.Context, cvID, userID string, p *ExtractedProfile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("profile is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[cvID] = p
	return nil
}

// Get returns the synced profile for a CV, if any.
func (s *MemorySyncer) Get(cvID string) (*ExtractedProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[cvID]
	return p, ok
}
