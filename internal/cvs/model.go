// Package cvs owns the CV upload record, its analysis lifecycle, the
// extraction strategies, and the HTTP surface around them.
package cvs

import "time"

// Status is the analysis lifecycle state of a CV record. Transitions move
// forward only; COMPLETED and FAILED are terminal.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusAnalyzing Status = "ANALYZING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

// DirectExtractionText is the extracted_text audit value on the direct path,
// where no local text extraction happens.
const DirectExtractionText = "[direct extraction]"

// CVRecord is one uploaded document and its analysis outcome.
type CVRecord struct {
	ID               string
	UserID           string
	FileName         string
	MimeType         string
	SizeBytes        int64
	StorageKey       string
	ContentDigest    string
	Status           Status
	ImprovementScore *int
	ExtractedText    string
	ErrorCode        string
	ErrorMessage     string
	StartedAt        *time.Time
	CompletedAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// terminal reports whether the status allows no further transitions.
func (s Status) terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}
