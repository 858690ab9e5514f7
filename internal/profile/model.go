// Package profile holds the structured CV profile extracted from a document,
// its quality validation, the improvement score, and profile sync.
package profile

// ContactInfo carries the contact fields found in a CV. A missing field is a
// nil pointer, never an empty string; scoring depends on that distinction.
type ContactInfo struct {
	Name  *string  `json:"name,omitempty"`
	Email *string  `json:"email,omitempty"`
	Phone *string  `json:"phone,omitempty"`
	Links []string `json:"links,omitempty"`
}

type Skill struct {
	Name  string  `json:"name"`
	Level *string `json:"level,omitempty"`
}

type Experience struct {
	Title       string `json:"title"`
	Company     string `json:"company,omitempty"`
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
	Description string `json:"description,omitempty"`
}

type Education struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree,omitempty"`
	Field       string `json:"field,omitempty"`
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
	Year        string `json:"year,omitempty"`
}

type Achievement struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// ExtractedProfile is the transient value object produced by extraction. It
// is never persisted as-is; it feeds scoring and profile sync.
type ExtractedProfile struct {
	ContactInfo  *ContactInfo  `json:"contactInfo,omitempty"`
	About        *string       `json:"about,omitempty"`
	Skills       []Skill       `json:"skills,omitempty"`
	Experience   []Experience  `json:"experience,omitempty"`
	Education    []Education   `json:"education,omitempty"`
	Achievements []Achievement `json:"achievements,omitempty"`
}
