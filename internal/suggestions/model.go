// Package suggestions generates CV improvement suggestions through the
// shared repair/parse/validate retry controller.
package suggestions

// Item is one model-proposed improvement to a CV section.
type Item struct {
	Section        string `json:"section"`
	SuggestionType string `json:"suggestionType"`
	OriginalText   string `json:"originalText,omitempty"`
	SuggestedText  string `json:"suggestedText,omitempty"`
	Reasoning      string `json:"reasoning"`
	Priority       string `json:"priority,omitempty"`
	TargetID       string `json:"targetId,omitempty"`
	TargetField    string `json:"targetField,omitempty"`
}

// Batch is the model's parsed response payload.
type Batch struct {
	Suggestions []Item `json:"suggestions"`
}

// SectionContactInfo is filtered out of responses by policy.
const SectionContactInfo = "contactInfo"

var validSections = map[string]struct{}{
	SectionContactInfo: {},
	"about":            {},
	"skills":           {},
	"experience":       {},
	"education":        {},
	"achievements":     {},
}

var validTypes = map[string]struct{}{
	"wording":        {},
	"add_content":    {},
	"remove_content": {},
	"reorder":        {},
	"format":         {},
}

var validPriorities = map[string]struct{}{
	"high":   {},
	"medium": {},
	"low":    {},
}
