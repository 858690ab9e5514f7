package suggestions

import (
	"fmt"
	"strings"

	"cvprofile-backend/internal/llmretry"
)

const maxReasoningLen = 500

// ValidateBatch judges a parsed batch item by item. Filtered carries only
// the items that passed; the verdict is Valid only when nothing was
// rejected. targetId/targetField are not cross-checked against the CV here.
func ValidateBatch(b Batch) llmretry.Verdict[Batch] {
	var (
		kept     []Item
		errs     []string
		warnings []string
	)

	for i, item := range b.Suggestions {
		item.Section = strings.TrimSpace(item.Section)
		item.SuggestionType = strings.TrimSpace(item.SuggestionType)
		item.OriginalText = strings.TrimSpace(item.OriginalText)
		item.SuggestedText = strings.TrimSpace(item.SuggestedText)
		item.Reasoning = sanitizeReasoning(item.Reasoning)
		item.Priority = strings.ToLower(strings.TrimSpace(item.Priority))

		if _, ok := validSections[item.Section]; !ok {
			errs = append(errs, fmt.Sprintf("suggestions[%d]: unknown section %q", i, item.Section))
			continue
		}
		if _, ok := validTypes[item.SuggestionType]; !ok {
			errs = append(errs, fmt.Sprintf("suggestions[%d]: unknown suggestionType %q", i, item.SuggestionType))
			continue
		}
		if item.SuggestionType == "remove_content" {
			if item.OriginalText == "" {
				errs = append(errs, fmt.Sprintf("suggestions[%d]: remove_content requires originalText", i))
				continue
			}
		} else if item.SuggestedText == "" {
			errs = append(errs, fmt.Sprintf("suggestions[%d]: %s requires suggestedText", i, item.SuggestionType))
			continue
		}
		if item.Reasoning == "" {
			warnings = append(warnings, fmt.Sprintf("suggestions[%d]: empty reasoning", i))
		}
		if _, ok := validPriorities[item.Priority]; !ok {
			if item.Priority != "" {
				warnings = append(warnings, fmt.Sprintf("suggestions[%d]: unknown priority %q, using medium", i, item.Priority))
			}
			item.Priority = "medium"
		}

		kept = append(kept, item)
	}

	if len(b.Suggestions) == 0 {
		errs = append(errs, "no suggestions in response")
	}

	return llmretry.Verdict[Batch]{
		Valid:    len(errs) == 0,
		Filtered: Batch{Suggestions: kept},
		Count:    len(kept),
		Errors:   errs,
		Warnings: warnings,
	}
}

func sanitizeReasoning(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
	if len(s) > maxReasoningLen {
		s = s[:maxReasoningLen]
	}
	return s
}
