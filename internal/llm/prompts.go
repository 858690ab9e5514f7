package llm

import (
	_ "embed"
	"strings"
)

var (
	//go:embed prompts/extract_profile.txt
	extractProfilePrompt string
	//go:embed prompts/suggestions.txt
	suggestionsPrompt string
)

// ExtractProfilePrompt returns the extraction prompt for the direct path,
// where the document travels as an inline file part.
func ExtractProfilePrompt() string {
	return extractProfilePrompt
}

// ExtractProfilePromptWithText returns the extraction prompt with the
// already-extracted document text appended.
func ExtractProfilePromptWithText(text string) string {
	var b strings.Builder
	b.WriteString(extractProfilePrompt)
	b.WriteString("\nResume content:\n")
	b.WriteString(text)
	return b.String()
}

// SuggestionsPrompt returns the suggestions prompt with the structured CV
// JSON appended.
func SuggestionsPrompt(cvJSON string) string {
	var b strings.Builder
	b.WriteString(suggestionsPrompt)
	b.WriteString("\n")
	b.WriteString(cvJSON)
	return b.String()
}
