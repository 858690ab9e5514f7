// Package repair normalizes raw LLM output into a best-effort JSON candidate.
package repair

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	fenceRe       = regexp.MustCompile("```[a-zA-Z]*[ \t]*\r?\n?")
	trailCommaRe  = regexp.MustCompile(`,\s*([}\]])`)
	colonBreakRe  = regexp.MustCompile(`":[ \t]*\r?\n[ \t\r\n]*`)
	firstObjectRe = regexp.MustCompile(`(?s)\{.*\}`)
	itemCloseRe   = regexp.MustCompile(`"\s*\}`)
)

// Repair returns its best-effort JSON candidate for raw model text. It never
// fails and is idempotent; a candidate that still does not parse is counted
// downstream as an attempt failure, not a crash.
func Repair(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return text
	}
	if strings.HasPrefix(text, "{") && gjson.Valid(text) {
		return text
	}

	text = fenceRe.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "```", "")
	text = trimToOuterObject(text)
	// Twice: a single pass leaves nested occurrences uncovered.
	text = trailCommaRe.ReplaceAllString(text, "$1")
	text = trailCommaRe.ReplaceAllString(text, "$1")
	text = colonBreakRe.ReplaceAllString(text, `": `)
	text = stripTrailingGarbage(text)
	if !strings.HasPrefix(strings.TrimSpace(text), "{") {
		if match := firstObjectRe.FindString(text); match != "" {
			text = match
		}
	}
	text = recloseSuggestions(text)
	return strings.TrimSpace(text)
}

// trimToOuterObject keeps the first top-level {...} span found by bracket
// matching, skipping braces inside string literals.
func trimToOuterObject(s string) string {
	start := strings.Index(s, "{")
	if start < 0 {
		return s
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return s[start:]
}

func stripTrailingGarbage(s string) string {
	last := strings.LastIndexAny(s, "}]")
	if last >= 0 && last < len(s)-1 {
		return s[:last+1]
	}
	return s
}

// recloseSuggestions handles a truncated suggestions payload: cut back to the
// last syntactically complete item and re-close the array and object.
func recloseSuggestions(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.Contains(trimmed, `"suggestions"`) || gjson.Valid(trimmed) {
		return s
	}
	locs := itemCloseRe.FindAllStringIndex(trimmed, -1)
	if len(locs) == 0 {
		return s
	}
	end := locs[len(locs)-1][1]
	return trimmed[:end] + "]}"
}
