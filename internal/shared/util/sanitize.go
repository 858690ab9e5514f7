package util

import (
	"errors"
	"strings"
)

const maxFileNameLen = 255

// SanitizeFileName normalizes an uploaded file name for storage keys.
// Path separators become underscores, control characters are dropped, and
// traversal patterns or empty results are rejected.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errors.New("invalid file name")
	}
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
	if len(s) > maxFileNameLen {
		s = s[len(s)-maxFileNameLen:]
	}
	if s == "" {
		return "", errors.New("invalid file name")
	}
	return s, nil
}
