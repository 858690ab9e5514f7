package cvs

import (
	"fmt"
	"mime/multipart"
	"strings"
)

// DefaultMaxUploadBytes bounds accepted uploads when config does not say
// otherwise.
const DefaultMaxUploadBytes = 10 << 20

var allowedMimeTypes = map[string]struct{}{
	"application/pdf": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"text/plain": {},
}

// ValidateIntake checks an upload before any side effect happens. It is pure
// over its inputs and returns one of the typed intake errors.
func ValidateIntake(fh *multipart.FileHeader, data []byte, maxBytes int64) error {
	if fh == nil {
		return ErrMissingFile
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}

	// Emptiness wins over the declared type: the declared size and the
	// materialized buffer are checked independently, and a lying
	// content-length must not slip through.
	if fh.Size == 0 || len(data) == 0 {
		return ErrEmptyFile
	}

	mimeType := normalizeMime(fh.Header.Get("Content-Type"))
	if _, ok := allowedMimeTypes[mimeType]; !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, mimeType)
	}
	if fh.Size > maxBytes || int64(len(data)) > maxBytes {
		return fmt.Errorf("%w: limit %d bytes", ErrTooLarge, maxBytes)
	}
	return nil
}

func normalizeMime(raw string) string {
	return strings.ToLower(strings.TrimSpace(strings.Split(raw, ";")[0]))
}
