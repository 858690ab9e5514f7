package object

import (
	"context"
	"io"
)

// ObjectStore persists uploaded CV files. Save returns the storage key the
// object can be fetched back with, along with the byte count written and
// the sniffed MIME type.
type ObjectStore interface {
	Save(ctx context.Context, userId string, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
}
