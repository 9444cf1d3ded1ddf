package storage

import (
	"context"
	"io"
)

// Gateway is durable, collision-free file storage. Upload names are generated
// from random identifiers by the caller, so concurrent writers never target
// the same key. Save methods return the stored path/key, which is what gets
// persisted on the file row and inside task payloads.
type Gateway interface {
	// SaveUpload streams r to storage under name, counting bytes. If the
	// stream exceeds limit the partial write is removed and
	// domain.ErrFileTooLarge is returned.
	SaveUpload(ctx context.Context, name string, r io.Reader, limit int64) (string, error)
	OpenUpload(ctx context.Context, path string) (io.ReadCloser, error)
	DeleteUpload(ctx context.Context, path string) error

	SaveProcessed(ctx context.Context, name string, r io.Reader) (string, error)
	OpenProcessed(ctx context.Context, path string) (io.ReadCloser, error)
}
