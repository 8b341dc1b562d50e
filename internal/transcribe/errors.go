package transcribe

import (
	"errors"
	"fmt"
)

// ErrConfig marks configuration mistakes caught before any backend call:
// a non-positive chunk duration or a source reporting negative duration.
var ErrConfig = errors.New("transcribe: invalid configuration")

// ChunkError reports a backend failure on one chunk. Partial holds the
// result assembled from the chunks that completed before it, so callers
// can show or persist what they have.
type ChunkError struct {
	Chunk   int
	Partial *Result
	Err     error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("transcribe chunk %d: %v", e.Chunk, e.Err)
}

func (e *ChunkError) Unwrap() error { return e.Err }
