package document

import (
	"bytes"
	"fmt"
	"io"
)

// Document is an externally-sourced item to be processed. It is read-only
// after creation: the engine opens its content exactly once per run.
type Document struct {
	// SourceID is the stable identifier assigned by the source.
	SourceID string
	// Name is an optional human-readable name (file name, title).
	Name string
	// ContentType is the MIME type of the raw content, if known.
	ContentType string

	open func() (io.ReadCloser, error)
}

// New creates a Document whose content is produced by open on demand.
// The open function may be called more than once if the source supports it;
// the engine itself calls it once per run.
func New(sourceID string, open func() (io.ReadCloser, error)) Document {
	return Document{SourceID: sourceID, open: open}
}

// FromBytes creates a re-enterable Document backed by an in-memory buffer.
func FromBytes(sourceID string, content []byte) Document {
	return Document{
		SourceID: sourceID,
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(content)), nil
		},
	}
}

// FromReader creates a single-use Document that yields r exactly once.
// A second Open returns an error.
func FromReader(sourceID string, r io.Reader) Document {
	used := false
	return Document{
		SourceID: sourceID,
		open: func() (io.ReadCloser, error) {
			if used {
				return nil, fmt.Errorf("document %s: content already consumed", sourceID)
			}
			used = true
			if rc, ok := r.(io.ReadCloser); ok {
				return rc, nil
			}
			return io.NopCloser(r), nil
		},
	}
}

// Open returns a reader over the raw content. The caller must close it.
func (d Document) Open() (io.ReadCloser, error) {
	if d.open == nil {
		return nil, fmt.Errorf("document %s: no content provider", d.SourceID)
	}
	return d.open()
}

// String returns the source identifier.
func (d Document) String() string {
	return d.SourceID
}
