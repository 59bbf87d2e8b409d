package document

import "context"

// Source provides pull-based sequential access to a stream of documents.
// Sources are lazy, possibly infinite, and single-pass: once a document has
// been emitted it will not be emitted again.
type Source interface {
	// Next returns the next document. Returns (zero, false, nil) when exhausted.
	Next(ctx context.Context) (Document, bool, error)
	// Close releases any resources held by the source.
	Close() error
}

// FromSlice creates a finite Source over the given documents.
func FromSlice(docs []Document) Source {
	return &sliceSource{docs: docs}
}

type sliceSource struct {
	docs  []Document
	index int
}

func (s *sliceSource) Next(ctx context.Context) (Document, bool, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, false, err
	}
	if s.index >= len(s.docs) {
		return Document{}, false, nil
	}
	doc := s.docs[s.index]
	s.index++
	return doc, true, nil
}

func (s *sliceSource) Close() error { return nil }

// FromChannel creates a Source that emits documents from ch until it is
// closed. Useful for push-style producers (watchers, listeners) that feed
// the pull-based engine.
func FromChannel(ch <-chan Document) Source {
	return &chanSource{ch: ch}
}

type chanSource struct {
	ch <-chan Document
}

func (s *chanSource) Next(ctx context.Context) (Document, bool, error) {
	select {
	case doc, open := <-s.ch:
		if !open {
			return Document{}, false, nil
		}
		return doc, true, nil
	case <-ctx.Done():
		return Document{}, false, ctx.Err()
	}
}

func (s *chanSource) Close() error { return nil }

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) (Document, bool, error)

func (f SourceFunc) Next(ctx context.Context) (Document, bool, error) { return f(ctx) }

func (f SourceFunc) Close() error { return nil }
