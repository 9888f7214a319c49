package source

import (
	"context"

	"causeway-hq/causeway/pkg/dml/parser"
)

// MemorySource serves a fixed document set. Useful for tests.
type MemorySource struct {
	name string
	docs []parser.Document
}

// NewMemorySource creates an in-memory source for the named model.
func NewMemorySource(name string, docs ...parser.Document) *MemorySource {
	return &MemorySource{name: name, docs: docs}
}

// Name returns the model name.
func (s *MemorySource) Name() string {
	return s.name
}

// LoadDocuments returns the fixed document set.
func (s *MemorySource) LoadDocuments(ctx context.Context) ([]parser.Document, error) {
	return append([]parser.Document(nil), s.docs...), nil
}

// Watch returns immediately: an in-memory document set never changes.
func (s *MemorySource) Watch(ctx context.Context, onChange func() error) error {
	return nil
}
