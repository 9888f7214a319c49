package source

import (
	"context"

	"causeway-hq/causeway/pkg/dml/parser"
)

// Source produces model documents and optionally watches them for
// change.
type Source interface {
	// Name is the model name the documents belong to.
	Name() string

	// LoadDocuments returns the current documents. Callers feed them to
	// parser.Loader.Load.
	LoadDocuments(ctx context.Context) ([]parser.Document, error)

	// Watch blocks, invoking onChange after the document set changes,
	// until the context is cancelled. Sources that cannot watch return
	// immediately with no error.
	Watch(ctx context.Context, onChange func() error) error
}
