package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"causeway-hq/causeway/pkg/dml/ast"
	dmlErrors "causeway-hq/causeway/pkg/dml/errors"
)

// Document is one model source document: a logical name (usually the
// file path) and its raw bytes. The loader never reads disk itself
// except through the LoadFiles and LoadDir conveniences.
type Document struct {
	Name string
	Data []byte
}

// Loader parses model documents into a decision model.
type Loader struct {
	maxFileSize int64 // Maximum document size in bytes (default: 10MB)
}

// NewLoader creates a loader with default configuration.
func NewLoader() *Loader {
	return &Loader{
		maxFileSize: 10 * 1024 * 1024, // 10MB
	}
}

// WithMaxFileSize sets the maximum document size limit.
func (l *Loader) WithMaxFileSize(size int64) *Loader {
	l.maxFileSize = size
	return l
}

// Load parses the given documents into a single decision model named
// name. Structural and duplicate-definition errors across all documents
// are accumulated into one ErrorList; if any occur, no model is
// returned. Cross-document references are tolerated and left dangling
// for the resolver.
func (l *Loader) Load(name string, docs []Document) (*ast.DecisionModel, error) {
	b := newBuilder(name)

	for _, doc := range docs {
		if int64(len(doc.Data)) > l.maxFileSize {
			return nil, &dmlErrors.Error{
				Type:     dmlErrors.ErrorTypeIO,
				Message:  fmt.Sprintf("document size %d exceeds maximum %d bytes", len(doc.Data), l.maxFileSize),
				Location: ast.Location{File: doc.Name},
			}
		}

		parsed, err := parseYAMLBytes(doc.Data)
		if err != nil {
			return nil, &dmlErrors.Error{
				Type:       dmlErrors.ErrorTypeSyntax,
				Message:    fmt.Sprintf("YAML parsing failed: %v", err),
				Location:   ast.Location{File: doc.Name, Line: 1},
				Suggestion: "check YAML syntax (indentation, colons, quotes)",
			}
		}

		for _, d := range parsed {
			b.addDocument(d, doc.Name)
		}
	}

	return b.finish()
}

// LoadFiles reads the given files and parses them as one decision model.
func (l *Loader) LoadFiles(name string, paths []string) (*ast.DecisionModel, error) {
	docs := make([]Document, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &dmlErrors.Error{
				Type:     dmlErrors.ErrorTypeIO,
				Message:  fmt.Sprintf("failed to read model document: %v", err),
				Location: ast.Location{File: path},
			}
		}
		docs = append(docs, Document{Name: path, Data: data})
	}
	return l.Load(name, docs)
}

// LoadDir loads every .yaml/.yml document under dir (non-recursive) as
// one decision model named after the directory. Files are loaded in
// lexical order so rule set positions are stable across runs.
func (l *Loader) LoadDir(dir string) (*ast.DecisionModel, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &dmlErrors.Error{
			Type:     dmlErrors.ErrorTypeIO,
			Message:  fmt.Sprintf("failed to read model directory: %v", err),
			Location: ast.Location{File: dir},
		}
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext == ".yaml" || ext == ".yml" {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)

	return l.LoadFiles(filepath.Base(dir), paths)
}
