package ast

import "fmt"

// Location identifies where an element was declared in its source document.
// Line and column come from the YAML parser and are preserved so that
// load and resolution errors point back at the offending declaration.
type Location struct {
	File   string // Source document path (or logical name for in-memory sources)
	Line   int    // 1-based line number
	Column int    // 1-based column number
}

// IsValid returns true if the location carries at least a file name.
func (l Location) IsValid() bool {
	return l.File != "" || l.Line > 0
}

// String formats the location as "file:line:column".
func (l Location) String() string {
	if l.Line == 0 {
		return l.File
	}
	if l.Column == 0 {
		return fmt.Sprintf("%s:%d", l.File, l.Line)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}
