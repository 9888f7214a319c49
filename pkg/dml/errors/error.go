package errors

import (
	"fmt"
	"strings"

	"causeway-hq/causeway/pkg/dml/ast"
)

// ErrorType categorizes an error raised while loading or resolving a
// decision model.
type ErrorType string

const (
	ErrorTypeSyntax     ErrorType = "syntax"     // YAML syntax error
	ErrorTypeMalformed  ErrorType = "malformed"  // Required structural element absent or unrecognized
	ErrorTypeDuplicate  ErrorType = "duplicate"  // Two definitions share a qualified name
	ErrorTypeUnresolved ErrorType = "unresolved" // Reference could not be matched by qualified name
	ErrorTypeIO         ErrorType = "io"         // Source read error
)

// Error is a load- or resolution-time error with enough identity
// information (qualified names, source locations) to be actionable
// without re-inspecting the source documents.
type Error struct {
	Type       ErrorType
	Message    string
	Location   ast.Location
	Suggestion string // Suggested fix (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] %s", e.Type, e.Message))
	if e.Location.IsValid() {
		sb.WriteString(fmt.Sprintf("\n  --> %s", e.Location.String()))
	}
	if e.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("\n  = suggestion: %s", e.Suggestion))
	}
	return sb.String()
}

// ErrorList accumulates errors across a whole load or resolution pass
// instead of aborting on the first one. Explanation research needs bulk
// diagnostics: a model author fixes all unresolved references in one
// round trip, not one per run.
type ErrorList struct {
	Errors []*Error
}

// NewErrorList creates an empty error list.
func NewErrorList() *ErrorList {
	return &ErrorList{Errors: make([]*Error, 0)}
}

// Add appends an error to the list.
func (el *ErrorList) Add(err *Error) {
	el.Errors = append(el.Errors, err)
}

// AddError creates and appends an error from its parts.
func (el *ErrorList) AddError(errType ErrorType, message string, location ast.Location) {
	el.Add(&Error{Type: errType, Message: message, Location: location})
}

// AddErrorWithSuggestion creates and appends an error carrying a
// suggested fix.
func (el *ErrorList) AddErrorWithSuggestion(errType ErrorType, message string, location ast.Location, suggestion string) {
	el.Add(&Error{Type: errType, Message: message, Location: location, Suggestion: suggestion})
}

// HasErrors returns true if any error has been accumulated.
func (el *ErrorList) HasErrors() bool {
	return len(el.Errors) > 0
}

// Count returns the number of accumulated errors.
func (el *ErrorList) Count() int {
	return len(el.Errors)
}

// ByType returns all errors of the given type.
func (el *ErrorList) ByType(errType ErrorType) []*Error {
	var result []*Error
	for _, err := range el.Errors {
		if err.Type == errType {
			result = append(result, err)
		}
	}
	return result
}

// HasErrorType returns true if at least one error of the given type has
// been accumulated.
func (el *ErrorList) HasErrorType(errType ErrorType) bool {
	return len(el.ByType(errType)) > 0
}

// Error implements the error interface, formatting every accumulated
// error.
func (el *ErrorList) Error() string {
	if !el.HasErrors() {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("found %d error(s):\n", el.Count()))
	for i, err := range el.Errors {
		sb.WriteString(fmt.Sprintf("\nerror %d:\n%s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ToError returns nil when the list is empty, otherwise the list itself.
func (el *ErrorList) ToError() error {
	if !el.HasErrors() {
		return nil
	}
	return el
}
