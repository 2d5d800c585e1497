package revisions

import (
	"errors"
	"fmt"

	"github.com/lagstiftning/go-lagstiftning/internal/validation"
)

// ErrorKind classifies a failed load.
type ErrorKind string

const (
	KindNotFound        ErrorKind = "not_found"
	KindRead            ErrorKind = "read"
	KindDeserialization ErrorKind = "deserialization"
	KindSchema          ErrorKind = "schema"
	KindRender          ErrorKind = "render"
)

var (
	ErrNotFound          = errors.New("revisions: source not found")
	ErrRead              = errors.New("revisions: source unreadable")
	ErrDeserialization   = errors.New("revisions: source is not valid YAML")
	ErrSchema            = errors.New("revisions: source does not match the revision schema")
	ErrRender            = errors.New("revisions: markdown rendering failed")
	ErrInvalidIdentifier = errors.New("revisions: invalid identifier")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindNotFound:
		return ErrNotFound
	case KindRead:
		return ErrRead
	case KindDeserialization:
		return ErrDeserialization
	case KindSchema:
		return ErrSchema
	case KindRender:
		return ErrRender
	}
	return nil
}

// LoadError reports why a revision could not be loaded. It matches the
// sentinel for its kind through errors.Is and exposes the underlying cause
// (a *validation.SchemaError for schema failures) through errors.As.
type LoadError struct {
	Identifier string
	Path       string
	Kind       ErrorKind
	Err        error
}

func (e *LoadError) Error() string {
	target := e.Identifier
	if target == "" {
		target = e.Path
	}
	if e.Err == nil {
		return fmt.Sprintf("revisions: load %s: %s", target, e.Kind)
	}
	return fmt.Sprintf("revisions: load %s: %s: %v", target, e.Kind, e.Err)
}

func (e *LoadError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if sentinel := e.Kind.sentinel(); sentinel != nil {
		errs = append(errs, sentinel)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Field returns the JSON pointer of the offending field for schema and
// render failures, "" otherwise.
func (e *LoadError) Field() string {
	var schemaErr *validation.SchemaError
	if errors.As(e.Err, &schemaErr) {
		return schemaErr.Field()
	}
	var renderErr *RenderError
	if errors.As(e.Err, &renderErr) {
		return renderErr.Field()
	}
	return ""
}

// RenderError identifies the element text that failed to render.
type RenderError struct {
	Index    int
	Language Language
	Err      error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field(), e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Field returns the JSON pointer of the rendered text, e.g. "#/elements/3/text/en".
func (e *RenderError) Field() string {
	return fmt.Sprintf("#/elements/%d/text/%s", e.Index, e.Language)
}

// KindOf returns the kind of the first LoadError in err's chain, "" when
// there is none.
func KindOf(err error) ErrorKind {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Kind
	}
	return ""
}

// FieldOf returns the offending field path recorded in err, "" when there is
// none.
func FieldOf(err error) string {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Field()
	}
	return ""
}
