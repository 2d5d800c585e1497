package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	ErrSchemaInvalid    = errors.New("schema invalid")
	ErrSchemaValidation = errors.New("schema validation failed")
)

// Issue is a single validation failure. Location is a JSON pointer into the
// validated document ("" for the root).
type Issue struct {
	Location string
	Message  string
}

// Path renders Location with a leading "#", the form used in error messages.
func (i Issue) Path() string {
	location := strings.TrimSpace(i.Location)
	if location == "" {
		return "#"
	}
	if !strings.HasPrefix(location, "#") {
		location = "#" + location
	}
	return location
}

// SchemaError reports every issue found while validating a payload.
type SchemaError struct {
	Issues []Issue
	Cause  error
}

func (e *SchemaError) Error() string {
	if len(e.Issues) == 0 {
		if e.Cause != nil {
			return e.Cause.Error()
		}
		return ErrSchemaValidation.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		if issue.Message == "" {
			parts = append(parts, issue.Path())
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", issue.Path(), issue.Message))
	}
	return strings.Join(parts, "; ")
}

func (e *SchemaError) Unwrap() error {
	return ErrSchemaValidation
}

// Field returns the location of the first issue, "#" when there is none.
func (e *SchemaError) Field() string {
	if e == nil || len(e.Issues) == 0 {
		return "#"
	}
	return e.Issues[0].Path()
}

// Issues extracts validation issues from err.
func Issues(err error) []Issue {
	if err == nil {
		return nil
	}
	var schemaErr *SchemaError
	if errors.As(err, &schemaErr) && schemaErr != nil {
		return schemaErr.Issues
	}
	var validationErr *jsonschema.ValidationError
	if errors.As(err, &validationErr) && validationErr != nil {
		return collectValidationIssues(validationErr)
	}
	return []Issue{{Message: err.Error()}}
}

// Validator checks payloads against one compiled schema. It is safe for
// concurrent use.
type Validator struct {
	schema *jsonschema.Schema
}

// Compile builds a Validator from a JSON schema document.
func Compile(name string, document map[string]any) (*Validator, error) {
	if len(document) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrSchemaInvalid)
	}
	if strings.TrimSpace(name) == "" {
		name = "schema.json"
	}
	compiled, err := compileSchema(name, document)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	return &Validator{schema: compiled}, nil
}

// MustCompile is Compile for schemas known at build time.
func MustCompile(name string, document map[string]any) *Validator {
	v, err := Compile(name, document)
	if err != nil {
		panic(err)
	}
	return v
}

// Validate checks payload, an untyped tree as produced by a YAML or JSON
// decoder, and returns a *SchemaError on failure. The payload is normalised
// through JSON first so decoder-specific scalar types do not leak into
// validation; values JSON cannot represent fail as a root issue.
func (v *Validator) Validate(payload any) error {
	normalized, err := Normalize(payload)
	if err != nil {
		return &SchemaError{
			Issues: []Issue{{Message: err.Error()}},
			Cause:  err,
		}
	}
	if err := v.schema.Validate(normalized); err != nil {
		return &SchemaError{
			Issues: Issues(err),
			Cause:  err,
		}
	}
	return nil
}

// Normalize converts payload into the canonical JSON value tree
// (map[string]any, []any, string, json.Number, bool, nil).
func Normalize(payload any) (any, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("payload is not representable as JSON: %w", err)
	}
	decoder := json.NewDecoder(bytes.NewReader(encoded))
	decoder.UseNumber()
	var out any
	if err := decoder.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func compileSchema(name string, schema map[string]any) (*jsonschema.Schema, error) {
	encoded, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(name, bytes.NewReader(encoded)); err != nil {
		return nil, err
	}
	return compiler.Compile(name)
}

func collectValidationIssues(err *jsonschema.ValidationError) []Issue {
	if err == nil {
		return nil
	}
	issues := []Issue{}
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			message := strings.TrimSpace(node.Message)
			issues = append(issues, Issue{
				Location: issueLocation(strings.TrimSpace(node.InstanceLocation), message),
				Message:  message,
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}

// issueLocation points additionalProperties failures at the offending key
// instead of its parent object.
func issueLocation(location, message string) string {
	if !strings.HasPrefix(message, "additionalProperties ") {
		return location
	}
	start := strings.IndexByte(message, '\'')
	if start < 0 {
		return location
	}
	end := strings.IndexByte(message[start+1:], '\'')
	if end <= 0 {
		return location
	}
	key := message[start+1 : start+1+end]
	key = strings.ReplaceAll(strings.ReplaceAll(key, "~", "~0"), "/", "~1")
	return location + "/" + key
}
