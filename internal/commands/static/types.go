package staticcmd

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/lagstiftning/go-lagstiftning/internal/generator"
	"github.com/lagstiftning/go-lagstiftning/internal/revisions"
)

const (
	buildSiteMessageType         = "lagstiftning.static.build"
	cleanSiteMessageType         = "lagstiftning.static.clean"
	validateRevisionsMessageType = "lagstiftning.revisions.validate"
)

// ResultCallback receives build results produced by generator operations. The callback is optional
// and is invoked synchronously from the handler when a BuildResult is available.
type ResultCallback func(ResultEnvelope)

// ResultEnvelope captures the outcome of a static command execution that generated a BuildResult.
type ResultEnvelope struct {
	Result   *generator.BuildResult
	Metadata map[string]any
}

// BuildSiteCommand executes a generator build. Empty Identifiers builds
// every revision in the source directory.
type BuildSiteCommand struct {
	Identifiers    []string       `json:"identifiers,omitempty"`
	DryRun         bool           `json:"dry_run,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (BuildSiteCommand) Type() string { return buildSiteMessageType }

// Validate ensures identifiers are non-empty and cannot escape the source directory.
func (m BuildSiteCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Identifiers, validation.Each(validation.Required, validation.By(identifierRule))),
	)
}

// CleanSiteCommand clears generator artifacts from the output directory.
type CleanSiteCommand struct{}

// Type implements command.Message.
func (CleanSiteCommand) Type() string { return cleanSiteMessageType }

// Validate satisfies command.Message; there are no payload constraints.
func (CleanSiteCommand) Validate() error { return nil }

// ValidateRevisionsCommand loads revisions without generating pages and
// reports every failure. Empty Identifiers checks the whole source directory.
type ValidateRevisionsCommand struct {
	Identifiers    []string               `json:"identifiers,omitempty"`
	ReportCallback func(ValidationReport) `json:"-"`
}

// Type implements command.Message.
func (ValidateRevisionsCommand) Type() string { return validateRevisionsMessageType }

// Validate ensures identifiers are non-empty and cannot escape the source directory.
func (m ValidateRevisionsCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Identifiers, validation.Each(validation.Required, validation.By(identifierRule))),
	)
}

// ValidationReport lists the outcome per revision, sorted by identifier.
type ValidationReport struct {
	Revisions []RevisionCheck
	Duration  time.Duration
}

// Failed returns the checks that did not pass.
func (r ValidationReport) Failed() []RevisionCheck {
	var failed []RevisionCheck
	for _, check := range r.Revisions {
		if check.Err != nil {
			failed = append(failed, check)
		}
	}
	return failed
}

// RevisionCheck is the outcome of loading one revision.
type RevisionCheck struct {
	Identifier string
	Elements   int
	Sections   int
	Kind       revisions.ErrorKind
	Field      string
	Err        error
}

func identifierRule(value any) error {
	raw, _ := value.(string)
	if raw == "" {
		return nil
	}
	if _, err := revisions.NormalizeIdentifier(raw); err != nil {
		return errors.New("must be a revision identifier such as 2024:12")
	}
	return nil
}
