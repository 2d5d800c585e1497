package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"

	"github.com/lagstiftning/go-lagstiftning/internal/revisions"
)

const (
	commandValidationCode   = "COMMAND_VALIDATION_FAILED"
	commandContextCanceled  = "COMMAND_CONTEXT_CANCELED"
	commandContextTimeout   = "COMMAND_CONTEXT_TIMEOUT"
	commandContextErrorCode = "COMMAND_CONTEXT_ERROR"
	commandExecuteFailed    = "COMMAND_EXECUTION_FAILED"
)

// Text codes attached to revision failures.
const (
	RevisionNotFoundCode          = "REVISION_NOT_FOUND"
	RevisionReadFailedCode        = "REVISION_READ_FAILED"
	RevisionMalformedCode         = "REVISION_MALFORMED"
	RevisionSchemaInvalidCode     = "REVISION_SCHEMA_INVALID"
	RevisionRenderFailedCode      = "REVISION_RENDER_FAILED"
	RevisionIdentifierInvalidCode = "REVISION_IDENTIFIER_INVALID"
)

// WrapValidationError tags err as a validation failure.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "command validation failed").
		WithTextCode(commandValidationCode)
}

func wrapContextError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution cancelled").
			WithTextCode(commandContextCanceled)
	case errors.Is(err, context.DeadlineExceeded):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution deadline exceeded").
			WithTextCode(commandContextTimeout)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command context error").
			WithTextCode(commandContextErrorCode)
	}
}

// wrapExecuteError categorises revision failures by kind. Malformed input
// is a validation failure; everything else is a command failure.
func wrapExecuteError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	if errors.Is(err, revisions.ErrInvalidIdentifier) {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "revision identifier is invalid").
			WithTextCode(RevisionIdentifierInvalidCode)
	}
	switch revisions.KindOf(err) {
	case revisions.KindNotFound:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "revision not found").
			WithTextCode(RevisionNotFoundCode)
	case revisions.KindRead:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "revision could not be read").
			WithTextCode(RevisionReadFailedCode)
	case revisions.KindDeserialization:
		return goerrors.Wrap(err, goerrors.CategoryValidation, "revision is not valid YAML").
			WithTextCode(RevisionMalformedCode)
	case revisions.KindSchema:
		return goerrors.Wrap(err, goerrors.CategoryValidation, "revision does not match the schema").
			WithTextCode(RevisionSchemaInvalidCode)
	case revisions.KindRender:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "revision markdown could not be rendered").
			WithTextCode(RevisionRenderFailedCode)
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution failed").
		WithTextCode(commandExecuteFailed)
}

// TextCode returns the text code attached to err, "" when there is none.
func TextCode(err error) string {
	var wrapped *goerrors.Error
	if errors.As(err, &wrapped) {
		return wrapped.TextCode
	}
	return ""
}
