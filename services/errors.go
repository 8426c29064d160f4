package services

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// ErrorKind is the stable machine-readable classification returned to
// clients alongside the human-readable message.
type ErrorKind string

const (
	KindValidation        ErrorKind = "VALIDATION"
	KindNotFound          ErrorKind = "NOT_FOUND"
	KindCapacityExceeded  ErrorKind = "CAPACITY_EXCEEDED"
	KindIdentityExhausted ErrorKind = "IDENTITY_EXHAUSTED"
	KindDurability        ErrorKind = "DURABILITY"
	KindArtifact          ErrorKind = "ARTIFACT"
)

// WorkflowError carries an error kind through the registration pipeline.
// Artifact-kind errors are never surfaced to callers; every other kind maps
// to exactly one HTTP status.
type WorkflowError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *WorkflowError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *WorkflowError) Unwrap() error { return e.Err }

// HTTPStatus maps the kind to the status code used by the HTTP layer.
func (e *WorkflowError) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindCapacityExceeded:
		return fiber.StatusBadRequest
	case KindNotFound:
		return fiber.StatusNotFound
	case KindDurability:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func newError(kind ErrorKind, cause error, format string, args ...any) *WorkflowError {
	return &WorkflowError{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

func validationErrorf(format string, args ...any) *WorkflowError {
	return newError(KindValidation, nil, format, args...)
}

func notFoundErrorf(format string, args ...any) *WorkflowError {
	return newError(KindNotFound, nil, format, args...)
}

func capacityErrorf(format string, args ...any) *WorkflowError {
	return newError(KindCapacityExceeded, nil, format, args...)
}

func identityExhaustedError(cause error) *WorkflowError {
	return newError(KindIdentityExhausted, cause, "could not generate a unique registration id")
}

func durabilityError(cause error, format string, args ...any) *WorkflowError {
	return newError(KindDurability, cause, format, args...)
}

func artifactErrorf(cause error, format string, args ...any) *WorkflowError {
	return newError(KindArtifact, cause, format, args...)
}

// AsWorkflowError unwraps err into a WorkflowError if it is one.
func AsWorkflowError(err error) (*WorkflowError, bool) {
	var we *WorkflowError
	if errors.As(err, &we) {
		return we, true
	}
	return nil, false
}

// respondError translates a workflow error into the JSON error shape. Errors
// without a kind are reported as durability problems, which is what an
// unclassified failure at this layer means in practice.
func respondError(c *fiber.Ctx, err error) error {
	if we, ok := AsWorkflowError(err); ok {
		return c.Status(we.HTTPStatus()).JSON(fiber.Map{
			"error": we.Message,
			"kind":  we.Kind,
		})
	}
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": "service temporarily unavailable",
		"kind":  KindDurability,
	})
}
