package model

import (
	"errors"
	"fmt"
)

// PublishErrorCode enumerates the failure classes of the publishing pipeline.
type PublishErrorCode string

const (
	ErrCredentialMissing        PublishErrorCode = "CREDENTIAL_MISSING"
	ErrRefreshFailed            PublishErrorCode = "REFRESH_FAILED"
	ErrContainerCreateFailed    PublishErrorCode = "CONTAINER_CREATE_FAILED"
	ErrContainerErrored         PublishErrorCode = "CONTAINER_ERRORED"
	ErrContainerTimedOut        PublishErrorCode = "CONTAINER_TIMED_OUT"
	ErrPublishFailed            PublishErrorCode = "PUBLISH_FAILED"
	ErrCannotReplyToForeignPost PublishErrorCode = "CANNOT_REPLY_TO_FOREIGN_POST"
	ErrInvalidMediaURL          PublishErrorCode = "INVALID_MEDIA_URL"
)

// PublishError carries a failure class plus the human-readable message that
// ends up in the per-platform PublishResult.
type PublishError struct {
	Code    PublishErrorCode
	Message string
	Err     error
}

func (e *PublishError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *PublishError) Unwrap() error { return e.Err }

// NewPublishError builds a PublishError with a formatted message.
func NewPublishError(code PublishErrorCode, format string, args ...interface{}) *PublishError {
	return &PublishError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapPublishError attaches a cause to a classified failure.
func WrapPublishError(code PublishErrorCode, err error, format string, args ...interface{}) *PublishError {
	return &PublishError{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// CodeOf extracts the failure class from an error chain. Unclassified errors
// map to ErrPublishFailed so no failure escapes the taxonomy.
func CodeOf(err error) PublishErrorCode {
	var pe *PublishError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ErrPublishFailed
}

// MessageOf returns the user-facing message for an error chain.
func MessageOf(err error) string {
	var pe *PublishError
	if errors.As(err, &pe) {
		return pe.Message
	}
	return err.Error()
}
