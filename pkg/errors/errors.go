package errors

import (
	"errors"
	"fmt"
)

type NilArgumentError struct {
	Argument string
}

func (e *NilArgumentError) Error() string {
	return fmt.Sprintf("argument %q must not be nil", e.Argument)
}

func NewNilArgumentError(argument string) *NilArgumentError {
	return &NilArgumentError{Argument: argument}
}

func IsNilArgumentError(err error) bool {
	var e *NilArgumentError
	return errors.As(err, &e)
}

// InvalidStateError is returned when an operation is not allowed in the
// current state of the target, e.g. submitting a task twice.
type InvalidStateError struct {
	Operation string
	State     string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s: invalid state %q", e.Operation, e.State)
}

func NewInvalidStateError(operation, state string) *InvalidStateError {
	return &InvalidStateError{Operation: operation, State: state}
}

func IsInvalidStateError(err error) bool {
	var e *InvalidStateError
	return errors.As(err, &e)
}

// PoolRejectedError wraps the error returned by a thread pool which declined work.
type PoolRejectedError struct {
	cause error
}

func (e *PoolRejectedError) Error() string {
	return fmt.Sprintf("thread pool rejected work: %v", e.cause)
}

func (e *PoolRejectedError) Unwrap() error {
	return e.cause
}

func NewPoolRejectedError(cause error) *PoolRejectedError {
	return &PoolRejectedError{cause: cause}
}

func IsPoolRejectedError(err error) bool {
	var e *PoolRejectedError
	return errors.As(err, &e)
}

type ResourceNotFoundError struct {
	Kind string
	ID   string
}

func (e *ResourceNotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func NewJobNotFoundError(id string) *ResourceNotFoundError {
	return &ResourceNotFoundError{Kind: "job", ID: id}
}

func IsResourceNotFoundError(err error) bool {
	var e *ResourceNotFoundError
	return errors.As(err, &e)
}

type UnknownJobKindError struct {
	Kind string
}

func (e *UnknownJobKindError) Error() string {
	return fmt.Sprintf("unknown job kind %q", e.Kind)
}

func NewUnknownJobKindError(kind string) *UnknownJobKindError {
	return &UnknownJobKindError{Kind: kind}
}

func IsUnknownJobKindError(err error) bool {
	var e *UnknownJobKindError
	return errors.As(err, &e)
}

// WebhookRejectedError is returned when a callback endpoint answers with a
// client error. Retrying the same request will not help.
type WebhookRejectedError struct {
	URL        string
	StatusCode int
}

func (e *WebhookRejectedError) Error() string {
	return fmt.Sprintf("webhook %s rejected the notification with status %d", e.URL, e.StatusCode)
}

func NewWebhookRejectedError(url string, statusCode int) *WebhookRejectedError {
	return &WebhookRejectedError{URL: url, StatusCode: statusCode}
}

func IsWebhookRejectedError(err error) bool {
	var e *WebhookRejectedError
	return errors.As(err, &e)
}

type InvalidArgumentError struct {
	Argument string
	Reason   string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Argument, e.Reason)
}

func NewInvalidArgumentError(argument, reason string) *InvalidArgumentError {
	return &InvalidArgumentError{Argument: argument, Reason: reason}
}

func IsInvalidArgumentError(err error) bool {
	var e *InvalidArgumentError
	return errors.As(err, &e)
}
