package utils

import (
	"fmt"
	"net/http"
)

// ErrorKind classifies an AppError so callers can branch without string
// matching the user-facing message.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "not_found"
	KindConflict   ErrorKind = "conflict"
	KindForbidden  ErrorKind = "forbidden"
	KindState      ErrorKind = "state"
)

// AppError pairs a human-readable message with a machine-checkable kind.
// Conflict errors additionally carry the competing booking's time and the
// minute delta that triggered the rejection.
type AppError struct {
	Kind                  ErrorKind `json:"kind"`
	Message               string    `json:"message"`
	ConflictTime          string    `json:"conflict_time,omitempty"`
	TimeDifferenceMinutes int       `json:"time_difference_minutes,omitempty"`
}

func (e *AppError) Error() string {
	return e.Message
}

// HTTPStatus maps the error kind to a response code.
func (e *AppError) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindState:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func NewValidationError(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func NewForbiddenError(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

func NewStateError(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindState, Message: fmt.Sprintf(format, args...)}
}

// NewConflictError builds a conflict rejection citing the competing
// booking's time slot and the minute difference.
func NewConflictError(conflictTime string, diffMinutes int) *AppError {
	return &AppError{
		Kind: KindConflict,
		Message: fmt.Sprintf(
			"table already has a booking at %s, only %d minutes from the requested time; pick another table or time",
			conflictTime, diffMinutes),
		ConflictTime:          conflictTime,
		TimeDifferenceMinutes: diffMinutes,
	}
}
