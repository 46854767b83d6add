// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package apperr defines the domain error taxonomy. Every user-visible
// failure carries a stable machine-readable kind plus a human-readable
// message; clients must never infer the error type from message text.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the stable machine-readable error classification.
type Kind string

const (
	KindValidation        Kind = "validation_error"
	KindDuplicateName     Kind = "duplicate_name"
	KindNotFound          Kind = "not_found"
	KindCyclicMove        Kind = "cyclic_move"
	KindProtectedCategory Kind = "protected_category"
	KindStoreUnavailable  Kind = "store_unavailable"
)

// Error is a domain error with a kind and message. It optionally wraps an
// underlying cause for logging.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Validation reports malformed input. The message names the offending field.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// DuplicateName reports a sibling-name or tag-name collision.
func DuplicateName(format string, args ...any) *Error {
	return &Error{Kind: KindDuplicateName, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports a missing resource, including resources owned by someone
// else — ownership mismatches are indistinguishable from absence.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// CyclicMove reports a re-parent operation that would create a cycle.
func CyclicMove(format string, args ...any) *Error {
	return &Error{Kind: KindCyclicMove, Message: fmt.Sprintf(format, args...)}
}

// Protected reports an attempt to delete or illegally mutate an immutable
// predefined category.
func Protected(format string, args ...any) *Error {
	return &Error{Kind: KindProtectedCategory, Message: fmt.Sprintf(format, args...)}
}

// Unavailable reports a transient persistence failure. Safe to retry for
// idempotent operations only.
func Unavailable(cause error) *Error {
	return &Error{Kind: KindStoreUnavailable, Message: "storage temporarily unavailable", cause: cause}
}

// KindOf extracts the Kind from err, or "" if err is not a domain error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// HTTPStatus maps a domain error to its HTTP status code. Non-domain errors
// map to 500.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindDuplicateName, KindCyclicMove:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindProtectedCategory:
		return http.StatusForbidden
	case KindStoreUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
