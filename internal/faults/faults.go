// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

package faults

import (
	"errors"
	"fmt"
)

// Code is a machine-readable failure classification.
type Code string

const (
	CodeDecode           Code = "DECODE_ERROR"
	CodeModelUnavailable Code = "MODEL_UNAVAILABLE"
	CodeInferenceShape   Code = "INFERENCE_SHAPE_ERROR"
	CodeCatalogFormat    Code = "CATALOG_FORMAT_ERROR"
	CodeMissingKey       Code = "MISSING_KEY_ERROR"
	CodeInsufficientData Code = "INSUFFICIENT_DATA"
	CodeNotFound         Code = "NOT_FOUND"
	CodeNoSameCluster    Code = "NO_SAME_CLUSTER_MATCH"
	CodeInvalidQuery     Code = "INVALID_QUERY"
	CodeValidation       Code = "VALIDATION_FAILED"
	CodeInternal         Code = "INTERNAL_ERROR"
)

// ServerFault reports whether the code describes a failure on the serving side
// (missing artifacts, malformed model output, a bad catalog) rather than a bad request.
func (c Code) ServerFault() bool {
	switch c {
	case CodeModelUnavailable, CodeInferenceShape, CodeCatalogFormat,
		CodeMissingKey, CodeInsufficientData, CodeInternal:
		return true
	default:
		return false
	}
}

// Error is a classified failure carrying a human-readable message.
type Error struct {
	Code    Code
	Message string
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error with the same Code, so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Sentinels for errors.Is.
var (
	ErrDecode           = &Error{Code: CodeDecode, Message: "cannot decode image"}
	ErrModelUnavailable = &Error{Code: CodeModelUnavailable, Message: "model unavailable"}
	ErrInferenceShape   = &Error{Code: CodeInferenceShape, Message: "unexpected prediction shape"}
	ErrCatalogFormat    = &Error{Code: CodeCatalogFormat, Message: "malformed catalog"}
	ErrMissingKey       = &Error{Code: CodeMissingKey, Message: "missing key column"}
	ErrInsufficientData = &Error{Code: CodeInsufficientData, Message: "insufficient data"}
	ErrNotFound         = &Error{Code: CodeNotFound, Message: "not found"}
	ErrNoSameCluster    = &Error{Code: CodeNoSameCluster, Message: "no same-cluster match"}
	ErrInvalidQuery     = &Error{Code: CodeInvalidQuery, Message: "invalid query"}
)

// New creates a classified error.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a classified error around a cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: cause}
}

// CodeOf returns the classification of err, or CodeInternal when err is not classified.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// MessageOf returns the classified message without the wrapped cause, or err.Error().
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
