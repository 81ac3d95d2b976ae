// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldDetail is one entry of a request validation failure, shaped like the
// items of a FastAPI 422 "detail" list so existing clients can parse it.
type FieldDetail struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// RequestValidationError collects every problem found in one request body.
type RequestValidationError struct {
	details []FieldDetail
}

// Details returns the entries located under "body". Never empty.
func (ve *RequestValidationError) Details() []FieldDetail {
	if len(ve.details) == 0 {
		return []FieldDetail{{Loc: []string{"body"}, Msg: "Validation failed", Type: "value_error"}}
	}
	return ve.details
}

func (ve *RequestValidationError) Error() string {
	parts := make([]string, 0, len(ve.details))
	for _, d := range ve.Details() {
		parts = append(parts, strings.Join(d.Loc, ".")+": "+d.Msg)
	}
	return strings.Join(parts, "; ")
}

// NewBodyError reports a request body that could not be decoded at all.
// field may be empty when the failure is not tied to one field.
func NewBodyError(field, message string) *RequestValidationError {
	return &RequestValidationError{details: []FieldDetail{{
		Loc:  bodyLoc(field),
		Msg:  message,
		Type: "json_invalid",
	}}}
}

func bodyLoc(field string) []string {
	loc := []string{"body"}
	if field != "" {
		loc = append(loc, strings.Split(field, ".")...)
	}
	return loc
}

// GetValidator returns the shared validator. Field names in errors are taken
// from json tags.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			switch name {
			case "-":
				return ""
			case "":
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// ValidateStruct runs the struct's validate tags and returns nil or a
// *RequestValidationError with one detail per failed field.
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    respondValidationError(w, r, verr)
//	    return
//	}
func ValidateStruct(s any) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &RequestValidationError{details: []FieldDetail{{
			Loc: []string{"body"}, Msg: err.Error(), Type: "value_error",
		}}}
	}

	details := make([]FieldDetail, len(fieldErrs))
	for i, fe := range fieldErrs {
		typ, msg := describe(fe)
		details[i] = FieldDetail{Loc: bodyLoc(fieldPath(fe)), Msg: msg, Type: typ}
	}
	return &RequestValidationError{details: details}
}

// fieldPath drops the top-level struct name from the namespace, so a nested
// field reads "query.title" rather than "Request.query.title".
func fieldPath(fe validator.FieldError) string {
	if _, rest, ok := strings.Cut(fe.Namespace(), "."); ok {
		return rest
	}
	return fe.Field()
}

// describe returns the pydantic error type and message for a failed tag.
// min and max mean a length for strings, slices and maps and a bound otherwise.
func describe(fe validator.FieldError) (typ, msg string) {
	p := fe.Param()
	sized := false
	unit := "items"
	switch fe.Kind() {
	case reflect.String:
		sized, unit = true, "characters"
	case reflect.Slice, reflect.Array, reflect.Map:
		sized = true
	}

	switch fe.Tag() {
	case "required":
		return "missing", "Field required"
	case "min":
		if sized {
			return "too_short", fmt.Sprintf("Input should have at least %s %s", p, unit)
		}
		return "greater_than_equal", "Input should be greater than or equal to " + p
	case "max":
		if sized {
			return "too_long", fmt.Sprintf("Input should have at most %s %s", p, unit)
		}
		return "less_than_equal", "Input should be less than or equal to " + p
	case "gte":
		return "greater_than_equal", "Input should be greater than or equal to " + p
	case "lte":
		return "less_than_equal", "Input should be less than or equal to " + p
	case "gt":
		return "greater_than", "Input should be greater than " + p
	case "lt":
		return "less_than", "Input should be less than " + p
	case "oneof":
		return "enum", "Input should be one of: " + p
	}
	return "value_error", fmt.Sprintf("Value error, failed %s validation", fe.Tag())
}
