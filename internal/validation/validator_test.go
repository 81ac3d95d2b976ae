// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

package validation

import (
	"reflect"
	"strings"
	"testing"
)

func TestGetValidator(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
	if v1 == nil {
		t.Error("GetValidator() should not return nil")
	}
}

type titleRequest struct {
	Title *string `json:"title" validate:"required"`
	N     *int    `json:"n,omitempty" validate:"omitempty,min=1,max=100"`
}

type multiRequest struct {
	Titles []string `json:"titles" validate:"required"`
	N      *int     `json:"n,omitempty" validate:"omitempty,min=1,max=100"`
}

type nestedRequest struct {
	Query titleRequest `json:"query"`
}

func ptr[T any](v T) *T { return &v }

func TestValidateStructValid(t *testing.T) {
	tests := []struct {
		name  string
		input any
	}{
		{"title with default n", &titleRequest{Title: ptr("Blue")}},
		{"empty title is still present", &titleRequest{Title: ptr(""), N: ptr(1)}},
		{"upper bound", &titleRequest{Title: ptr("x"), N: ptr(100)}},
		{"empty titles list", &multiRequest{Titles: []string{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateStruct(tt.input); err != nil {
				t.Errorf("ValidateStruct() returned unexpected error: %v", err)
			}
		})
	}
}

func TestValidateStructInvalid(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		wantLoc  string
		wantType string
	}{
		{"missing title", &titleRequest{}, "body.title", "missing"},
		{"n too low", &titleRequest{Title: ptr("x"), N: ptr(0)}, "body.n", "greater_than_equal"},
		{"n too high", &titleRequest{Title: ptr("x"), N: ptr(101)}, "body.n", "less_than_equal"},
		{"missing titles", &multiRequest{}, "body.titles", "missing"},
		{"nested", &nestedRequest{}, "body.query.title", "missing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.input)
			if err == nil {
				t.Fatal("ValidateStruct() should have returned an error")
			}

			found := false
			for _, d := range err.Details() {
				if strings.Join(d.Loc, ".") == tt.wantLoc && d.Type == tt.wantType {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("expected %s at %s, got: %+v", tt.wantType, tt.wantLoc, err.Details())
			}
		})
	}
}

func TestDetails(t *testing.T) {
	err := ValidateStruct(&titleRequest{N: ptr(500)})
	if err == nil {
		t.Fatal("expected validation error")
	}

	details := err.Details()
	if len(details) != 2 {
		t.Fatalf("details = %+v", details)
	}

	want := map[string]FieldDetail{
		"title": {Loc: []string{"body", "title"}, Msg: "Field required", Type: "missing"},
		"n":     {Loc: []string{"body", "n"}, Msg: "Input should be less than or equal to 100", Type: "less_than_equal"},
	}
	for _, d := range details {
		w, ok := want[d.Loc[len(d.Loc)-1]]
		if !ok || !reflect.DeepEqual(d, w) {
			t.Errorf("detail = %+v, want %+v", d, w)
		}
	}
	if !strings.Contains(err.Error(), "body.title: Field required") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestNewBodyError(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		wantLoc []string
	}{
		{"whole body", "", []string{"body"}},
		{"field", "n", []string{"body", "n"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewBodyError(tt.field, "JSON decode error").Details()
			if len(d) != 1 || !reflect.DeepEqual(d[0].Loc, tt.wantLoc) || d[0].Type != "json_invalid" {
				t.Errorf("details = %+v", d)
			}
		})
	}
}

func TestMinMaxMessages(t *testing.T) {
	type lengths struct {
		Tags []string `json:"tags" validate:"min=2,max=3"`
	}

	err := ValidateStruct(&lengths{Tags: []string{"a"}})
	if err == nil {
		t.Fatal("expected error")
	}
	if d := err.Details()[0]; d.Msg != "Input should have at least 2 items" || d.Type != "too_short" {
		t.Errorf("detail = %+v", d)
	}

	err = ValidateStruct(&lengths{Tags: []string{"a", "b", "c", "d"}})
	if err == nil {
		t.Fatal("expected error")
	}
	if d := err.Details()[0]; d.Msg != "Input should have at most 3 items" || d.Type != "too_long" {
		t.Errorf("detail = %+v", d)
	}

	type name struct {
		Name string `json:"name" validate:"min=3"`
	}
	err = ValidateStruct(&name{Name: "ab"})
	if err == nil {
		t.Fatal("expected error")
	}
	if d := err.Details()[0]; d.Msg != "Input should have at least 3 characters" {
		t.Errorf("detail = %+v", d)
	}
}
