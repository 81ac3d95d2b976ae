// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

package faults

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_IsMatchesByCode(t *testing.T) {
	t.Parallel()

	err := New(CodeNotFound, "Song '%s' not found in the dataset", "x")
	wrapped := fmt.Errorf("recommend: %w", err)

	if !errors.Is(wrapped, ErrNotFound) {
		t.Error("expected wrapped error to match ErrNotFound")
	}
	if errors.Is(wrapped, ErrNoSameCluster) {
		t.Error("did not expect match with ErrNoSameCluster")
	}
	if got := MessageOf(wrapped); got != "Song 'x' not found in the dataset" {
		t.Errorf("MessageOf = %q", got)
	}
}

func TestWrap_KeepsCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("unexpected EOF")
	err := Wrap(CodeCatalogFormat, cause, "decode catalog")

	if !errors.Is(err, cause) {
		t.Error("expected cause to be reachable through Unwrap")
	}
	if err.Error() != "decode catalog: unexpected EOF" {
		t.Errorf("Error() = %q", err.Error())
	}
	if MessageOf(err) != "decode catalog" {
		t.Errorf("MessageOf = %q", MessageOf(err))
	}
}

func TestCodeOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"classified", New(CodeDecode, "bad image"), CodeDecode},
		{"wrapped", fmt.Errorf("x: %w", New(CodeMissingKey, "k")), CodeMissingKey},
		{"plain", errors.New("boom"), CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCode_ServerFault(t *testing.T) {
	t.Parallel()

	server := []Code{CodeModelUnavailable, CodeInferenceShape, CodeCatalogFormat, CodeMissingKey, CodeInsufficientData, CodeInternal}
	client := []Code{CodeDecode, CodeNotFound, CodeNoSameCluster, CodeInvalidQuery, CodeValidation}

	for _, c := range server {
		if !c.ServerFault() {
			t.Errorf("%s should be a server fault", c)
		}
	}
	for _, c := range client {
		if c.ServerFault() {
			t.Errorf("%s should be a client fault", c)
		}
	}
}
