// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

// Package faults defines the classified failures shared by the emotion and
// recommendation services.
//
// Services return *Error values built with New or Wrap; handlers match them
// with errors.Is against the sentinels and pick an HTTP status per surface:
//
//	if errors.Is(err, faults.ErrNotFound) {
//	    // 404
//	}
//
// Code.ServerFault separates server-side failures (missing model artifacts,
// a malformed catalog) from client errors (an undecodable image, an unknown
// title).
package faults
