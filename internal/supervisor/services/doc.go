// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

// Package services provides suture.Service wrappers: one per HTTP listener
// and a periodic value-log GC for the on-disk recommendation cache.
package services
