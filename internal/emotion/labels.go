// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

package emotion

// NumClasses is the width of the classifier output.
const NumClasses = 7

// labels are in network output order. Index i of the probability vector is labels[i].
var labels = [NumClasses]string{"angry", "disgust", "fear", "happy", "neutral", "sad", "surprise"}

// Classes returns the class labels in network output order.
func Classes() []string {
	out := make([]string, NumClasses)
	copy(out, labels[:])
	return out
}

// Label returns the label for an output index, or "" when out of range.
func Label(i int) string {
	if i < 0 || i >= NumClasses {
		return ""
	}
	return labels[i]
}
