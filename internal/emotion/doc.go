// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

// Package emotion classifies facial expressions in uploaded images.
//
// An image is decoded, converted to grayscale, stretched to 48x48 and scaled
// to [0, 1] (Preprocess), then run through a small convolutional network. The
// network architecture is read from a Keras model.json file and its weights
// from a safetensors file; inference is done in-process on top of gonum.
//
// The seven output classes are, in order:
//
//	angry, disgust, fear, happy, neutral, sad, surprise
//
// Classifier loads the network once and is safe for concurrent use:
//
//	clf := emotion.NewClassifier(emotion.DefaultConfig(), logging.WithComponent("emotion"))
//	if err := clf.Load(); err != nil {
//	    // faults.ErrModelUnavailable when an artifact is missing
//	}
//	pred, err := clf.Classify(ctx, upload)
package emotion
