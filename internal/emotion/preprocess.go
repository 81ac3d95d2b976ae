// Echonova ML - Facial Emotion and Song Recommendation Services
// Copyright 2026 Echonova contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echonova/echonova-ml

package emotion

import (
	"bytes"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder

	_ "golang.org/x/image/bmp" // Register BMP decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // Register TIFF decoder
	_ "golang.org/x/image/webp" // Register WebP decoder

	"github.com/echonova/echonova-ml/internal/faults"
)

// InputSize is the side length of the square grayscale input the network expects.
const InputSize = 48

// Preprocess decodes an image, converts it to grayscale, stretches it to
// InputSize x InputSize and scales pixel values to [0, 1]. The result has
// shape (1, InputSize, InputSize, 1).
func Preprocess(data []byte) (*Tensor, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, faults.Wrap(faults.CodeDecode, err, "cannot identify image file")
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, faults.New(faults.CodeDecode, "cannot identify image file")
	}

	gray := image.NewGray(b)
	draw.Draw(gray, b, img, b.Min, draw.Src)

	small := image.NewGray(image.Rect(0, 0, InputSize, InputSize))
	draw.CatmullRom.Scale(small, small.Bounds(), gray, b, draw.Src, nil)

	t := NewTensor(1, InputSize, InputSize, 1)
	for y := 0; y < InputSize; y++ {
		row := small.Pix[y*small.Stride : y*small.Stride+InputSize]
		for x, p := range row {
			t.Data[y*InputSize+x] = float64(p) / 255
		}
	}
	return t, nil
}
