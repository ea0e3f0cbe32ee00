// Package collage composes same-sized images into a single grid raster.
package collage

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	_ "image/jpeg" // register decoder for JPEG inputs
)

// background fills cells left empty by a 3-image grid (dark slate).
var background = color.RGBA{R: 15, G: 23, B: 42, A: 255}

// Compose combines 2-4 images into one PNG grid: two images side by side,
// three or four in a 2x2 grid (with three, the last cell keeps the
// background fill). Inputs past the fourth are ignored. A single input is
// returned unchanged. Cells take the first image's dimensions; inputs are
// assumed equal-sized and are never rescaled. Compose does not mutate its
// inputs.
func Compose(images [][]byte) ([]byte, error) {
	switch len(images) {
	case 0:
		return nil, fmt.Errorf("compose: no images")
	case 1:
		return images[0], nil
	}
	if len(images) > 4 {
		images = images[:4]
	}

	decoded := make([]image.Image, 0, len(images))
	for i, data := range images {
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("compose: decode image %d: %w", i, err)
		}
		decoded = append(decoded, img)
	}

	cols, rows := 2, 1
	if len(decoded) >= 3 {
		rows = 2
	}

	cell := decoded[0].Bounds()
	w, h := cell.Dx(), cell.Dy()

	canvas := image.NewRGBA(image.Rect(0, 0, w*cols, h*rows))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	for i, img := range decoded {
		x := (i % cols) * w
		y := (i / cols) * h
		r := image.Rect(x, y, x+w, y+h)
		draw.Draw(canvas, r, img, img.Bounds().Min, draw.Src)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("compose: encode: %w", err)
	}
	return buf.Bytes(), nil
}
