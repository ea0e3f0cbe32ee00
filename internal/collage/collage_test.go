package collage

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// solidPNG encodes a w×h image filled with c.
func solidPNG(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

func decode(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	return img
}

func pixel(t *testing.T, img image.Image, x, y int) color.RGBA {
	t.Helper()
	r, g, b, a := img.At(x, y).RGBA()
	return color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
}

var (
	red   = color.RGBA{255, 0, 0, 255}
	green = color.RGBA{0, 255, 0, 255}
	blue  = color.RGBA{0, 0, 255, 255}
	white = color.RGBA{255, 255, 255, 255}
)

func TestCompose_ZeroInputs(t *testing.T) {
	t.Parallel()
	if _, err := Compose(nil); err == nil {
		t.Fatalf("want error on empty input")
	}
}

func TestCompose_SingleInput_Identity(t *testing.T) {
	t.Parallel()
	in := solidPNG(t, 8, 8, red)
	out, err := Compose([][]byte{in})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if !bytes.Equal(in, out) {
		t.Fatalf("single input must be returned unchanged")
	}
}

func TestCompose_TwoInputs_SideBySide(t *testing.T) {
	t.Parallel()
	out, err := Compose([][]byte{solidPNG(t, 4, 6, red), solidPNG(t, 4, 6, green)})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	img := decode(t, out)
	if got := img.Bounds(); got.Dx() != 8 || got.Dy() != 6 {
		t.Fatalf("bounds=%v, want 8x6", got)
	}
	if got := pixel(t, img, 1, 1); got != red {
		t.Fatalf("left cell=%v, want red", got)
	}
	if got := pixel(t, img, 5, 1); got != green {
		t.Fatalf("right cell=%v, want green", got)
	}
}

func TestCompose_ThreeInputs_GridWithBackgroundFill(t *testing.T) {
	t.Parallel()
	out, err := Compose([][]byte{
		solidPNG(t, 4, 4, red),
		solidPNG(t, 4, 4, green),
		solidPNG(t, 4, 4, blue),
	})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	img := decode(t, out)
	if got := img.Bounds(); got.Dx() != 8 || got.Dy() != 8 {
		t.Fatalf("bounds=%v, want 8x8", got)
	}
	if got := pixel(t, img, 1, 1); got != red {
		t.Fatalf("cell 0=%v, want red", got)
	}
	if got := pixel(t, img, 5, 1); got != green {
		t.Fatalf("cell 1=%v, want green", got)
	}
	if got := pixel(t, img, 1, 5); got != blue {
		t.Fatalf("cell 2=%v, want blue", got)
	}
	if got := pixel(t, img, 5, 5); got != background {
		t.Fatalf("empty cell=%v, want background fill", got)
	}
}

func TestCompose_MoreThanFourInputs_Truncated(t *testing.T) {
	t.Parallel()
	out, err := Compose([][]byte{
		solidPNG(t, 4, 4, red),
		solidPNG(t, 4, 4, green),
		solidPNG(t, 4, 4, blue),
		solidPNG(t, 4, 4, white),
		solidPNG(t, 4, 4, red), // beyond the grid; must be ignored
	})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	img := decode(t, out)
	if got := img.Bounds(); got.Dx() != 8 || got.Dy() != 8 {
		t.Fatalf("bounds=%v, want 8x8 (2x2 grid, extras dropped)", got)
	}
	if got := pixel(t, img, 5, 5); got != white {
		t.Fatalf("cell 3=%v, want white", got)
	}
}

func TestCompose_UndecodableInput_Fails(t *testing.T) {
	t.Parallel()
	if _, err := Compose([][]byte{[]byte("not an image"), []byte("also not")}); err == nil {
		t.Fatalf("want decode error")
	}
}

func TestCompose_DoesNotMutateInputs(t *testing.T) {
	t.Parallel()
	a := solidPNG(t, 4, 4, red)
	b := solidPNG(t, 4, 4, green)
	aCopy := append([]byte(nil), a...)
	bCopy := append([]byte(nil), b...)

	if _, err := Compose([][]byte{a, b}); err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if !bytes.Equal(a, aCopy) || !bytes.Equal(b, bCopy) {
		t.Fatalf("inputs were mutated")
	}
}
