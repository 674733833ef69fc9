package preprocess

import (
	"image"
	"testing"
)

// grayFromPixels builds a w×h gray image from a flat pixel slice.
func grayFromPixels(w, h int, pixels []uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	copy(img.Pix, pixels)
	return img
}

// TestOtsuThreshold_Bimodal checks the defining property of the method: on
// a cleanly bimodal histogram the threshold separates the two modes.
func TestOtsuThreshold_Bimodal(t *testing.T) {
	const lo, hi = 10, 240
	pixels := make([]uint8, 2000)
	for i := 0; i < 1000; i++ {
		pixels[i] = lo
	}
	for i := 1000; i < 2000; i++ {
		pixels[i] = hi
	}
	img := grayFromPixels(50, 40, pixels)

	thresh := OtsuThreshold(img)
	if thresh <= lo || thresh > hi {
		t.Errorf("OtsuThreshold() = %d, want strictly between %d and %d", thresh, lo, hi)
	}

	// Applying the threshold must put the modes on opposite sides.
	bilevel := Binarize(img)
	if bilevel.Pix[0] != 0 {
		t.Errorf("low mode binarized to %d, want 0", bilevel.Pix[0])
	}
	if bilevel.Pix[1999] != 255 {
		t.Errorf("high mode binarized to %d, want 255", bilevel.Pix[1999])
	}
}

func TestOtsuThreshold_Deterministic(t *testing.T) {
	pixels := make([]uint8, 400)
	for i := range pixels {
		pixels[i] = uint8((i * 7) % 256)
	}
	img := grayFromPixels(20, 20, pixels)

	first := OtsuThreshold(img)
	for i := 0; i < 5; i++ {
		if got := OtsuThreshold(img); got != first {
			t.Fatalf("OtsuThreshold() = %d on run %d, want %d", got, i, first)
		}
	}
}

func TestOtsuThreshold_Uniform(t *testing.T) {
	// A single-intensity image has no variance to maximize anywhere.
	pixels := make([]uint8, 100)
	for i := range pixels {
		pixels[i] = 128
	}
	img := grayFromPixels(10, 10, pixels)

	if got := OtsuThreshold(img); got != 0 {
		t.Errorf("OtsuThreshold() = %d on a uniform image, want 0", got)
	}
}

// TestBinarize_TwoValuesOnly verifies the output alphabet is exactly {0, 255}.
func TestBinarize_TwoValuesOnly(t *testing.T) {
	pixels := make([]uint8, 1024)
	for i := range pixels {
		pixels[i] = uint8((i * 13) % 256)
	}
	img := grayFromPixels(32, 32, pixels)

	bilevel := Binarize(img)
	for i, v := range bilevel.Pix {
		if v != 0 && v != 255 {
			t.Fatalf("pixel %d has value %d, want 0 or 255", i, v)
		}
	}
}
