// otsu.go implements Otsu's method: pick the binarization threshold that
// maximizes between-class intensity variance over the image histogram.
package preprocess

import "image"

// OtsuThreshold computes the global threshold for an 8-bit grayscale image.
//
// A candidate threshold t partitions pixels into background (intensity < t)
// and foreground (intensity >= t). The scan keeps running background counts
// so the whole thing is O(256) after the histogram build. Comparison is
// strict, so the first maximum wins on ties — the result is deterministic
// for a given histogram.
func OtsuThreshold(img *image.Gray) uint8 {
	var hist [256]int
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w]
		for _, v := range row {
			hist[v]++
		}
	}

	total := w * h
	sum := 0.0
	for i, c := range hist {
		sum += float64(i) * float64(c)
	}

	var (
		wB, sumB   float64
		best       float64
		bestThresh int
	)
	for t := 0; t < 256; t++ {
		if wB > 0 {
			wF := float64(total) - wB
			if wF == 0 {
				break
			}
			mB := sumB / wB
			mF := (sum - sumB) / wF
			between := wB * wF * (mB - mF) * (mB - mF)
			if between > best {
				best = between
				bestThresh = t
			}
		}
		wB += float64(hist[t])
		sumB += float64(t) * float64(hist[t])
	}
	return uint8(bestThresh)
}

// Binarize maps every pixel strictly below the Otsu threshold to 0 (black)
// and everything else to 255 (white). The output contains only those two
// values.
func Binarize(img *image.Gray) *image.Gray {
	thresh := OtsuThreshold(img)
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+w]
		dst := out.Pix[y*out.Stride : y*out.Stride+w]
		for x, v := range src {
			if v < thresh {
				dst[x] = 0
			} else {
				dst[x] = 255
			}
		}
	}
	return out
}
