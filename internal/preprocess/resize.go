package preprocess

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// DefaultMaxDimension bounds the longest image side before recognition.
const DefaultMaxDimension = 4000

// Resize downscales img so that max(width,height) <= maxDim, preserving
// aspect ratio and channel count, and returns the applied scale factor.
// Images already within the limit are returned as an unmodified copy with
// scale 1.0. Box resampling averages source pixels over each destination
// pixel, which keeps thin text strokes intact when shrinking.
func Resize(img image.Image, maxDim int) (image.Image, float64) {
	if maxDim <= 0 {
		maxDim = DefaultMaxDimension
	}
	_, wasGray := img.(*image.Gray)

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	longest := w
	if h > longest {
		longest = h
	}
	if longest <= maxDim {
		if wasGray {
			return Grayscale(img), 1.0
		}
		return imaging.Clone(img), 1.0
	}

	scale := float64(maxDim) / float64(longest)
	// Round rather than truncate: truncation can pull the short side a full
	// pixel off the preserved aspect ratio.
	newW := int(math.Round(float64(w) * scale))
	newH := int(math.Round(float64(h) * scale))
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}
	resized := imaging.Resize(img, newW, newH, imaging.Box)
	if wasGray {
		return Grayscale(resized), scale
	}
	return resized, scale
}
