package preprocess

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ImageError represents errors that can occur during image preprocessing.
type ImageError struct {
	Operation string
	Err       error
}

func (e *ImageError) Error() string {
	return fmt.Sprintf("preprocess error in %s: %v", e.Operation, e.Err)
}

func (e *ImageError) Unwrap() error { return e.Err }

// Channels reports the channel count of an image: 1 for grayscale, 3 otherwise.
func Channels(img image.Image) int {
	if _, ok := img.(*image.Gray); ok {
		return 1
	}
	return 3
}

// Grayscale converts any image to a single-channel *image.Gray.
// Grayscale input is copied, never aliased.
func Grayscale(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		out := image.NewGray(image.Rect(0, 0, g.Bounds().Dx(), g.Bounds().Dy()))
		copyGray(out, g)
		return out
	}
	nrgba := imaging.Grayscale(img)
	b := nrgba.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			// All channels are equal after imaging.Grayscale; take R.
			out.Pix[out.PixOffset(x, y)] = nrgba.Pix[nrgba.PixOffset(b.Min.X+x, b.Min.Y+y)]
		}
	}
	return out
}

func copyGray(dst, src *image.Gray) {
	b := src.Bounds()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			dst.Pix[dst.PixOffset(x, y)] = src.Pix[src.PixOffset(b.Min.X+x, b.Min.Y+y)]
		}
	}
}

// toNRGBA returns a zero-origin NRGBA copy of img.
func toNRGBA(img image.Image) *image.NRGBA {
	return imaging.Clone(img)
}

// splitPlanes extracts the R, G, B planes of a color image as row-major
// byte slices. Alpha is dropped.
func splitPlanes(img *image.NRGBA) (r, g, b []uint8, w, h int) {
	bounds := img.Bounds()
	w, h = bounds.Dx(), bounds.Dy()
	r = make([]uint8, w*h)
	g = make([]uint8, w*h)
	b = make([]uint8, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := img.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)
			idx := y*w + x
			r[idx] = img.Pix[off]
			g[idx] = img.Pix[off+1]
			b[idx] = img.Pix[off+2]
		}
	}
	return r, g, b, w, h
}

// mergePlanes builds an opaque NRGBA image from three row-major planes.
func mergePlanes(r, g, b []uint8, w, h int) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			off := out.PixOffset(x, y)
			out.Pix[off] = r[idx]
			out.Pix[off+1] = g[idx]
			out.Pix[off+2] = b[idx]
			out.Pix[off+3] = 255
		}
	}
	return out
}

// grayPlane extracts the pixels of a gray image as a row-major byte slice.
func grayPlane(img *image.Gray) (pix []uint8, w, h int) {
	b := img.Bounds()
	w, h = b.Dx(), b.Dy()
	pix = make([]uint8, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pix[y*w+x] = img.Pix[img.PixOffset(b.Min.X+x, b.Min.Y+y)]
		}
	}
	return pix, w, h
}

// planeToGray builds a gray image from a row-major byte slice.
func planeToGray(pix []uint8, w, h int) *image.Gray {
	out := image.NewGray(image.Rect(0, 0, w, h))
	copy(out.Pix, pix)
	return out
}

func clampUint8(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
