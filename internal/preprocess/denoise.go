package preprocess

import (
	"image"
	"image/color"
	"math"
)

const (
	// DefaultDenoiseStrength is the filter strength h for luma.
	DefaultDenoiseStrength = 10.0
	denoiseTemplateSize    = 7
	denoiseSearchSize      = 21
)

// Denoise applies non-local means denoising. Grayscale input runs the plain
// single-plane variant; color input is denoised in Y'CbCr with the same
// strength on luma and chroma, which suppresses color speckle without
// bleeding edges the way per-RGB filtering does.
func Denoise(img image.Image, strength float64) image.Image {
	if strength <= 0 {
		strength = DefaultDenoiseStrength
	}

	if g, ok := img.(*image.Gray); ok {
		pix, w, h := grayPlane(g)
		return planeToGray(nlMeans(pix, w, h, strength), w, h)
	}

	nrgba := toNRGBA(img)
	b := nrgba.Bounds()
	w, h := b.Dx(), b.Dy()
	luma := make([]uint8, w*h)
	cb := make([]uint8, w*h)
	cr := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := nrgba.PixOffset(x, y)
			yy, cbv, crv := color.RGBToYCbCr(nrgba.Pix[off], nrgba.Pix[off+1], nrgba.Pix[off+2])
			idx := y*w + x
			luma[idx] = yy
			cb[idx] = cbv
			cr[idx] = crv
		}
	}

	luma = nlMeans(luma, w, h, strength)
	cb = nlMeans(cb, w, h, strength)
	cr = nlMeans(cr, w, h, strength)

	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			r, g, bl := color.YCbCrToRGB(luma[idx], cb[idx], cr[idx])
			off := out.PixOffset(x, y)
			out.Pix[off] = r
			out.Pix[off+1] = g
			out.Pix[off+2] = bl
			out.Pix[off+3] = 255
		}
	}
	return out
}

// nlMeans denoises one plane: each pixel becomes a weighted average of
// pixels in its search window, weighted by patch similarity.
func nlMeans(pix []uint8, w, h int, strength float64) []uint8 {
	out := make([]uint8, len(pix))
	tHalf := denoiseTemplateSize / 2
	sHalf := denoiseSearchSize / 2
	h2 := strength * strength * float64(denoiseTemplateSize*denoiseTemplateSize)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var weightSum, valueSum float64
			for sy := -sHalf; sy <= sHalf; sy++ {
				for sx := -sHalf; sx <= sHalf; sx++ {
					cy := clampInt(y+sy, 0, h-1)
					cx := clampInt(x+sx, 0, w-1)
					d := patchDistance(pix, w, h, x, y, cx, cy, tHalf)
					wgt := math.Exp(-d / h2)
					weightSum += wgt
					valueSum += wgt * float64(pix[cy*w+cx])
				}
			}
			out[y*w+x] = clampUint8(int(valueSum/weightSum + 0.5))
		}
	}
	return out
}

// patchDistance sums squared differences between the patches centered at
// (x0,y0) and (x1,y1), clamping reads at the plane border.
func patchDistance(pix []uint8, w, h, x0, y0, x1, y1, half int) float64 {
	var sum float64
	for dy := -half; dy <= half; dy++ {
		for dx := -half; dx <= half; dx++ {
			a := pix[clampInt(y0+dy, 0, h-1)*w+clampInt(x0+dx, 0, w-1)]
			b := pix[clampInt(y1+dy, 0, h-1)*w+clampInt(x1+dx, 0, w-1)]
			d := float64(a) - float64(b)
			sum += d * d
		}
	}
	return sum
}
