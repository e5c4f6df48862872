package preprocess

import "image"

const (
	shadowDilateKernel = 7
	shadowMedianKernel = 21
)

// RemoveShadows flattens uneven illumination. Each channel is processed
// independently: a background estimate is built by dilating the channel with
// a small structuring element and median-blurring the result with a wide
// kernel, then the channel is subtracted from that background, inverted and
// stretched back to the full [0,255] range. Text strokes are too thin to
// survive the dilation, so the estimate tracks paper brightness only.
func RemoveShadows(img image.Image) image.Image {
	if g, ok := img.(*image.Gray); ok {
		pix, w, h := grayPlane(g)
		return planeToGray(removeShadowsPlane(pix, w, h), w, h)
	}
	nrgba := toNRGBA(img)
	r, g, b, w, h := splitPlanes(nrgba)
	r = removeShadowsPlane(r, w, h)
	g = removeShadowsPlane(g, w, h)
	b = removeShadowsPlane(b, w, h)
	return mergePlanes(r, g, b, w, h)
}

func removeShadowsPlane(pix []uint8, w, h int) []uint8 {
	bg := medianBlur(dilate(pix, w, h, shadowDilateKernel), w, h, shadowMedianKernel)
	diff := make([]uint8, len(pix))
	for i := range pix {
		d := int(pix[i]) - int(bg[i])
		if d < 0 {
			d = -d
		}
		diff[i] = uint8(255 - d)
	}
	return normalizeMinMax(diff)
}

// dilate replaces each pixel with the maximum over a square kernel.
func dilate(pix []uint8, w, h, kernelSize int) []uint8 {
	if kernelSize <= 1 {
		out := make([]uint8, len(pix))
		copy(out, pix)
		return out
	}
	out := make([]uint8, len(pix))
	half := kernelSize / 2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var maxVal uint8
			for ky := -half; ky <= half; ky++ {
				for kx := -half; kx <= half; kx++ {
					nx, ny := x+kx, y+ky
					if nx >= 0 && nx < w && ny >= 0 && ny < h {
						if v := pix[ny*w+nx]; v > maxVal {
							maxVal = v
						}
					}
				}
			}
			out[y*w+x] = maxVal
		}
	}
	return out
}

// medianBlur replaces each pixel with the median over a square kernel,
// using a per-row sliding histogram so the wide kernel stays affordable.
func medianBlur(pix []uint8, w, h, kernelSize int) []uint8 {
	if kernelSize <= 1 {
		out := make([]uint8, len(pix))
		copy(out, pix)
		return out
	}
	out := make([]uint8, len(pix))
	half := kernelSize / 2

	for y := 0; y < h; y++ {
		var hist [256]int
		count := 0
		y0 := clampInt(y-half, 0, h-1)
		y1 := clampInt(y+half, 0, h-1)

		// Seed the histogram with the window centered at x=0.
		for ny := y0; ny <= y1; ny++ {
			for nx := 0; nx <= half && nx < w; nx++ {
				hist[pix[ny*w+nx]]++
				count++
			}
		}
		out[y*w] = histMedian(&hist, count)

		for x := 1; x < w; x++ {
			enter := x + half
			leave := x - half - 1
			if enter < w {
				for ny := y0; ny <= y1; ny++ {
					hist[pix[ny*w+enter]]++
					count++
				}
			}
			if leave >= 0 {
				for ny := y0; ny <= y1; ny++ {
					hist[pix[ny*w+leave]]--
					count--
				}
			}
			out[y*w+x] = histMedian(&hist, count)
		}
	}
	return out
}

func histMedian(hist *[256]int, count int) uint8 {
	target := count / 2
	acc := 0
	for v := 0; v < 256; v++ {
		acc += hist[v]
		if acc > target {
			return uint8(v)
		}
	}
	return 255
}

// normalizeMinMax stretches the plane to span the full [0,255] range.
func normalizeMinMax(pix []uint8) []uint8 {
	minV, maxV := pix[0], pix[0]
	for _, v := range pix {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	out := make([]uint8, len(pix))
	if maxV == minV {
		copy(out, pix)
		return out
	}
	scale := 255.0 / float64(maxV-minV)
	for i, v := range pix {
		out[i] = clampUint8(int(float64(v-minV)*scale + 0.5))
	}
	return out
}
