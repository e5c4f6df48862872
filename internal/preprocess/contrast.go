package preprocess

import (
	"image"
	"image/color"
)

const (
	// DefaultClipLimit caps per-bin histogram counts during equalization.
	DefaultClipLimit = 2.0
	// DefaultTileGridSize is the number of CLAHE tiles per axis.
	DefaultTileGridSize = 8
)

// EnhanceContrast applies contrast-limited adaptive histogram equalization.
// Color images are equalized on the luma plane only, through Y'CbCr, so hue
// is preserved; grayscale images are equalized directly.
func EnhanceContrast(img image.Image, clipLimit float64, tileX, tileY int) image.Image {
	if clipLimit <= 0 {
		clipLimit = DefaultClipLimit
	}
	if tileX <= 0 {
		tileX = DefaultTileGridSize
	}
	if tileY <= 0 {
		tileY = DefaultTileGridSize
	}

	if g, ok := img.(*image.Gray); ok {
		pix, w, h := grayPlane(g)
		return planeToGray(clahe(pix, w, h, clipLimit, tileX, tileY), w, h)
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

	luma = clahe(luma, w, h, clipLimit, tileX, tileY)

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

// clahe equalizes a plane tile by tile with clipped histograms, then maps
// each pixel through bilinear interpolation of the four surrounding tile
// lookup tables to hide tile seams.
func clahe(pix []uint8, w, h int, clipLimit float64, tileX, tileY int) []uint8 {
	if tileX > w {
		tileX = w
	}
	if tileY > h {
		tileY = h
	}
	tileW := (w + tileX - 1) / tileX
	tileH := (h + tileY - 1) / tileY

	luts := make([][256]uint8, tileX*tileY)
	for ty := 0; ty < tileY; ty++ {
		for tx := 0; tx < tileX; tx++ {
			x0 := tx * tileW
			y0 := ty * tileH
			x1 := clampInt(x0+tileW, 0, w)
			y1 := clampInt(y0+tileH, 0, h)
			luts[ty*tileX+tx] = tileLUT(pix, w, x0, y0, x1, y1, clipLimit)
		}
	}

	out := make([]uint8, len(pix))
	for y := 0; y < h; y++ {
		// Fractional tile coordinates of the pixel center.
		fy := (float64(y)+0.5)/float64(tileH) - 0.5
		ty0 := clampInt(int(fy), 0, tileY-1)
		ty1 := clampInt(ty0+1, 0, tileY-1)
		wy := fy - float64(ty0)
		if wy < 0 {
			wy = 0
		}
		if wy > 1 {
			wy = 1
		}
		for x := 0; x < w; x++ {
			fx := (float64(x)+0.5)/float64(tileW) - 0.5
			tx0 := clampInt(int(fx), 0, tileX-1)
			tx1 := clampInt(tx0+1, 0, tileX-1)
			wx := fx - float64(tx0)
			if wx < 0 {
				wx = 0
			}
			if wx > 1 {
				wx = 1
			}

			v := pix[y*w+x]
			v00 := float64(luts[ty0*tileX+tx0][v])
			v01 := float64(luts[ty0*tileX+tx1][v])
			v10 := float64(luts[ty1*tileX+tx0][v])
			v11 := float64(luts[ty1*tileX+tx1][v])
			top := v00 + (v01-v00)*wx
			bot := v10 + (v11-v10)*wx
			out[y*w+x] = clampUint8(int(top + (bot-top)*wy + 0.5))
		}
	}
	return out
}

// tileLUT builds the clipped-histogram equalization mapping for one tile.
func tileLUT(pix []uint8, stride, x0, y0, x1, y1 int, clipLimit float64) [256]uint8 {
	var hist [256]int
	area := (x1 - x0) * (y1 - y0)
	if area <= 0 {
		var identity [256]uint8
		for i := 0; i < 256; i++ {
			identity[i] = uint8(i)
		}
		return identity
	}
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			hist[pix[y*stride+x]]++
		}
	}

	// Clip histogram and redistribute the excess uniformly.
	limit := int(clipLimit * float64(area) / 256.0)
	if limit < 1 {
		limit = 1
	}
	excess := 0
	for i := 0; i < 256; i++ {
		if hist[i] > limit {
			excess += hist[i] - limit
			hist[i] = limit
		}
	}
	share := excess / 256
	rem := excess % 256
	for i := 0; i < 256; i++ {
		hist[i] += share
		if i < rem {
			hist[i]++
		}
	}

	var lut [256]uint8
	cum := 0
	scale := 255.0 / float64(area)
	for i := 0; i < 256; i++ {
		cum += hist[i]
		lut[i] = clampUint8(int(float64(cum)*scale + 0.5))
	}
	return lut
}
