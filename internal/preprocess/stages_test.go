package preprocess

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestColorImage builds a small NRGBA image with a gradient pattern.
func newTestColorImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8((x * 255) / w),
				G: uint8((y * 255) / h),
				B: uint8(((x + y) * 255) / (w + h)),
				A: 255,
			})
		}
	}
	return img
}

// newTestGrayImage builds a small gray image with a gradient pattern.
func newTestGrayImage(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(((x + y) * 255) / (w + h))})
		}
	}
	return img
}

func TestChannels(t *testing.T) {
	assert.Equal(t, 1, Channels(newTestGrayImage(10, 10)))
	assert.Equal(t, 3, Channels(newTestColorImage(10, 10)))
}

func TestResize_NoopWithinLimit(t *testing.T) {
	img := newTestColorImage(100, 60)
	out, scale := Resize(img, 200)
	require.NotNil(t, out)
	assert.InDelta(t, 1.0, scale, 1e-9)
	assert.Equal(t, 100, out.Bounds().Dx())
	assert.Equal(t, 60, out.Bounds().Dy())
}

func TestResize_ShrinksPreservingAspectRatio(t *testing.T) {
	img := newTestColorImage(400, 200)
	out, scale := Resize(img, 100)
	assert.InDelta(t, 0.25, scale, 1e-9)
	assert.Equal(t, 100, out.Bounds().Dx())
	// Aspect ratio preserved within 1px rounding.
	assert.InDelta(t, 50, out.Bounds().Dy(), 1)
}

func TestResize_RoundsDerivedDimension(t *testing.T) {
	// 16x50 at maxDim 12 scales to 3.84x12; truncating would give 3x12,
	// a full pixel off the preserved aspect ratio.
	out, scale := Resize(newTestColorImage(16, 50), 12)
	assert.InDelta(t, 0.24, scale, 1e-9)
	assert.Equal(t, 4, out.Bounds().Dx())
	assert.Equal(t, 12, out.Bounds().Dy())
}

func TestResize_NeverUpscales(t *testing.T) {
	img := newTestGrayImage(30, 20)
	out, scale := Resize(img, 4000)
	assert.InDelta(t, 1.0, scale, 1e-9)
	assert.Equal(t, 30, out.Bounds().Dx())
	assert.Equal(t, 20, out.Bounds().Dy())
	assert.Equal(t, 1, Channels(out))
}

func TestResize_PreservesChannelCount(t *testing.T) {
	gray, _ := Resize(newTestGrayImage(300, 100), 150)
	assert.Equal(t, 1, Channels(gray))
	col, _ := Resize(newTestColorImage(300, 100), 150)
	assert.Equal(t, 3, Channels(col))
}

func TestRemoveShadows_PreservesDimensions(t *testing.T) {
	for _, img := range []image.Image{newTestColorImage(40, 30), newTestGrayImage(40, 30)} {
		out := RemoveShadows(img)
		assert.Equal(t, img.Bounds().Dx(), out.Bounds().Dx())
		assert.Equal(t, img.Bounds().Dy(), out.Bounds().Dy())
		assert.Equal(t, Channels(img), Channels(out))
	}
}

func TestRemoveShadows_KeepsStrokesDarkOnBrightBackground(t *testing.T) {
	// A small dark blob on uniform paper: the dilated background estimate
	// swallows the blob, so after subtraction and renormalization the blob
	// ends up black and the paper white.
	img := image.NewGray(image.Rect(0, 0, 60, 60))
	for y := 0; y < 60; y++ {
		for x := 0; x < 60; x++ {
			v := uint8(200)
			if x >= 30 && x < 33 && y >= 30 && y < 33 {
				v = 50
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	out := RemoveShadows(img).(*image.Gray)
	pix, w, _ := grayPlane(out)
	assert.Less(t, int(pix[31*w+31]), 50)
	assert.Greater(t, int(pix[10*w+10]), 200)
}

func TestEnhanceContrast_PreservesDimensionsAndChannels(t *testing.T) {
	for _, img := range []image.Image{newTestColorImage(64, 48), newTestGrayImage(64, 48)} {
		out := EnhanceContrast(img, 2.0, 8, 8)
		assert.Equal(t, img.Bounds().Dx(), out.Bounds().Dx())
		assert.Equal(t, img.Bounds().Dy(), out.Bounds().Dy())
		assert.Equal(t, Channels(img), Channels(out))
	}
}

func TestEnhanceContrast_StretchesLowContrast(t *testing.T) {
	// Narrow band of gray values should spread out after equalization.
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(120 + (x+y)%16)})
		}
	}
	out := EnhanceContrast(img, 4.0, 4, 4).(*image.Gray)
	inPix, _, _ := grayPlane(img)
	outPix, _, _ := grayPlane(out)
	assert.Greater(t, valueRange(outPix), valueRange(inPix))
}

func valueRange(pix []uint8) int {
	minV, maxV := pix[0], pix[0]
	for _, v := range pix {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	return int(maxV) - int(minV)
}

func TestDenoise_PreservesDimensionsAndChannels(t *testing.T) {
	for _, img := range []image.Image{newTestColorImage(24, 18), newTestGrayImage(24, 18)} {
		out := Denoise(img, 10)
		assert.Equal(t, img.Bounds().Dx(), out.Bounds().Dx())
		assert.Equal(t, img.Bounds().Dy(), out.Bounds().Dy())
		assert.Equal(t, Channels(img), Channels(out))
	}
}

func TestDenoise_ReducesSpeckle(t *testing.T) {
	// Uniform gray plane with isolated speckles: denoising should pull the
	// outliers toward the background.
	img := image.NewGray(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.SetGray(x, y, color.Gray{Y: 128})
		}
	}
	img.SetGray(10, 10, color.Gray{Y: 255})
	img.SetGray(20, 20, color.Gray{Y: 0})

	out := Denoise(img, 10).(*image.Gray)
	pix, w, _ := grayPlane(out)
	assert.Less(t, int(pix[10*w+10]), 255)
	assert.Greater(t, int(pix[20*w+20]), 0)
}

func TestAdaptiveThreshold_StrictTwoLevel(t *testing.T) {
	out := AdaptiveThreshold(newTestGrayImage(40, 30), 11, 2)
	pix, _, _ := grayPlane(out)
	for _, v := range pix {
		assert.True(t, v == 0 || v == 255, "expected binary pixel, got %d", v)
	}
}

func TestAdaptiveThreshold_SeparatesTextFromBackground(t *testing.T) {
	// Dark square on light background.
	img := image.NewGray(image.Rect(0, 0, 40, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			v := uint8(220)
			if x >= 15 && x < 25 && y >= 15 && y < 25 {
				v = 30
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	out := AdaptiveThreshold(img, 11, 2)
	pix, w, _ := grayPlane(out)
	// Dark pixels near the stroke boundary fall well below the local mean.
	assert.Equal(t, uint8(0), pix[20*w+15])
	// Far-away background sits at its own local mean and stays white.
	assert.Equal(t, uint8(255), pix[5*w+5])
}

func TestGrayscale_NeverAliases(t *testing.T) {
	src := newTestGrayImage(10, 10)
	out := Grayscale(src)
	out.SetGray(0, 0, color.Gray{Y: 7})
	assert.NotEqual(t, uint8(7), src.GrayAt(0, 0).Y)
}
