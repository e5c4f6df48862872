package testutil

import (
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTextImage_Dimensions(t *testing.T) {
	img := GenerateTextImage(TicketImageConfig())
	assert.Equal(t, MediumSize.Width, img.Bounds().Dx())
	assert.Equal(t, MediumSize.Height, img.Bounds().Dy())
}

func TestGenerateTextImage_ContainsDarkPixels(t *testing.T) {
	img := GenerateTextImage(TicketImageConfig())

	dark := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, _, _, _ := img.At(x, y).RGBA()
			if r < 0x4000 {
				dark++
			}
		}
	}
	assert.Positive(t, dark, "rendered text should produce dark pixels")
}

func TestGenerateTextImage_RotationGrowsCanvas(t *testing.T) {
	cfg := TicketImageConfig()
	cfg.Rotation = 10
	img := GenerateTextImage(cfg)
	assert.Greater(t, img.Bounds().Dx(), MediumSize.Width)
}

func TestSaveAndLoadImage(t *testing.T) {
	img := GenerateTextImage(TicketImageConfig())
	path := filepath.Join(t.TempDir(), "ticket.png")

	SaveImage(t, img, path)
	loaded := LoadImage(t, path)

	require.Equal(t, img.Bounds().Dx(), loaded.Bounds().Dx())
	assert.True(t, CompareImages(img, loaded, 0.01))
}

func TestCompareImages(t *testing.T) {
	a := CreateTestImage(10, 10, color.White)
	b := CreateTestImage(10, 10, color.White)
	c := CreateTestImage(10, 10, color.Black)
	d := CreateTestImage(12, 10, color.White)

	assert.True(t, CompareImages(a, b, 0))
	assert.False(t, CompareImages(a, c, 0.5))
	assert.False(t, CompareImages(a, d, 1.0))
}
