package preprocess

import (
	"image"
	"math"
)

const (
	// DefaultThresholdBlockSize is the local window for adaptive thresholding.
	DefaultThresholdBlockSize = 11
	// DefaultThresholdConstant is subtracted from the local weighted mean.
	DefaultThresholdConstant = 2
)

// AdaptiveThreshold binarizes a grayscale image: each pixel is compared to a
// Gaussian-weighted mean over a blockSize window minus constant, producing a
// strict two-level image (0 or 255). Color input is converted to grayscale
// first.
func AdaptiveThreshold(img image.Image, blockSize, constant int) *image.Gray {
	if blockSize < 3 {
		blockSize = DefaultThresholdBlockSize
	}
	if blockSize%2 == 0 {
		blockSize++
	}

	gray := Grayscale(img)
	pix, w, h := grayPlane(gray)
	mean := gaussianWeightedMean(pix, w, h, blockSize)

	out := make([]uint8, w*h)
	for i := range pix {
		if float64(pix[i]) > mean[i]-float64(constant) {
			out[i] = 255
		}
	}
	return planeToGray(out, w, h)
}

// gaussianWeightedMean computes, for every pixel, the Gaussian-weighted mean
// of its blockSize neighborhood using a separable kernel with edge-replicated
// borders.
func gaussianWeightedMean(pix []uint8, w, h, blockSize int) []float64 {
	kernel := gaussianKernel(blockSize)
	half := blockSize / 2

	tmp := make([]float64, w*h)
	out := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum float64
			for k := -half; k <= half; k++ {
				sum += kernel[k+half] * float64(pix[y*w+clampInt(x+k, 0, w-1)])
			}
			tmp[y*w+x] = sum
		}
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum float64
			for k := -half; k <= half; k++ {
				sum += kernel[k+half] * tmp[clampInt(y+k, 0, h-1)*w+x]
			}
			out[y*w+x] = sum
		}
	}
	return out
}

// gaussianKernel builds a normalized 1D Gaussian with the sigma convention
// used for smoothing kernels sized from the block: 0.3*((n-1)*0.5 - 1) + 0.8.
func gaussianKernel(size int) []float64 {
	sigma := 0.3*(float64(size-1)*0.5-1) + 0.8
	half := size / 2
	kernel := make([]float64, size)
	var sum float64
	for i := 0; i < size; i++ {
		d := float64(i - half)
		kernel[i] = math.Exp(-d * d / (2 * sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}
