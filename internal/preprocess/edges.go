package preprocess

import "math"

// Canny hysteresis thresholds tuned for document photographs.
const (
	cannyLowThreshold  = 50.0
	cannyHighThreshold = 150.0
)

// cannyEdges runs a Canny edge detector over a gray plane and returns a
// binary edge mask (0 or 255).
func cannyEdges(pix []uint8, w, h int) []uint8 {
	smoothed := gaussianBlur5(pix, w, h)
	mag, dir := sobel(smoothed, w, h)
	thin := nonMaxSuppress(mag, dir, w, h)
	return hysteresis(thin, w, h, cannyLowThreshold, cannyHighThreshold)
}

// gaussianBlur5 applies a separable 5-tap Gaussian (sigma ~1.4).
func gaussianBlur5(pix []uint8, w, h int) []float64 {
	kernel := [5]float64{0.0545, 0.2442, 0.4026, 0.2442, 0.0545}
	tmp := make([]float64, w*h)
	out := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum float64
			for k := -2; k <= 2; k++ {
				sum += kernel[k+2] * float64(pix[y*w+clampInt(x+k, 0, w-1)])
			}
			tmp[y*w+x] = sum
		}
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum float64
			for k := -2; k <= 2; k++ {
				sum += kernel[k+2] * tmp[clampInt(y+k, 0, h-1)*w+x]
			}
			out[y*w+x] = sum
		}
	}
	return out
}

// sobel computes gradient magnitude and direction (radians).
func sobel(pix []float64, w, h int) (mag, dir []float64) {
	mag = make([]float64, w*h)
	dir = make([]float64, w*h)
	at := func(x, y int) float64 {
		return pix[clampInt(y, 0, h-1)*w+clampInt(x, 0, w-1)]
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			gx := -at(x-1, y-1) + at(x+1, y-1) - 2*at(x-1, y) + 2*at(x+1, y) - at(x-1, y+1) + at(x+1, y+1)
			gy := -at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1) + at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)
			idx := y*w + x
			mag[idx] = math.Hypot(gx, gy)
			dir[idx] = math.Atan2(gy, gx)
		}
	}
	return mag, dir
}

// nonMaxSuppress keeps only pixels that are local maxima along the gradient
// direction, quantized to four orientations.
func nonMaxSuppress(mag, dir []float64, w, h int) []float64 {
	out := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			angle := dir[idx] * 180 / math.Pi
			if angle < 0 {
				angle += 180
			}
			var dx, dy int
			switch {
			case angle < 22.5 || angle >= 157.5:
				dx, dy = 1, 0
			case angle < 67.5:
				dx, dy = 1, 1
			case angle < 112.5:
				dx, dy = 0, 1
			default:
				dx, dy = -1, 1
			}
			m := mag[idx]
			n1 := mag[clampInt(y+dy, 0, h-1)*w+clampInt(x+dx, 0, w-1)]
			n2 := mag[clampInt(y-dy, 0, h-1)*w+clampInt(x-dx, 0, w-1)]
			if m >= n1 && m >= n2 {
				out[idx] = m
			}
		}
	}
	return out
}

// hysteresis applies double thresholding: strong edges seed a flood fill
// that promotes connected weak edges.
func hysteresis(mag []float64, w, h int, low, high float64) []uint8 {
	out := make([]uint8, w*h)
	stack := make([]int, 0, w*h/16)
	for i, m := range mag {
		if m >= high {
			out[i] = 255
			stack = append(stack, i)
		}
	}
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := idx%w, idx/w
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				nIdx := ny*w + nx
				if out[nIdx] == 0 && mag[nIdx] >= low {
					out[nIdx] = 255
					stack = append(stack, nIdx)
				}
			}
		}
	}
	return out
}

// Segment is a detected line segment in pixel coordinates.
type Segment struct {
	X1, Y1, X2, Y2 int
}

// Angle returns the segment angle from horizontal in degrees, normalized to
// (-90, 90]. A segment has no inherent direction, so endpoint order must not
// affect the angle.
func (s Segment) Angle() float64 {
	a := math.Atan2(float64(s.Y2-s.Y1), float64(s.X2-s.X1)) * 180 / math.Pi
	if a > 90 {
		a -= 180
	} else if a <= -90 {
		a += 180
	}
	return a
}

func (s Segment) length() float64 {
	return math.Hypot(float64(s.X2-s.X1), float64(s.Y2-s.Y1))
}

// Hough transform parameters matching the line detection used for skew
// estimation: 1px rho resolution, 1 degree theta resolution.
const (
	houghVoteThreshold = 100
	houghMinLineLength = 100
	houghMaxLineGap    = 10
)

// detectSegments finds line segments in a binary edge mask using a Hough
// accumulator: peak (rho,theta) cells above the vote threshold are walked
// along their line, joining edge pixels into segments with bounded gaps.
// The scan order is fixed, so results are deterministic.
func detectSegments(edges []uint8, w, h int) []Segment {
	const thetaSteps = 180
	maxRho := int(math.Hypot(float64(w), float64(h))) + 1
	sin := make([]float64, thetaSteps)
	cos := make([]float64, thetaSteps)
	for t := 0; t < thetaSteps; t++ {
		theta := float64(t) * math.Pi / float64(thetaSteps)
		sin[t] = math.Sin(theta)
		cos[t] = math.Cos(theta)
	}

	acc := make([]int, thetaSteps*2*maxRho)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if edges[y*w+x] == 0 {
				continue
			}
			for t := 0; t < thetaSteps; t++ {
				rho := int(math.Round(float64(x)*cos[t]+float64(y)*sin[t])) + maxRho
				acc[t*2*maxRho+rho]++
			}
		}
	}

	var segments []Segment
	for t := 0; t < thetaSteps; t++ {
		for r := 0; r < 2*maxRho; r++ {
			if acc[t*2*maxRho+r] < houghVoteThreshold {
				continue
			}
			rho := float64(r - maxRho)
			segments = append(segments, walkLine(edges, w, h, rho, cos[t], sin[t])...)
		}
	}
	return segments
}

// walkLine traces the line x*cos+y*sin=rho through the image, collecting
// runs of edge pixels separated by at most houghMaxLineGap into segments of
// at least houghMinLineLength.
func walkLine(edges []uint8, w, h int, rho, cosT, sinT float64) []Segment {
	// Step along the line direction (-sin, cos) from its closest point to
	// the origin, covering the whole image diagonal both ways.
	diag := int(math.Hypot(float64(w), float64(h)))
	px, py := rho*cosT, rho*sinT

	var segments []Segment
	startX, startY := -1, -1
	lastX, lastY := -1, -1
	gap := 0

	flush := func() {
		if startX >= 0 {
			seg := Segment{X1: startX, Y1: startY, X2: lastX, Y2: lastY}
			if seg.length() >= houghMinLineLength {
				segments = append(segments, seg)
			}
		}
		startX, startY = -1, -1
	}

	for s := -diag; s <= diag; s++ {
		x := int(math.Round(px - float64(s)*sinT))
		y := int(math.Round(py + float64(s)*cosT))
		onEdge := x >= 0 && x < w && y >= 0 && y < h && edges[y*w+x] != 0
		if onEdge {
			if startX < 0 {
				startX, startY = x, y
			}
			lastX, lastY = x, y
			gap = 0
			continue
		}
		if startX >= 0 {
			gap++
			if gap > houghMaxLineGap {
				flush()
				gap = 0
			}
		}
	}
	flush()
	return segments
}
