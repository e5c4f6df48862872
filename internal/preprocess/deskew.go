package preprocess

import (
	"image"
	"math"
	"sort"
)

// maxSkewAngle bounds the segment angles considered text baselines.
// Near-vertical segments are borders or noise, not text.
const maxSkewAngle = 45.0

// EstimateSkew detects line segments in img and returns the median angle of
// the near-horizontal ones, in degrees. ok is false when no qualifying
// segment was found.
func EstimateSkew(img image.Image) (angle float64, ok bool) {
	gray := Grayscale(img)
	pix, w, h := grayPlane(gray)
	segments := detectSegments(cannyEdges(pix, w, h), w, h)

	angles := make([]float64, 0, len(segments))
	for _, s := range segments {
		a := s.Angle()
		if a > -maxSkewAngle && a < maxSkewAngle {
			angles = append(angles, a)
		}
	}
	if len(angles) == 0 {
		return 0, false
	}
	sort.Float64s(angles)
	mid := len(angles) / 2
	if len(angles)%2 == 0 {
		return (angles[mid-1] + angles[mid]) / 2, true
	}
	return angles[mid], true
}

// Deskew corrects in-plane rotation by rotating img by the negative of the
// estimated skew angle about its center. When no skew can be estimated the
// input is returned as an unmodified copy; that fallback is intentional,
// not an error.
func Deskew(img image.Image) image.Image {
	angle, ok := EstimateSkew(img)
	if !ok || angle == 0 {
		return cloneImage(img)
	}
	return rotateAboutCenter(img, -angle)
}

func cloneImage(img image.Image) image.Image {
	if _, ok := img.(*image.Gray); ok {
		return Grayscale(img)
	}
	return toNRGBA(img)
}

// rotateAboutCenter rotates the image content by deg degrees about the image
// center, keeping the original dimensions. Samples use bicubic interpolation
// with edge replication so no black corners appear.
func rotateAboutCenter(img image.Image, deg float64) image.Image {
	theta := deg * math.Pi / 180
	sinT, cosT := math.Sin(theta), math.Cos(theta)

	if g, ok := img.(*image.Gray); ok {
		pix, w, h := grayPlane(g)
		out := make([]uint8, w*h)
		cx, cy := float64(w-1)/2, float64(h-1)/2
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				// Inverse map: rotate destination coords by -theta.
				dx, dy := float64(x)-cx, float64(y)-cy
				sx := cosT*dx + sinT*dy + cx
				sy := -sinT*dx + cosT*dy + cy
				out[y*w+x] = bicubicSample(pix, w, h, sx, sy)
			}
		}
		return planeToGray(out, w, h)
	}

	nrgba := toNRGBA(img)
	r, g, b, w, h := splitPlanes(nrgba)
	outR := make([]uint8, w*h)
	outG := make([]uint8, w*h)
	outB := make([]uint8, w*h)
	cx, cy := float64(w-1)/2, float64(h-1)/2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx, dy := float64(x)-cx, float64(y)-cy
			sx := cosT*dx + sinT*dy + cx
			sy := -sinT*dx + cosT*dy + cy
			idx := y*w + x
			outR[idx] = bicubicSample(r, w, h, sx, sy)
			outG[idx] = bicubicSample(g, w, h, sx, sy)
			outB[idx] = bicubicSample(b, w, h, sx, sy)
		}
	}
	return mergePlanes(outR, outG, outB, w, h)
}

// bicubicSample interpolates a plane at (x,y) using a Catmull-Rom kernel
// over the 4x4 neighborhood. Reads beyond the border replicate edge pixels.
func bicubicSample(pix []uint8, w, h int, x, y float64) uint8 {
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	fx := x - float64(x0)
	fy := y - float64(y0)

	var col [4]float64
	for j := 0; j < 4; j++ {
		sy := clampInt(y0-1+j, 0, h-1)
		var row [4]float64
		for i := 0; i < 4; i++ {
			sx := clampInt(x0-1+i, 0, w-1)
			row[i] = float64(pix[sy*w+sx])
		}
		col[j] = catmullRom(row, fx)
	}
	return clampUint8(int(catmullRom(col, fy) + 0.5))
}

func catmullRom(p [4]float64, t float64) float64 {
	return p[1] + 0.5*t*(p[2]-p[0]+t*(2*p[0]-5*p[1]+4*p[2]-p[3]+t*(3*(p[1]-p[2])+p[3]-p[0])))
}
