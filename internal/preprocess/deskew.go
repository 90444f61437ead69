package preprocess

import (
	"image"
	"image/color"
	"math"

	"github.com/MeKo-Tech/foodlens/internal/utils"
	"github.com/disintegration/imaging"
)

const (
	houghThetaSteps = 180  // 1 degree resolution
	houghVoteFloor  = 60   // minimum accumulator votes for a line to count
	maxEdgeSamples  = 8000 // cap on edge pixels fed into the transform
	angleHistBins   = 36
)

// deskew estimates the dominant line angle of the image and rotates it
// upright. Rotation is applied only when the estimate exceeds the configured
// dead zone, so near-straight images are not disturbed by transform noise.
func (p *Preprocessor) deskew(img image.Image) (image.Image, error) {
	gray, w, h, err := utils.ToGrayscale(img)
	if err != nil {
		return nil, err
	}
	angle, ok := estimateSkew(gray, w, h)
	if !ok || math.Abs(angle) <= p.cfg.DeskewMinAngle {
		return img, nil
	}
	// imaging rotates counter-clockwise for positive angles; the estimated
	// skew is the angle the content is tilted by, so rotate it back.
	return imaging.Rotate(img, angle, color.NRGBA{255, 255, 255, 255}), nil
}

// estimateSkew runs a Hough line transform over the edge mask and returns the
// dominant line angle in degrees, normalized to (-90, 90].
func estimateSkew(gray []uint8, w, h int) (float64, bool) {
	mask := utils.SobelEdges(gray, w, h, 200)

	// Collect edge pixels, striding so dense images stay bounded.
	var edges []int
	total := 0
	for _, set := range mask {
		if set {
			total++
		}
	}
	if total == 0 {
		return 0, false
	}
	stride := total/maxEdgeSamples + 1
	n := 0
	for i, set := range mask {
		if !set {
			continue
		}
		if n%stride == 0 {
			edges = append(edges, i)
		}
		n++
	}

	// Accumulate votes over (theta, rho).
	diag := int(math.Hypot(float64(w), float64(h))) + 1
	sin := make([]float64, houghThetaSteps)
	cos := make([]float64, houghThetaSteps)
	for t := 0; t < houghThetaSteps; t++ {
		rad := float64(t) * math.Pi / float64(houghThetaSteps)
		sin[t] = math.Sin(rad)
		cos[t] = math.Cos(rad)
	}
	acc := make([]int, houghThetaSteps*(2*diag+1))
	for _, idx := range edges {
		x, y := float64(idx%w), float64(idx/w)
		for t := 0; t < houghThetaSteps; t++ {
			rho := int(x*cos[t]+y*sin[t]) + diag
			acc[t*(2*diag+1)+rho]++
		}
	}

	// Histogram of angles from accumulator cells with enough votes. The
	// per-bin angle sums keep the 1-degree Hough resolution: the estimate is
	// the vote-weighted mean of the winning bin, not its center, so a
	// straight image estimates 0 and stays inside the dead zone.
	hist := [angleHistBins]int{}
	angleSum := [angleHistBins]float64{}
	found := false
	for t := 0; t < houghThetaSteps; t++ {
		for r := 0; r <= 2*diag; r++ {
			votes := acc[t*(2*diag+1)+r]
			if votes < houghVoteFloor {
				continue
			}
			angle := float64(t) // degrees in [0, 180)
			if angle > 90 {
				angle -= 180
			}
			bin := int((angle + 90) / 180 * angleHistBins)
			if bin >= angleHistBins {
				bin = angleHistBins - 1
			}
			hist[bin] += votes
			angleSum[bin] += angle * float64(votes)
			found = true
		}
	}
	if !found {
		return 0, false
	}

	best := 0
	for i := 1; i < angleHistBins; i++ {
		if hist[i] > hist[best] {
			best = i
		}
	}
	dominant := angleSum[best] / float64(hist[best])

	// Dominant lines in a nutrition table are its horizontal rules; fold the
	// estimate toward the nearest axis so the correction stays small.
	if dominant > 45 {
		dominant -= 90
	} else if dominant < -45 {
		dominant += 90
	}
	return dominant, true
}
