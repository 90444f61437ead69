// Package tabledetect locates the nutrition-facts panel inside a label
// photo. Detection is geometric (edge density forms a rectangular blob) and
// candidates are confirmed by OCR keyword scoring before the region is
// handed to the structured extraction path.
package tabledetect

import (
	"context"
	"image"
	"log/slog"
	"sort"

	"github.com/MeKo-Tech/foodlens/internal/nutrient"
	"github.com/MeKo-Tech/foodlens/internal/utils"
)

// Config controls candidate generation and acceptance.
type Config struct {
	// EdgeThreshold is the Sobel gradient magnitude floor for edge pixels.
	EdgeThreshold int
	// DilateKernel / DilateIterations close gaps between table rule lines so
	// the panel forms one connected blob.
	DilateKernel     int
	DilateIterations int
	// MinArea rejects blobs too small to be a readable table.
	MinArea int
	// MaxAreaFraction rejects blobs covering almost the whole image, which
	// are usually the label outline rather than the table.
	MaxAreaFraction float64
	// Aspect ratio bounds (width/height) for plausible tables.
	MinAspect float64
	MaxAspect float64
	// MaxCandidates caps how many blobs are OCR-scored, largest first.
	MaxCandidates int
	// AcceptScore is the minimum keyword score for a confirmed table.
	AcceptScore int
	// Padding is added around the accepted region before cropping.
	Padding int
}

// DefaultConfig returns the tuned detection parameters.
func DefaultConfig() Config {
	return Config{
		EdgeThreshold:    100,
		DilateKernel:     3,
		DilateIterations: 2,
		MinArea:          10000,
		MaxAreaFraction:  0.8,
		MinAspect:        0.5,
		MaxAspect:        3.0,
		MaxCandidates:    3,
		AcceptScore:      3,
		Padding:          20,
	}
}

// RegionScorer produces plain text from a candidate region so it can be
// keyword-scored. Satisfied by the Tesseract engine.
type RegionScorer interface {
	PlainText(ctx context.Context, img image.Image, lang string) (string, error)
}

// Candidate is one scored table-region hypothesis.
type Candidate struct {
	Region  image.Rectangle
	Corners []utils.Point
	Area    int
	Score   int
	Text    string
}

// Detector finds and confirms nutrition-table regions.
type Detector struct {
	cfg      Config
	scorer   RegionScorer
	keywords *nutrient.Keywords
	logger   *slog.Logger
}

// New creates a Detector. A nil logger disables detection logging.
func New(cfg Config, scorer RegionScorer, kw *nutrient.Keywords, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Detector{cfg: cfg, scorer: scorer, keywords: kw, logger: logger}
}

// Detect returns the cropped nutrition-table region of img, or ok=false when
// no candidate reaches the acceptance score. All proposed candidates are
// scored and the highest-scoring one wins, so a large low-scoring blob cannot
// shadow a smaller genuine table. The crop includes the configured padding so
// OCR has context around the table border.
func (d *Detector) Detect(ctx context.Context, img image.Image, lang string) (image.Image, Candidate, bool, error) {
	candidates, err := d.propose(img)
	if err != nil {
		return nil, Candidate{}, false, err
	}
	if len(candidates) == 0 {
		d.logger.Debug("table detection produced no geometric candidates")
		return nil, Candidate{}, false, nil
	}

	best := -1
	var bestCrop image.Image
	for i := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, Candidate{}, false, err
		}
		cand := &candidates[i]
		crop, err := utils.CropPadded(img, cand.Region, d.cfg.Padding)
		if err != nil {
			d.logger.Warn("cropping table candidate failed", "error", err)
			continue
		}
		text, err := d.scorer.PlainText(ctx, crop, lang)
		if err != nil {
			d.logger.Warn("scoring table candidate failed", "error", err)
			continue
		}
		cand.Text = text
		cand.Score = scoreRegionText(text, d.keywords)
		d.logger.Debug("scored table candidate",
			"region", cand.Region, "area", cand.Area, "score", cand.Score)
		if best == -1 || cand.Score > candidates[best].Score {
			best = i
			bestCrop = crop
		}
	}
	if best >= 0 && candidates[best].Score >= d.cfg.AcceptScore {
		return bestCrop, candidates[best], true, nil
	}
	return nil, Candidate{}, false, nil
}

// propose generates geometric table candidates, largest first.
func (d *Detector) propose(img image.Image) ([]Candidate, error) {
	gray, w, h, err := utils.ToGrayscale(img)
	if err != nil {
		return nil, err
	}

	edges := utils.SobelEdges(gray, w, h, d.cfg.EdgeThreshold)
	dilated := utils.DilateMask(edges, w, h, d.cfg.DilateKernel, d.cfg.DilateIterations)
	components, labels := utils.ConnectedComponents(dilated, w, h)

	maxArea := int(d.cfg.MaxAreaFraction * float64(w*h))
	candidates := make([]Candidate, 0, len(components))
	for _, comp := range components {
		bw := comp.MaxX - comp.MinX + 1
		bh := comp.MaxY - comp.MinY + 1
		area := bw * bh
		if area < d.cfg.MinArea || area > maxArea {
			continue
		}
		aspect := float64(bw) / float64(bh)
		if aspect < d.cfg.MinAspect || aspect > d.cfg.MaxAspect {
			continue
		}
		corners, ok := rectangularOutline(labels, w, h, comp)
		if !ok {
			continue
		}
		candidates = append(candidates, Candidate{
			Region:  image.Rect(comp.MinX, comp.MinY, comp.MaxX+1, comp.MaxY+1),
			Corners: corners,
			Area:    area,
		})
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Area > candidates[j].Area })
	if len(candidates) > d.cfg.MaxCandidates {
		candidates = candidates[:d.cfg.MaxCandidates]
	}
	return candidates, nil
}

// rectangularOutline traces the component contour and checks that it
// simplifies to a near-quadrilateral. Tables photographed at an angle keep a
// couple of extra corners, so 4 to 6 are accepted.
func rectangularOutline(labels []int, w, h int, comp utils.Component) ([]utils.Point, bool) {
	contour := utils.TraceContour(labels, w, h, comp)
	if len(contour) < 4 {
		return nil, false
	}
	epsilon := 0.02 * utils.PolygonPerimeter(contour)
	simplified := utils.SimplifyPolygon(contour, epsilon)
	if len(simplified) < 4 || len(simplified) > 6 {
		return nil, false
	}
	return simplified, true
}
