// Package ocr normalizes the output of pluggable text-recognition engines
// into a common annotated-text format and fans extraction out over image
// candidates and engines.
package ocr

import (
	"image"

	"github.com/MeKo-Tech/foodlens/internal/utils"
)

// AnnotatedText is a single OCR detection: the recognized text, the engine's
// confidence in [0,1], the quadrilateral bounding box, and derived
// axis-aligned bounds and center used for table structure analysis.
type AnnotatedText struct {
	Text       string         `json:"text"`
	Confidence float64        `json:"confidence"`
	Box        [4]utils.Point `json:"box"` // clockwise from top-left
	Engine     string         `json:"engine"`

	MinX    float64 `json:"x_min"`
	MinY    float64 `json:"y_min"`
	MaxX    float64 `json:"x_max"`
	MaxY    float64 `json:"y_max"`
	CenterX float64 `json:"center_x"`
	CenterY float64 `json:"center_y"`
}

// NewAnnotatedText builds an AnnotatedText and fills in the derived bounds.
func NewAnnotatedText(text string, confidence float64, box [4]utils.Point, engine string) AnnotatedText {
	minX, minY := box[0].X, box[0].Y
	maxX, maxY := box[0].X, box[0].Y
	for _, p := range box[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return AnnotatedText{
		Text:       text,
		Confidence: confidence,
		Box:        box,
		Engine:     engine,
		MinX:       minX,
		MinY:       minY,
		MaxX:       maxX,
		MaxY:       maxY,
		CenterX:    (minX + maxX) / 2,
		CenterY:    (minY + maxY) / 2,
	}
}

// RectBox converts an axis-aligned rectangle into a clockwise quadrilateral.
func RectBox(r image.Rectangle) [4]utils.Point {
	return [4]utils.Point{
		{X: float64(r.Min.X), Y: float64(r.Min.Y)},
		{X: float64(r.Max.X), Y: float64(r.Min.Y)},
		{X: float64(r.Max.X), Y: float64(r.Max.Y)},
		{X: float64(r.Min.X), Y: float64(r.Max.Y)},
	}
}
