package testutil

import (
	"context"
	"image"
	"sync/atomic"

	"github.com/MeKo-Tech/foodlens/internal/ocr"
)

// FakeEngine is a canned OCR engine for pipeline and adapter tests. It
// returns the configured texts for every image it is given. The fan-out runs
// engines concurrently, so the call counter is atomic.
type FakeEngine struct {
	EngineName string
	Texts      []ocr.AnnotatedText
	Err        error
	Calls      atomic.Int32
}

// Name implements ocr.Engine.
func (f *FakeEngine) Name() string {
	if f.EngineName == "" {
		return "fake"
	}
	return f.EngineName
}

// Extract implements ocr.Engine.
func (f *FakeEngine) Extract(_ context.Context, _ image.Image, _ string) ([]ocr.AnnotatedText, error) {
	f.Calls.Add(1)
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Texts, nil
}

// Word builds an AnnotatedText for a 60x14 word box at (x, y).
func Word(text string, confidence float64, x, y int) ocr.AnnotatedText {
	return ocr.NewAnnotatedText(text, confidence, ocr.RectBox(image.Rect(x, y, x+60, y+14)), "fake")
}
