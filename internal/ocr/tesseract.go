package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// TesseractEngine is the general-purpose multilingual engine, backed by the
// local Tesseract installation via gosseract. A fresh client is created per
// extraction, so concurrent calls never share engine state.
type TesseractEngine struct {
	languages []string // installed traineddata languages
}

// NewTesseractEngine probes the local Tesseract installation. It returns an
// error when no languages are available, in which case the engine is simply
// left out of the fan-out.
func NewTesseractEngine() (*TesseractEngine, error) {
	langs, err := gosseract.GetAvailableLanguages()
	if err != nil {
		return nil, fmt.Errorf("tesseract unavailable: %w", err)
	}
	if len(langs) == 0 {
		return nil, fmt.Errorf("tesseract has no trained languages installed")
	}
	return &TesseractEngine{languages: langs}, nil
}

// Name implements Engine.
func (e *TesseractEngine) Name() string { return "tesseract" }

// Extract implements Engine using word-level bounding boxes.
func (e *TesseractEngine) Extract(ctx context.Context, img image.Image, lang string) ([]AnnotatedText, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding image for tesseract: %w", err)
	}

	client := gosseract.NewClient()
	defer func() { _ = client.Close() }()

	if err := client.SetLanguage(e.sessionLanguages(lang)...); err != nil {
		return nil, fmt.Errorf("setting tesseract language: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("setting tesseract image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("tesseract recognition failed: %w", err)
	}

	out := make([]AnnotatedText, 0, len(boxes))
	for _, b := range boxes {
		word := strings.TrimSpace(b.Word)
		if word == "" {
			continue
		}
		// gosseract reports confidence in [0,100].
		out = append(out, NewAnnotatedText(word, b.Confidence/100.0, RectBox(b.Box), e.Name()))
	}
	return out, nil
}

// PlainText runs a quick whole-image recognition pass without box geometry.
// Used by the table region detector to score crop candidates cheaply.
func (e *TesseractEngine) PlainText(ctx context.Context, img image.Image, lang string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encoding image for tesseract: %w", err)
	}

	client := gosseract.NewClient()
	defer func() { _ = client.Close() }()

	if err := client.SetLanguage(e.sessionLanguages(lang)...); err != nil {
		return "", fmt.Errorf("setting tesseract language: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("setting tesseract image: %w", err)
	}
	return client.Text()
}

// Recognize reads a single cropped text region, returning the joined words
// and their mean confidence. Satisfies RecognizeFunc for the layout engine.
func (e *TesseractEngine) Recognize(ctx context.Context, img image.Image, lang string) (string, float64, error) {
	texts, err := e.Extract(ctx, img, lang)
	if err != nil {
		return "", 0, err
	}
	if len(texts) == 0 {
		return "", 0, nil
	}

	words := make([]string, 0, len(texts))
	sum := 0.0
	for _, t := range texts {
		words = append(words, t.Text)
		sum += t.Confidence
	}
	return strings.Join(words, " "), sum / float64(len(texts)), nil
}

// sessionLanguages maps the requested language onto installed traineddata,
// always including English as a secondary since label text mixes languages.
func (e *TesseractEngine) sessionLanguages(lang string) []string {
	primary := iso3Lang(lang)
	langs := []string{}
	if e.hasLanguage(primary) {
		langs = append(langs, primary)
	}
	if primary != "eng" && e.hasLanguage("eng") {
		langs = append(langs, "eng")
	}
	if len(langs) == 0 {
		langs = append(langs, e.languages[0])
	}
	return langs
}

func (e *TesseractEngine) hasLanguage(code string) bool {
	for _, l := range e.languages {
		if l == code {
			return true
		}
	}
	return false
}
