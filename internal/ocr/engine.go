package ocr

import (
	"context"
	"image"
	"strings"

	"golang.org/x/text/language"
)

// Engine is the capability set shared by all text-recognition engines.
// Implementations must be safe for concurrent Extract calls; engines whose
// underlying runtime is not thread-safe serialize access internally.
type Engine interface {
	// Name identifies the engine in AnnotatedText.Engine tags and logs.
	Name() string
	// Extract runs recognition over the image and returns all detections.
	Extract(ctx context.Context, img image.Image, lang string) ([]AnnotatedText, error)
}

// iso3Lang normalizes a caller-provided language code (BCP-47 or bare ISO
// 639-1, e.g. "tr" or "en-US") to the three-letter code Tesseract-style
// engines expect. Unparseable codes fall back to English.
func iso3Lang(code string) string {
	tag, err := language.Parse(strings.TrimSpace(code))
	if err != nil {
		return "eng"
	}
	base, _ := tag.Base()
	iso3 := base.ISO3()
	if iso3 == "" {
		return "eng"
	}
	return iso3
}
