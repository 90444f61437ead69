// Package preprocess produces enhanced renderings of a label photograph for
// text recognition. No single enhancement is reliable across label printing
// and lighting conditions, so several candidates are emitted and recognition
// fans out over all of them.
package preprocess

import (
	"image"
	"log/slog"

	"github.com/MeKo-Tech/foodlens/internal/utils"
)

// Config holds preprocessing configuration. Each enhancement step can be
// toggled independently.
type Config struct {
	Resize          utils.ResizeLimits
	Deskew          bool
	DeskewMinAngle  float64 // degrees; skew below this dead zone is left alone
	Denoise         bool
	DenoiseStrength int
	Variants        []string // subset of "adaptive", "otsu", "equalize", "stretch"
}

// DefaultConfig returns defaults tuned for packaged-food label photos.
func DefaultConfig() Config {
	return Config{
		Resize:          utils.DefaultResizeLimits(),
		Deskew:          true,
		DeskewMinAngle:  0.5,
		Denoise:         true,
		DenoiseStrength: 5,
		Variants:        []string{"adaptive", "otsu", "equalize", "stretch"},
	}
}

// Preprocessor generates candidate renderings from a decoded image.
type Preprocessor struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Preprocessor with the given configuration.
func New(cfg Config) *Preprocessor {
	return &Preprocessor{cfg: cfg, logger: slog.Default().With("component", "preprocess")}
}

// Candidates returns an ordered list of renderings for recognition. The
// resized (and possibly deskewed) original is always first; enhancement
// variants follow. A failing step is logged and skipped, so the list is
// never empty for a valid input image; degraded reports whether any step
// was skipped that way.
func (p *Preprocessor) Candidates(img image.Image) (candidates []image.Image, degraded bool) {
	base, err := utils.ResizeToLimit(img, p.cfg.Resize)
	if err != nil {
		p.logger.Warn("resize failed, using input unchanged", "error", err)
		base = img
		degraded = true
	}

	if p.cfg.Deskew {
		if rotated, err := p.deskew(base); err != nil {
			p.logger.Warn("deskew failed, continuing without rotation", "error", err)
			degraded = true
		} else {
			base = rotated
		}
	}

	candidates = []image.Image{base}

	gray, w, h, err := utils.ToGrayscale(base)
	if err != nil {
		p.logger.Warn("grayscale conversion failed, skipping enhancement variants", "error", err)
		return candidates, true
	}

	working := gray
	if p.cfg.Denoise {
		working = denoise(gray, w, h, p.cfg.DenoiseStrength)
	}

	for _, variant := range p.cfg.Variants {
		out, err := p.renderVariant(variant, working, gray, w, h)
		if err != nil {
			p.logger.Warn("enhancement variant failed", "variant", variant, "error", err)
			degraded = true
			continue
		}
		candidates = append(candidates, out)
	}
	return candidates, degraded
}

func (p *Preprocessor) renderVariant(variant string, denoised, gray []uint8, w, h int) (image.Image, error) {
	switch variant {
	case "adaptive":
		return utils.GrayToImage(adaptiveThreshold(denoised, w, h, 11, 2), w, h), nil
	case "otsu":
		return utils.GrayToImage(otsuThreshold(denoised, w, h), w, h), nil
	case "equalize":
		return utils.GrayToImage(equalizeLocal(gray, w, h, 8, 2.0), w, h), nil
	case "stretch":
		return utils.GrayToImage(stretchContrast(gray, 1.5, 10), w, h), nil
	default:
		return nil, &utils.ImageProcessingError{Operation: "variant", Err: errUnknownVariant(variant)}
	}
}

type errUnknownVariant string

func (e errUnknownVariant) Error() string { return "unknown enhancement variant: " + string(e) }
