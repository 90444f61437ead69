package preprocess

import (
	"image"
	"image/color"
	"testing"

	"github.com/MeKo-Tech/foodlens/internal/testutil"
	"github.com/MeKo-Tech/foodlens/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidates_OriginalFirst(t *testing.T) {
	p := New(DefaultConfig())
	img := testutil.GenerateLabel(testutil.DefaultLabelConfig())

	candidates, degraded := p.Candidates(img)
	require.NotEmpty(t, candidates)
	assert.False(t, degraded)

	// Base rendering plus the four enhancement variants.
	assert.Len(t, candidates, 1+len(DefaultConfig().Variants))

	// The first candidate keeps the (resized) original's dimensions.
	assert.Equal(t, img.Bounds().Dx(), candidates[0].Bounds().Dx())
	assert.Equal(t, img.Bounds().Dy(), candidates[0].Bounds().Dy())
}

func TestCandidates_DownscalesLargeImages(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Deskew = false
	cfg.Denoise = false
	cfg.Variants = nil
	p := New(cfg)

	lbl := testutil.DefaultLabelConfig()
	lbl.Width, lbl.Height = 4096, 2048
	candidates, _ := p.Candidates(testutil.GenerateLabel(lbl))

	require.Len(t, candidates, 1)
	b := candidates[0].Bounds()
	assert.Equal(t, cfg.Resize.MaxEdge, max(b.Dx(), b.Dy()))
}

func TestCandidates_SmallImagesNotUpscaled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Deskew = false
	cfg.Variants = nil
	p := New(cfg)

	small := testutil.SolidImage(400, 300, color.White)
	candidates, _ := p.Candidates(small)
	require.NotEmpty(t, candidates)
	assert.Equal(t, 400, candidates[0].Bounds().Dx())
}

func TestCandidates_UnknownVariantSkippedAndDegraded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Variants = []string{"adaptive", "posterize"}
	p := New(cfg)

	candidates, degraded := p.Candidates(testutil.GenerateLabel(testutil.DefaultLabelConfig()))
	assert.Len(t, candidates, 2) // base + adaptive; posterize skipped
	assert.True(t, degraded)
}

func TestEstimateSkew_DeadZone(t *testing.T) {
	// A straight label must not be rotated: estimated skew stays inside the
	// dead zone.
	img := testutil.GenerateLabel(testutil.DefaultLabelConfig())
	gray, w, h, err := utils.ToGrayscale(img)
	require.NoError(t, err)

	angle, ok := estimateSkew(gray, w, h)
	if ok {
		assert.InDelta(t, 0.0, angle, DefaultConfig().DeskewMinAngle)
	}
}

// ruledImage draws straight 2px horizontal rules on a white canvas.
func ruledImage(w, h int, rows []int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.White)
		}
	}
	for _, ry := range rows {
		for y := ry; y < ry+2; y++ {
			for x := 40; x < w-40; x++ {
				img.Set(x, y, color.Black)
			}
		}
	}
	return img
}

func TestDeskew_StraightRulesNotRotated(t *testing.T) {
	img := ruledImage(600, 400, []int{60, 130, 200, 270, 340})
	gray, w, h, err := utils.ToGrayscale(img)
	require.NoError(t, err)

	angle, ok := estimateSkew(gray, w, h)
	require.True(t, ok, "straight rules carry enough votes to estimate")
	assert.InDelta(t, 0.0, angle, DefaultConfig().DeskewMinAngle)

	cfg := DefaultConfig()
	cfg.Variants = nil
	cfg.Denoise = false
	p := New(cfg)

	// Inside the dead zone no rotation happens, so the canvas keeps its size.
	out, err := p.deskew(img)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), out.Bounds())
}

func TestDeskew_RotatedLabelGrows(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Variants = nil
	cfg.Denoise = false
	p := New(cfg)

	lbl := testutil.DefaultLabelConfig()
	lbl.Rotation = 7
	rotated := testutil.GenerateLabel(lbl)

	candidates, _ := p.Candidates(rotated)
	require.NotEmpty(t, candidates)
	// Counter-rotation re-expands the canvas; the exact angle depends on the
	// Hough estimate, so only sanity-check the output dimensions.
	b := candidates[0].Bounds()
	assert.Positive(t, b.Dx())
	assert.Positive(t, b.Dy())
}

func TestRenderVariants(t *testing.T) {
	p := New(DefaultConfig())
	gray := make([]uint8, 64*64)
	for i := range gray {
		gray[i] = uint8(i % 256)
	}

	for _, variant := range DefaultConfig().Variants {
		out, err := p.renderVariant(variant, gray, gray, 64, 64)
		require.NoError(t, err, "variant %s", variant)
		require.NotNil(t, out)
		assert.Equal(t, image.Rect(0, 0, 64, 64), out.Bounds())
	}

	_, err := p.renderVariant("nope", gray, gray, 64, 64)
	require.Error(t, err)
}
