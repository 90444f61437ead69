package tabledetect

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/MeKo-Tech/foodlens/internal/nutrient"
	"github.com/MeKo-Tech/foodlens/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeScorer returns canned OCR text for every candidate region.
type fakeScorer struct {
	text string
	err  error
}

func (f *fakeScorer) PlainText(context.Context, image.Image, string) (string, error) {
	return f.text, f.err
}

func tallLabel() image.Image {
	cfg := testutil.DefaultLabelConfig()
	cfg.Rows = []testutil.LabelRow{
		{Name: "Enerji", Value: "250 kcal"},
		{Name: "Yag", Value: "12 g"},
		{Name: "Doymus yag", Value: "4 g"},
		{Name: "Karbonhidrat", Value: "30 g"},
		{Name: "Sekerler", Value: "10 g"},
		{Name: "Lif", Value: "2 g"},
		{Name: "Protein", Value: "5 g"},
		{Name: "Tuz", Value: "0.8 g"},
	}
	return testutil.GenerateLabel(cfg)
}

// widthKeyedScorer serves different text depending on the crop width, so the
// two panels of twoPanelImage receive distinct scores.
type widthKeyedScorer struct {
	wide   string
	narrow string
}

func (s *widthKeyedScorer) PlainText(_ context.Context, img image.Image, _ string) (string, error) {
	if img.Bounds().Dx() > 300 {
		return s.wide, nil
	}
	return s.narrow, nil
}

func drawPanelBorder(img *image.NRGBA, r image.Rectangle) {
	for x := r.Min.X; x < r.Max.X; x++ {
		for t := range 2 {
			img.Set(x, r.Min.Y+t, color.Black)
			img.Set(x, r.Max.Y-1-t, color.Black)
		}
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for t := range 2 {
			img.Set(r.Min.X+t, y, color.Black)
			img.Set(r.Max.X-1-t, y, color.Black)
		}
	}
}

// twoPanelImage holds a large decorative frame next to a smaller panel.
func twoPanelImage() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 640, 480))
	for y := range 480 {
		for x := range 640 {
			img.Set(x, y, color.White)
		}
	}
	drawPanelBorder(img, image.Rect(40, 40, 360, 280))
	drawPanelBorder(img, image.Rect(420, 80, 600, 280))
	return img
}

func TestDetect_HighestScoreWins(t *testing.T) {
	// The larger frame reaches the acceptance score on a lone header word,
	// but the smaller panel scores far higher and must be the one accepted.
	kw := nutrient.DefaultKeywords()
	scorer := &widthKeyedScorer{
		wide:   "içerik",
		narrow: "besin değerleri\nenerji 250\nprotein 5\nyağ 12\ntuz 1",
	}
	require.GreaterOrEqual(t, scoreRegionText(scorer.wide, kw), DefaultConfig().AcceptScore)

	d := New(DefaultConfig(), scorer, kw, nil)
	crop, cand, ok, err := d.Detect(context.Background(), twoPanelImage(), "tr")
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, crop)
	assert.Less(t, cand.Region.Dx(), 300, "smaller high-scoring panel should win")
	assert.Greater(t, cand.Score, scoreRegionText(scorer.wide, kw))
}

func TestDetect_AcceptsKeywordRichRegion(t *testing.T) {
	scorer := &fakeScorer{text: "besin değerleri\nenerji 250\nprotein 5\nyağ 12"}
	d := New(DefaultConfig(), scorer, nutrient.DefaultKeywords(), nil)

	crop, cand, ok, err := d.Detect(context.Background(), tallLabel(), "tr")
	require.NoError(t, err)
	require.True(t, ok, "bordered table should be detected and accepted")
	require.NotNil(t, crop)
	assert.GreaterOrEqual(t, cand.Score, DefaultConfig().AcceptScore)
	assert.Positive(t, cand.Area)
	// Padding makes the crop strictly larger than the detected region.
	assert.Greater(t, crop.Bounds().Dx(), cand.Region.Dx())
}

func TestDetect_RejectsLowScore(t *testing.T) {
	scorer := &fakeScorer{text: "lorem ipsum"}
	d := New(DefaultConfig(), scorer, nutrient.DefaultKeywords(), nil)

	_, _, ok, err := d.Detect(context.Background(), tallLabel(), "tr")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDetect_NoCandidatesOnBlankImage(t *testing.T) {
	scorer := &fakeScorer{text: "besin değerleri"}
	d := New(DefaultConfig(), scorer, nutrient.DefaultKeywords(), nil)

	_, _, ok, err := d.Detect(context.Background(), testutil.SolidImage(640, 480, color.White), "tr")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDetect_ScorerErrorSkipsCandidate(t *testing.T) {
	scorer := &fakeScorer{err: errors.New("ocr exploded")}
	d := New(DefaultConfig(), scorer, nutrient.DefaultKeywords(), nil)

	_, _, ok, err := d.Detect(context.Background(), tallLabel(), "tr")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDetect_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scorer := &fakeScorer{text: "besin değerleri"}
	d := New(DefaultConfig(), scorer, nutrient.DefaultKeywords(), nil)

	_, _, _, err := d.Detect(ctx, tallLabel(), "tr")
	require.Error(t, err)
}
