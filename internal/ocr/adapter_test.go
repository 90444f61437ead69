package ocr_test

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/MeKo-Tech/foodlens/internal/ocr"
	"github.com/MeKo-Tech/foodlens/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func images(n int) []image.Image {
	out := make([]image.Image, n)
	for i := range out {
		out[i] = image.NewGray(image.Rect(0, 0, 10, 10))
	}
	return out
}

func TestExtractAll_PoolsAcrossEnginesAndImages(t *testing.T) {
	e1 := &testutil.FakeEngine{EngineName: "one", Texts: []ocr.AnnotatedText{testutil.Word("Enerji", 0.9, 10, 10)}}
	e2 := &testutil.FakeEngine{EngineName: "two", Texts: []ocr.AnnotatedText{testutil.Word("250", 0.8, 200, 10)}}
	a := ocr.NewAdapter(ocr.DefaultAdapterConfig(), e1, e2)

	pooled := a.ExtractAll(context.Background(), images(3), "tr")

	// 3 images x 2 engines, one detection each.
	assert.Len(t, pooled, 6)
	assert.Equal(t, int32(3), e1.Calls.Load())
	assert.Equal(t, int32(3), e2.Calls.Load())
}

func TestExtractAll_ConfidenceFloor(t *testing.T) {
	e := &testutil.FakeEngine{Texts: []ocr.AnnotatedText{
		testutil.Word("keep", 0.31, 0, 0),
		testutil.Word("borderline", 0.3, 0, 20),
		testutil.Word("drop", 0.29, 0, 40),
	}}
	a := ocr.NewAdapter(ocr.DefaultAdapterConfig(), e)

	pooled := a.ExtractAll(context.Background(), images(1), "tr")
	require.Len(t, pooled, 2)
	for _, txt := range pooled {
		assert.GreaterOrEqual(t, txt.Confidence, 0.3)
	}
}

func TestExtractAll_FailingEngineDropped(t *testing.T) {
	good := &testutil.FakeEngine{EngineName: "good", Texts: []ocr.AnnotatedText{testutil.Word("Protein", 0.9, 0, 0)}}
	bad := &testutil.FakeEngine{EngineName: "bad", Err: errors.New("backend crashed")}
	a := ocr.NewAdapter(ocr.DefaultAdapterConfig(), good, bad)

	pooled := a.ExtractAll(context.Background(), images(2), "tr")
	assert.Len(t, pooled, 2)
	for _, txt := range pooled {
		assert.Equal(t, "Protein", txt.Text)
	}
}

func TestExtractAll_EmptyInputs(t *testing.T) {
	e := &testutil.FakeEngine{}
	a := ocr.NewAdapter(ocr.DefaultAdapterConfig(), e)

	assert.Nil(t, a.ExtractAll(context.Background(), nil, "tr"))
	assert.Zero(t, e.Calls.Load())
}

func TestEngineNames(t *testing.T) {
	a := ocr.NewAdapter(ocr.DefaultAdapterConfig(),
		&testutil.FakeEngine{EngineName: "one"},
		&testutil.FakeEngine{EngineName: "two"})
	assert.Equal(t, []string{"one", "two"}, a.EngineNames())
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Enerji:  250", "Enerji 250"},
		{"yağ 12,5 g", "yağ 12,5 g"},
		{"Şeker* †10‡", "Şeker 10"},
		{"  spaced   out  ", "spaced out"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ocr.CleanText(tt.in), "input %q", tt.in)
	}
}

func TestCombineText_DedupKeepsHighestConfidence(t *testing.T) {
	combined := ocr.CombineText([]ocr.AnnotatedText{
		testutil.Word("protein", 0.5, 0, 0),
		testutil.Word("PROTEIN", 0.9, 0, 0),
		testutil.Word("enerji", 0.8, 0, 20),
	})

	// Highest-confidence spelling wins and appears first.
	assert.Equal(t, "PROTEIN enerji", combined)
}

func TestCombineText_SkipsShortFragments(t *testing.T) {
	combined := ocr.CombineText([]ocr.AnnotatedText{
		testutil.Word("a", 0.9, 0, 0),
		testutil.Word("tuz", 0.8, 0, 20),
	})
	assert.Equal(t, "tuz", combined)
}

func TestCombineText_Empty(t *testing.T) {
	assert.Empty(t, ocr.CombineText(nil))
}

func TestNewAnnotatedText_DerivedGeometry(t *testing.T) {
	txt := ocr.NewAnnotatedText("x", 0.5, ocr.RectBox(image.Rect(10, 20, 50, 40)), "test")
	assert.Equal(t, 10.0, txt.MinX)
	assert.Equal(t, 20.0, txt.MinY)
	assert.Equal(t, 50.0, txt.MaxX)
	assert.Equal(t, 40.0, txt.MaxY)
	assert.InDelta(t, 30.0, txt.CenterX, 0.001)
	assert.InDelta(t, 30.0, txt.CenterY, 0.001)
}
