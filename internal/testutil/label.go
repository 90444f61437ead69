// Package testutil generates synthetic nutrition-label images and fixtures
// for tests. Rendering uses the basicfont face, which is crude but
// deterministic across platforms.
package testutil

import (
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// LabelRow is one nutrient line on a synthetic label.
type LabelRow struct {
	Name  string
	Value string
}

// LabelConfig describes a synthetic label image.
type LabelConfig struct {
	Width      int
	Height     int
	Title      string
	Rows       []LabelRow
	Border     bool    // draw a table border around the rows
	Rotation   float64 // degrees, applied last
	Background color.Color
	Foreground color.Color
}

// DefaultLabelConfig returns a plausible Turkish nutrition panel.
func DefaultLabelConfig() LabelConfig {
	return LabelConfig{
		Width:  640,
		Height: 480,
		Title:  "Besin Degerleri 100g",
		Rows: []LabelRow{
			{Name: "Enerji", Value: "250 kcal"},
			{Name: "Yag", Value: "12 g"},
			{Name: "Karbonhidrat", Value: "30 g"},
			{Name: "Protein", Value: "5 g"},
			{Name: "Tuz", Value: "0.8 g"},
		},
		Border:     true,
		Background: color.White,
		Foreground: color.Black,
	}
}

// GenerateLabel renders the synthetic label.
func GenerateLabel(cfg LabelConfig) image.Image {
	if cfg.Background == nil {
		cfg.Background = color.White
	}
	if cfg.Foreground == nil {
		cfg.Foreground = color.Black
	}

	img := image.NewRGBA(image.Rect(0, 0, cfg.Width, cfg.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{cfg.Background}, image.Point{}, draw.Src)

	face := basicfont.Face7x13
	lineHeight := face.Metrics().Height.Ceil() + 8
	x := cfg.Width / 8
	y := cfg.Height / 6

	if cfg.Title != "" {
		drawString(img, face, cfg.Foreground, x, y, cfg.Title)
		y += lineHeight * 2
	}

	tableTop := y - lineHeight
	valueX := x + cfg.Width/2
	for _, row := range cfg.Rows {
		drawString(img, face, cfg.Foreground, x, y, row.Name)
		drawString(img, face, cfg.Foreground, valueX, y, row.Value)
		y += lineHeight
	}

	if cfg.Border && len(cfg.Rows) > 0 {
		rect := image.Rect(x-12, tableTop, valueX+cfg.Width/4, y)
		drawRect(img, rect, cfg.Foreground)
	}

	if cfg.Rotation != 0 {
		return imaging.Rotate(img, cfg.Rotation, cfg.Background)
	}
	return img
}

func drawString(dst draw.Image, face font.Face, c color.Color, x, y int, s string) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  &image.Uniform{c},
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// drawRect draws a 2px rectangle outline.
func drawRect(img *image.RGBA, r image.Rectangle, c color.Color) {
	for t := range 2 {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.Set(x, r.Min.Y+t, c)
			img.Set(x, r.Max.Y-1-t, c)
		}
		for y := r.Min.Y; y < r.Max.Y; y++ {
			img.Set(r.Min.X+t, y, c)
			img.Set(r.Max.X-1-t, y, c)
		}
	}
}

// SolidImage returns a uniform image, useful as a no-text input.
func SolidImage(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{c}, image.Point{}, draw.Src)
	return img
}

// SavePNG writes img to a file under t.TempDir and returns the path.
func SavePNG(t *testing.T, img image.Image, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, imaging.Save(img, path))
	return path
}

// WriteFile writes data to a file under t.TempDir and returns the path.
func WriteFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}
