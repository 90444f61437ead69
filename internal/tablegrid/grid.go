// Package tablegrid reconstructs a row/column grid from pooled OCR
// detections. Nutrition labels in the wild have inconsistent column alignment
// that defeats line and grid detection, but text within a printed row is
// reliably colinear in y, so simple 1-D spatial clustering of detection
// centers recovers the table structure.
package tablegrid

import (
	"math"
	"sort"

	"github.com/MeKo-Tech/foodlens/internal/ocr"
)

// Config holds clustering tolerances in pixels.
type Config struct {
	RowTolerance float64 // y-center distance within one row band
	ColTolerance float64 // x-center distance within one column band
}

// DefaultConfig returns tolerances tuned for label photographs at the
// pipeline's working resolution.
func DefaultConfig() Config {
	return Config{RowTolerance: 15, ColTolerance: 30}
}

// CellKey addresses a cell by row and column band index.
type CellKey struct {
	Row int
	Col int
}

// Structure is the reconstructed grid: ordered band centers plus the
// detections assigned to each cell, sorted by confidence descending.
type Structure struct {
	Rows  []float64
	Cols  []float64
	Cells map[CellKey][]ocr.AnnotatedText
}

// Reconstruct clusters detection centers into row and column bands and
// assigns each detection to its nearest cell.
func Reconstruct(texts []ocr.AnnotatedText, cfg Config) Structure {
	if len(texts) == 0 {
		return Structure{Cells: map[CellKey][]ocr.AnnotatedText{}}
	}
	if len(texts) == 1 {
		// A single detection trivially forms a one-cell table.
		return Structure{
			Rows:  []float64{texts[0].CenterY},
			Cols:  []float64{texts[0].CenterX},
			Cells: map[CellKey][]ocr.AnnotatedText{{0, 0}: {texts[0]}},
		}
	}

	ys := make([]float64, len(texts))
	xs := make([]float64, len(texts))
	for i, t := range texts {
		ys[i] = t.CenterY
		xs[i] = t.CenterX
	}

	rows := clusterCenters(ys, cfg.RowTolerance)
	cols := clusterCenters(xs, cfg.ColTolerance)

	cells := make(map[CellKey][]ocr.AnnotatedText)
	for _, t := range texts {
		key := CellKey{Row: nearestBand(rows, t.CenterY), Col: nearestBand(cols, t.CenterX)}
		cells[key] = append(cells[key], t)
	}
	for key := range cells {
		sort.SliceStable(cells[key], func(i, j int) bool {
			return cells[key][i].Confidence > cells[key][j].Confidence
		})
	}

	return Structure{Rows: rows, Cols: cols, Cells: cells}
}

// clusterCenters performs online single-pass clustering over sorted centers:
// a new cluster starts whenever a point deviates from the running cluster
// mean by more than the tolerance. Ties favor merging into the existing
// cluster.
func clusterCenters(values []float64, tolerance float64) []float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var clusters []float64
	current := []float64{sorted[0]}
	mean := sorted[0]

	for _, v := range sorted[1:] {
		if math.Abs(v-mean) <= tolerance {
			current = append(current, v)
			sum := 0.0
			for _, c := range current {
				sum += c
			}
			mean = sum / float64(len(current))
		} else {
			clusters = append(clusters, mean)
			current = []float64{v}
			mean = v
		}
	}
	clusters = append(clusters, mean)
	return clusters
}

// nearestBand returns the index of the band center closest to v.
func nearestBand(bands []float64, v float64) int {
	best := 0
	bestDist := math.Abs(v - bands[0])
	for i := 1; i < len(bands); i++ {
		if d := math.Abs(v - bands[i]); d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}
