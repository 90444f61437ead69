package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// maskFromRows builds a binary mask from '#' characters.
func maskFromRows(rows []string) ([]bool, int, int) {
	h := len(rows)
	w := len(rows[0])
	mask := make([]bool, w*h)
	for y, row := range rows {
		for x := 0; x < w; x++ {
			mask[y*w+x] = row[x] == '#'
		}
	}
	return mask, w, h
}

func TestSobelEdges_StepEdge(t *testing.T) {
	// Left half black, right half white: a vertical edge in the middle.
	w, h := 10, 10
	gray := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		for x := 5; x < w; x++ {
			gray[y*w+x] = 255
		}
	}

	edges := SobelEdges(gray, w, h, 100)

	edgeCount := 0
	for _, e := range edges {
		if e {
			edgeCount++
		}
	}
	require.Positive(t, edgeCount)
	// Flat interior stays clean.
	assert.False(t, edges[1*w+1])
	assert.False(t, edges[1*w+8])
	// The transition column fires.
	assert.True(t, edges[5*w+4] || edges[5*w+5])
}

func TestSobelEdges_TinyImage(t *testing.T) {
	edges := SobelEdges(make([]uint8, 4), 2, 2, 10)
	for _, e := range edges {
		assert.False(t, e)
	}
}

func TestDilateMask(t *testing.T) {
	mask, w, h := maskFromRows([]string{
		".....",
		".....",
		"..#..",
		".....",
		".....",
	})

	out := DilateMask(mask, w, h, 3, 1)

	// The single pixel grows into a 3x3 block.
	for y := 1; y <= 3; y++ {
		for x := 1; x <= 3; x++ {
			assert.True(t, out[y*w+x], "(%d,%d)", x, y)
		}
	}
	assert.False(t, out[0])
}

func TestDilateMask_BridgesGap(t *testing.T) {
	mask, w, h := maskFromRows([]string{
		"#...#",
	})
	out := DilateMask(mask, w, h, 3, 1)
	comps, _ := ConnectedComponents(out, w, h)
	require.Len(t, comps, 1)
}

func TestDilateMask_NoOpParameters(t *testing.T) {
	mask, w, h := maskFromRows([]string{"#.#"})
	assert.Equal(t, mask, DilateMask(mask, w, h, 1, 1))
	assert.Equal(t, mask, DilateMask(mask, w, h, 3, 0))
}

func TestConnectedComponents(t *testing.T) {
	mask, w, h := maskFromRows([]string{
		"##..#",
		"##..#",
		".....",
		"#....",
	})

	comps, labels := ConnectedComponents(mask, w, h)
	require.Len(t, comps, 3)

	// Scan order: the 2x2 block first.
	assert.Equal(t, 4, comps[0].Count)
	assert.Equal(t, 0, comps[0].MinX)
	assert.Equal(t, 1, comps[0].MaxX)
	assert.Equal(t, 1, comps[0].MaxY)

	assert.Equal(t, 2, comps[1].Count)
	assert.Equal(t, 4, comps[1].MinX)

	assert.Equal(t, 1, comps[2].Count)
	assert.Equal(t, 3, comps[2].MinY)

	// Labels raster is consistent with the components.
	assert.Equal(t, comps[0].Label, labels[0])
	assert.Equal(t, 0, labels[2]) // background
}

func TestTraceContour_Rectangle(t *testing.T) {
	mask, w, h := maskFromRows([]string{
		".......",
		".#####.",
		".#####.",
		".#####.",
		".......",
	})
	comps, labels := ConnectedComponents(mask, w, h)
	require.Len(t, comps, 1)

	contour := TraceContour(labels, w, h, comps[0])
	require.NotEmpty(t, contour)

	// A filled rectangle's outline simplifies to its four corners.
	simplified := SimplifyPolygon(contour, 0.02*PolygonPerimeter(contour))
	assert.GreaterOrEqual(t, len(simplified), 4)
	assert.LessOrEqual(t, len(simplified), 6)

	for _, p := range simplified {
		assert.GreaterOrEqual(t, p.X, 1.0)
		assert.LessOrEqual(t, p.X, 5.0)
		assert.GreaterOrEqual(t, p.Y, 1.0)
		assert.LessOrEqual(t, p.Y, 3.0)
	}
}

func TestTraceContour_InvalidComponent(t *testing.T) {
	assert.Nil(t, TraceContour(nil, 3, 3, Component{Label: 0}))
}
