package nutrient

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/foodlens/internal/tablegrid"
)

var numberRe = regexp.MustCompile(`(\d+(?:[.,]\d+)?)`)

// MapTable extracts nutrient values from a reconstructed table. Cell text is
// matched against the per-nutrient pattern table; on a match the value is
// taken from a numeric token elsewhere in the same row, falling back to a
// numeric token in the matching cell itself. The first match wins per
// nutrient; later duplicates in the same scan are ignored. The returned map
// holds only the nutrients actually located, like the free-text extractor.
func MapTable(grid tablegrid.Structure, kw *Keywords) map[string]float64 {
	values := make(map[string]float64, len(Keys))
	found := make(map[string]bool, len(Keys))

	// Scan cells in reading order so repeated runs are deterministic.
	for row := range grid.Rows {
		for col := range grid.Cols {
			texts, ok := grid.Cells[tablegrid.CellKey{Row: row, Col: col}]
			if !ok {
				continue
			}
			for _, text := range texts {
				if matched := mapCellText(grid, kw, row, col, text.Text, values, found); matched {
					break
				}
			}
		}
	}
	return values
}

// mapCellText attributes one cell text to a nutrient and pulls its value.
// Returns true when the text named any nutrient, claimed or not.
func mapCellText(grid tablegrid.Structure, kw *Keywords, row, col int, text string,
	values map[string]float64, found map[string]bool,
) bool {
	lower := strings.ToLower(text)
	for _, key := range Keys {
		if !anyMatch(kw.CellPatterns[key], lower) {
			continue
		}
		if found[key] {
			return true
		}
		if v, ok := rowValue(grid, row, col); ok {
			values[key] = v
			found[key] = true
		} else if v, ok := parseNumber(text); ok {
			values[key] = v
			found[key] = true
		}
		return true
	}
	return false
}

// rowValue searches the other cells of the row, left to right, for the first
// numeric token.
func rowValue(grid tablegrid.Structure, row, skipCol int) (float64, bool) {
	for col := range grid.Cols {
		if col == skipCol {
			continue
		}
		texts, ok := grid.Cells[tablegrid.CellKey{Row: row, Col: col}]
		if !ok {
			continue
		}
		for _, t := range texts {
			if v, ok := parseNumber(t.Text); ok {
				return v, true
			}
		}
	}
	return 0, false
}

func anyMatch(patterns []*regexp.Regexp, text string) bool {
	for _, re := range patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// parseNumber extracts the first decimal token, normalizing the comma
// separator to a dot.
func parseNumber(text string) (float64, bool) {
	m := numberRe.FindString(text)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", "."), 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}
