package tabledetect

import (
	"testing"

	"github.com/MeKo-Tech/foodlens/internal/nutrient"
	"github.com/stretchr/testify/assert"
)

func TestScoreRegionText(t *testing.T) {
	kw := nutrient.DefaultKeywords()

	tests := []struct {
		name    string
		text    string
		atLeast int
		below   int
	}{
		{
			name:    "header alone passes",
			text:    "Besin Değerleri",
			atLeast: 3,
		},
		{
			name:    "nutrient words and numbers",
			text:    "enerji 250\nprotein 5\nyağ 12\ntuz 0.8",
			atLeast: 3,
		},
		{
			name:  "marketing text fails",
			text:  "En lezzetli atıştırmalık!",
			below: 3,
		},
		{
			name:  "empty",
			text:  "",
			below: 3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := scoreRegionText(tt.text, kw)
			if tt.atLeast > 0 {
				assert.GreaterOrEqual(t, score, tt.atLeast)
			} else {
				assert.Less(t, score, tt.below)
			}
		})
	}
}

func TestScoreRegionText_Bonuses(t *testing.T) {
	kw := nutrient.DefaultKeywords()

	// Any digit earns the value bonus.
	noDigits := scoreRegionText("protein", kw)
	withDigit := scoreRegionText("protein 5", kw)
	assert.Equal(t, noDigits+2, withDigit)

	// More than three non-empty lines earn the layout bonus.
	oneLine := scoreRegionText("protein", kw)
	manyLines := scoreRegionText("protein\na\nb\nc", kw)
	assert.Equal(t, oneLine+2, manyLines)
}

func TestScoreRegionText_SparseCropReachesThreshold(t *testing.T) {
	// One nutrient word plus a single number is already table-like enough.
	kw := nutrient.DefaultKeywords()
	assert.GreaterOrEqual(t, scoreRegionText("enerji 250", kw), DefaultConfig().AcceptScore)
}

func TestNonEmptyLines(t *testing.T) {
	assert.Equal(t, 0, nonEmptyLines(""))
	assert.Equal(t, 2, nonEmptyLines("a\n\n  \nb"))
}
