package tabledetect

import (
	"regexp"
	"strings"

	"github.com/MeKo-Tech/foodlens/internal/nutrient"
)

var digitRe = regexp.MustCompile(`\d`)

// scoreRegionText rates how table-like a candidate's OCR text is. Header
// words weigh triple because they are near-conclusive; generic nutrient words
// weigh single. The presence of digits and the line count add fixed bonuses
// since a nutrition panel is a grid of values.
func scoreRegionText(text string, kw *nutrient.Keywords) int {
	lower := strings.ToLower(text)
	score := 0

	for _, header := range kw.TableHeaders {
		if strings.Contains(lower, header) {
			score += 3
		}
	}
	for _, name := range kw.NutrientNames {
		if strings.Contains(lower, name) {
			score++
		}
	}

	if digitRe.MatchString(lower) {
		score += 2
	}
	if nonEmptyLines(text) > 3 {
		score += 2
	}
	return score
}

func nonEmptyLines(text string) int {
	n := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}
