package nutrient

import (
	"regexp"
	"strings"
)

// per100gRe locates mentions of the per-100g basis in OCR text. Values near
// such a mention are more likely the standard per-100g column than a
// per-portion one.
var per100gRe = regexp.MustCompile(`(?i)(100\s*g(?:r|ramı|ram)?|per\s*100\s*g|her\s*100\s*g|başına)`)

const per100gWindow = 200 // characters taken around each per-100g mention

// FromText extracts nutrition values from free OCR text using the
// multilingual pattern table. Sections around per-100g mentions are searched
// first; nutrients not found there fall back to the full text. This is the
// weaker of the two extraction paths and is used only when the structured
// table yields nothing.
func FromText(text string, kw *Keywords) Data {
	return FromValues(TextValues(text, kw))
}

// TextValues returns the raw values extracted from free text, before unit
// reconciliation. Callers use the raw map to judge extraction coverage.
func TextValues(text string, kw *Keywords) map[string]float64 {
	lower := strings.ToLower(text)
	sections := per100gSections(lower)

	values := make(map[string]float64, len(Keys))
	for _, key := range Keys {
		patterns := kw.TextPatterns[key]
		v, ok := firstCapture(patterns, sections)
		if !ok && len(sections) > 0 {
			v, ok = firstCapture(patterns, []string{lower})
		}
		if ok {
			values[key] = v
		}
	}
	return values
}

// per100gSections returns windows of text around per-100g mentions, or the
// whole text when none are found.
func per100gSections(lower string) []string {
	matches := per100gRe.FindAllStringIndex(lower, -1)
	if len(matches) == 0 {
		return []string{lower}
	}
	sections := make([]string, 0, len(matches))
	for _, m := range matches {
		start := m[0] - per100gWindow
		if start < 0 {
			start = 0
		}
		end := m[1] + per100gWindow
		if end > len(lower) {
			end = len(lower)
		}
		sections = append(sections, lower[start:end])
	}
	return sections
}

func firstCapture(patterns []*regexp.Regexp, sections []string) (float64, bool) {
	for _, section := range sections {
		for _, re := range patterns {
			m := re.FindStringSubmatch(section)
			if len(m) < 2 {
				continue
			}
			if v, ok := parseNumber(m[1]); ok {
				return v, true
			}
		}
	}
	return 0, false
}

// ingredientMarkerRes match ingredient-list introductions in Turkish and
// English; the capture runs to the end of the line.
var ingredientMarkerRes = []*regexp.Regexp{
	regexp.MustCompile(`(?im)içindekiler[:\s]+(.*?)(?:\n|$)`),
	regexp.MustCompile(`(?im)ingredients[:\s]+(.*?)(?:\n|$)`),
	regexp.MustCompile(`(?im)malzemeler[:\s]+(.*?)(?:\n|$)`),
}

var ingredientSplitRe = regexp.MustCompile(`[,;]\s*`)

// ExtractIngredients pulls the ingredient list out of combined OCR text.
// Ingredient lists are ordered by descending mass on the label, and that
// order is preserved here for downstream weighting.
func ExtractIngredients(text string) []string {
	var ingredients []string
	for _, re := range ingredientMarkerRes {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			for _, part := range ingredientSplitRe.Split(strings.TrimSpace(m[1]), -1) {
				part = strings.TrimSpace(part)
				if part != "" {
					ingredients = append(ingredients, part)
				}
			}
		}
	}
	return ingredients
}
