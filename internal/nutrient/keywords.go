package nutrient

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Keywords holds the multilingual keyword and pattern tables used to locate
// the nutrition table and attribute cells to nutrients. Loaded once at
// startup and treated as read-only afterwards.
type Keywords struct {
	// TableHeaders mark a region as a nutrition-facts panel (scored 3x).
	TableHeaders []string
	// NutrientNames are generic nutrient words (scored 1x during region
	// scoring).
	NutrientNames []string
	// CellPatterns map nutrient keys to regexes matched against cell text.
	CellPatterns map[string][]*regexp.Regexp
	// TextPatterns map nutrient keys to value-capturing regexes for the
	// free-text fallback extractor.
	TextPatterns map[string][]*regexp.Regexp
}

// keywordFile is the YAML override schema: raw pattern strings per section.
type keywordFile struct {
	TableHeaders  []string            `yaml:"table_headers"`
	NutrientNames []string            `yaml:"nutrient_names"`
	CellPatterns  map[string][]string `yaml:"cell_patterns"`
	TextPatterns  map[string][]string `yaml:"text_patterns"`
}

var defaultTableHeaders = []string{
	"nutrition", "besin", "nährwert", "valeur nutritive", "valor nutritivo",
	"nutritional", "beslenme", "nutrition facts", "besin değerleri",
	"değerleri", "facts", "içerik", "content", "tablası", "table",
	"bilgiler", "information", "analiz", "analysis",
}

var defaultNutrientNames = []string{
	"energy", "enerji", "calories", "kalori", "kkal", "kcal", "kj",
	"fat", "yağ", "total fat", "toplam yağ", "lipid", "lipids",
	"carbohydrate", "karbonhidrat", "carbs", "karbon", "hidrat",
	"protein", "sugar", "şeker", "sugars", "şekerler",
	"salt", "tuz", "sodium", "sodyum", "fiber", "lif", "fibre",
	"saturated", "doymuş", "trans", "saturates", "doymamış",
	"cholesterol", "kolesterol", "calcium", "kalsiyum",
	"iron", "demir", "vitamin", "mineral",
}

var defaultCellPatterns = map[string][]string{
	"energy_kj":     {`enerji.*kj`, `energy.*kj`},
	"energy_kcal":   {`enerji.*kcal`, `energy.*kcal`, `kalori`, `calories`},
	"saturated_fat": {`doymuş.*yağ`, `saturated.*fat`},
	"fat":           {`yağ`, `fat`},
	"carbohydrates": {`karbonhidrat`, `carbohydrate`},
	"sugars":        {`şeker`, `sugar`},
	"fiber":         {`lif`, `fiber`, `fibre`},
	"proteins":      {`protein`},
	"salt":          {`tuz`, `salt`},
	"sodium":        {`sodyum`, `sodium`},
}

const num = `(\d+(?:[.,]\d+)?)`

var defaultTextPatterns = map[string][]string{
	"energy_kj": {
		`enerji[:\s]*` + num + `\s*kj`,
		`energy[:\s]*` + num + `\s*kj`,
		`kj[:\s]*` + num,
	},
	"energy_kcal": {
		`enerji[:\s]*` + num + `\s*k?cal`,
		`energy[:\s]*` + num + `\s*k?cal`,
		`kalori[:\s]*` + num,
		`calories[:\s]*` + num,
		`kcal[:\s]*` + num,
	},
	"saturated_fat": {
		`doymuş\s+yağ[:\s]*` + num + `\s*g`,
		`saturated\s+fat[:\s]*` + num + `\s*g`,
		`doymuş[:\s]*` + num + `\s*g`,
	},
	"fat": {
		`yağ[:\s]*` + num + `\s*g`,
		`fat[:\s]*` + num + `\s*g`,
		`total\s+fat[:\s]*` + num + `\s*g`,
		`toplam\s+yağ[:\s]*` + num + `\s*g`,
	},
	"carbohydrates": {
		`karbonhidrat[:\s]*` + num + `\s*g`,
		`carbohydrate[:\s]*` + num + `\s*g`,
		`karb[:\s]*` + num + `\s*g`,
		`carbs?[:\s]*` + num + `\s*g`,
	},
	"sugars": {
		`şeker[:\s]*` + num + `\s*g`,
		`sugar[:\s]*` + num + `\s*g`,
	},
	"fiber": {
		`lif[:\s]*` + num + `\s*g`,
		`fiber[:\s]*` + num + `\s*g`,
		`fibre[:\s]*` + num + `\s*g`,
	},
	"proteins": {
		`protein[:\s]*` + num + `\s*g`,
	},
	"salt": {
		`tuz[:\s]*` + num + `\s*g`,
		`salt[:\s]*` + num + `\s*g`,
	},
	"sodium": {
		`sodyum[:\s]*` + num + `\s*mg`,
		`sodium[:\s]*` + num + `\s*mg`,
	},
}

// DefaultKeywords returns the built-in multilingual tables.
func DefaultKeywords() *Keywords {
	kw := &Keywords{
		TableHeaders:  defaultTableHeaders,
		NutrientNames: defaultNutrientNames,
		CellPatterns:  make(map[string][]*regexp.Regexp, len(defaultCellPatterns)),
		TextPatterns:  make(map[string][]*regexp.Regexp, len(defaultTextPatterns)),
	}
	for key, patterns := range defaultCellPatterns {
		kw.CellPatterns[key] = mustCompileAll(patterns)
	}
	for key, patterns := range defaultTextPatterns {
		kw.TextPatterns[key] = mustCompileAll(patterns)
	}
	return kw
}

// LoadKeywords returns the defaults merged with an optional YAML override
// file. Sections present in the file replace the corresponding defaults.
func LoadKeywords(path string) (*Keywords, error) {
	kw := DefaultKeywords()
	if path == "" {
		return kw, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: operator-provided keyword file
	if err != nil {
		return nil, fmt.Errorf("reading keyword file: %w", err)
	}
	var file keywordFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing keyword file: %w", err)
	}

	if len(file.TableHeaders) > 0 {
		kw.TableHeaders = file.TableHeaders
	}
	if len(file.NutrientNames) > 0 {
		kw.NutrientNames = file.NutrientNames
	}
	for key, patterns := range file.CellPatterns {
		compiled, err := compileAll(patterns)
		if err != nil {
			return nil, fmt.Errorf("cell pattern for %q: %w", key, err)
		}
		kw.CellPatterns[key] = compiled
	}
	for key, patterns := range file.TextPatterns {
		compiled, err := compileAll(patterns)
		if err != nil {
			return nil, fmt.Errorf("text pattern for %q: %w", key, err)
		}
		kw.TextPatterns[key] = compiled
	}
	return kw, nil
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(`(?i)` + p)
		if err != nil {
			return nil, err
		}
		out = append(out, re)
	}
	return out, nil
}

func mustCompileAll(patterns []string) []*regexp.Regexp {
	out, err := compileAll(patterns)
	if err != nil {
		panic(err)
	}
	return out
}
