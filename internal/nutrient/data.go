// Package nutrient holds the per-100g nutrition value object and the logic
// that populates it from a reconstructed label table or from free OCR text.
package nutrient

import "math"

// Nutrient keys used in value maps, in match priority order. More specific
// names come before their substrings (saturated fat before fat) so a label
// row is attributed to the right nutrient.
var Keys = []string{
	"energy_kj",
	"energy_kcal",
	"saturated_fat",
	"fat",
	"carbohydrates",
	"sugars",
	"fiber",
	"proteins",
	"salt",
	"sodium",
}

// Data is a per-100g nutrient snapshot. All quantities are grams per 100g
// except energy (kJ/kcal), sodium (mg) and the fruits/vegetables/nuts share
// (percent).
type Data struct {
	EnergyKJ             float64 `json:"energy_kj"`
	EnergyKcal           float64 `json:"energy_kcal"`
	Fat                  float64 `json:"fat"`
	SaturatedFat         float64 `json:"saturated_fat"`
	Carbohydrates        float64 `json:"carbohydrates"`
	Sugars               float64 `json:"sugars"`
	Fiber                float64 `json:"fiber"`
	Proteins             float64 `json:"proteins"`
	Salt                 float64 `json:"salt"`
	Sodium               float64 `json:"sodium"`
	FruitsVegetablesNuts float64 `json:"fruits_vegetables_nuts"`
}

// FromValues builds a Data from a nutrient-key value mapping and runs the
// validation/normalization pass.
func FromValues(values map[string]float64) Data {
	var d Data
	for key, v := range values {
		d.set(key, v)
	}
	d.ValidateAndConvert()
	return d
}

func (d *Data) set(key string, v float64) {
	switch key {
	case "energy_kj":
		d.EnergyKJ = v
	case "energy_kcal":
		d.EnergyKcal = v
	case "fat":
		d.Fat = v
	case "saturated_fat":
		d.SaturatedFat = v
	case "carbohydrates":
		d.Carbohydrates = v
	case "sugars":
		d.Sugars = v
	case "fiber":
		d.Fiber = v
	case "proteins":
		d.Proteins = v
	case "salt":
		d.Salt = v
	case "sodium":
		d.Sodium = v
	case "fruits_vegetables_nuts":
		d.FruitsVegetablesNuts = v
	}
}

// Get returns the value for a nutrient key, 0 for unknown keys.
func (d *Data) Get(key string) float64 {
	switch key {
	case "energy_kj":
		return d.EnergyKJ
	case "energy_kcal":
		return d.EnergyKcal
	case "fat":
		return d.Fat
	case "saturated_fat":
		return d.SaturatedFat
	case "carbohydrates":
		return d.Carbohydrates
	case "sugars":
		return d.Sugars
	case "fiber":
		return d.Fiber
	case "proteins":
		return d.Proteins
	case "salt":
		return d.Salt
	case "sodium":
		return d.Sodium
	case "fruits_vegetables_nuts":
		return d.FruitsVegetablesNuts
	}
	return 0
}

// KcalToKJ converts kilocalories to kilojoules.
const KcalToKJ = 4.184

// ValidateAndConvert reconciles units, clamps values to plausible per-100g
// ranges and enforces macronutrient consistency. Data is treated as immutable
// after this pass within one analysis run.
func (d *Data) ValidateAndConvert() {
	// Energy units are mutually derivable; fill in whichever is missing.
	if d.EnergyKJ <= 0 && d.EnergyKcal > 0 {
		d.EnergyKJ = d.EnergyKcal * KcalToKJ
	} else if d.EnergyKcal <= 0 && d.EnergyKJ > 0 {
		d.EnergyKcal = d.EnergyKJ / KcalToKJ
	}

	// Salt (g) and sodium (mg) reconcile via the fixed 2.5 ratio.
	if d.Sodium <= 0 && d.Salt > 0 {
		d.Sodium = d.Salt * 400
	} else if d.Salt <= 0 && d.Sodium > 0 {
		d.Salt = d.Sodium / 1000 * 2.5
	}

	d.EnergyKcal = clampRange(d.EnergyKcal, 0, 900)
	d.Fat = clampRange(d.Fat, 0, 100)
	d.SaturatedFat = clampRange(d.SaturatedFat, 0, d.Fat)
	d.Carbohydrates = clampRange(d.Carbohydrates, 0, 100)
	d.Sugars = clampRange(d.Sugars, 0, d.Carbohydrates)
	d.Fiber = clampRange(d.Fiber, 0, 50)
	d.Proteins = clampRange(d.Proteins, 0, 100)
	d.Salt = clampRange(d.Salt, 0, 50)
	d.FruitsVegetablesNuts = clampRange(d.FruitsVegetablesNuts, 0, 100)

	// Macronutrients cannot exceed 100g per 100g; scale down proportionally,
	// including the dependent sub-quantities.
	totalMacros := d.Fat + d.Carbohydrates + d.Proteins
	if totalMacros > 100 {
		scale := 100 / totalMacros
		d.Fat *= scale
		d.Carbohydrates *= scale
		d.Proteins *= scale
		d.SaturatedFat *= scale
		d.Sugars *= scale
	}
}

// clampRange returns 0 for NaN or below-minimum values and caps at max.
func clampRange(v, minVal, maxVal float64) float64 {
	if math.IsNaN(v) || v < minVal {
		return 0
	}
	if v > maxVal {
		return maxVal
	}
	return v
}
