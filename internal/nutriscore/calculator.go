package nutriscore

import (
	"fmt"
	"math"
	"strings"

	"github.com/MeKo-Tech/foodlens/internal/nutrient"
)

// Grade boundaries with their display colors. Scores outside every interval
// fall through to E.
var gradeBoundaries = []GradeBoundary{
	{Grade: "A", Min: -15, Max: -1, Color: "#038141"},
	{Grade: "B", Min: 0, Max: 2, Color: "#85BB2F"},
	{Grade: "C", Min: 3, Max: 10, Color: "#FECB00"},
	{Grade: "D", Min: 11, Max: 18, Color: "#EE8100"},
	{Grade: "E", Min: 19, Max: 40, Color: "#E63312"},
}

const fallbackGrade = "E"

// Point ladders: value v scores the index of the first threshold with
// v <= threshold, or len(thresholds) when above all of them.
var (
	energyKJBounds      = []float64{335, 670, 1005, 1340, 1675, 2010, 2345, 2680, 3015, 3350}
	saturatedFatBounds  = []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	sugarSolidBounds    = []float64{4.5, 9, 13.5, 18, 22.5, 27, 31, 36, 40, 45}
	sugarBeverageBounds = []float64{0, 1.5, 3, 4.5, 6, 7.5, 9, 10.5, 12, 13.5}
	sodiumBounds        = []float64{90, 180, 270, 360, 450, 540, 630, 720, 810, 900}
	fiberBounds         = []float64{0.9, 1.9, 2.8, 3.7, 4.7}
	proteinBounds       = []float64{1.6, 3.2, 4.8, 6.4, 8.0}
)

func ladderPoints(v float64, bounds []float64) int {
	for i, b := range bounds {
		if v <= b {
			return i
		}
	}
	return len(bounds)
}

// Food-type keyword tables (multilingual).
var defaultFoodTypeKeywords = map[FoodType][]string{
	FoodTypeCheese:          {"peynir", "cheese", "fromage", "käse"},
	FoodTypeBeverage:        {"içecek", "beverage", "drink", "su", "water", "juice", "meyve suyu"},
	FoodTypeAddedFat:        {"yağ", "oil", "zeytinyağı", "olive oil", "margarin", "tereyağı", "butter"},
	FoodTypeBreakfastCereal: {"müsli", "cornflakes", "cereal", "kahvaltılık gevrek"},
}

// Keyword-classification order; map iteration would make ties
// non-deterministic.
var foodTypeOrder = []FoodType{FoodTypeCheese, FoodTypeBeverage, FoodTypeAddedFat, FoodTypeBreakfastCereal}

// Fruit, vegetable, nut and legume keywords for FVN share estimation.
var defaultFVNKeywords = [][]string{
	{ // fruits
		"meyve", "fruit", "früchte", "fruits", "elma", "apple", "portakal", "orange",
		"çilek", "strawberry", "kiraz", "cherry", "üzüm", "grape", "muz", "banana",
		"karpuz", "watermelon", "kavun", "melon", "ananas", "pineapple", "armut", "pear",
		"şeftali", "peach", "kayısı", "apricot", "erik", "plum", "kivi", "kiwi", "incir", "fig",
		"hurma", "date", "nar", "pomegranate", "böğürtlen", "blackberry", "ahududu", "raspberry",
		"yaban mersini", "blueberry", "dut", "mulberry",
	},
	{ // vegetables
		"sebze", "vegetable", "gemüse", "légumes", "domates", "tomato", "salatalık", "cucumber",
		"havuç", "carrot", "soğan", "onion", "sarımsak", "garlic", "patates", "potato",
		"patlıcan", "eggplant", "kabak", "zucchini", "biber", "pepper", "marul", "lettuce",
		"ıspanak", "spinach", "lahana", "cabbage", "brokoli", "broccoli", "karnabahar", "cauliflower",
		"pırasa", "leek", "kereviz", "celery", "turp", "radish", "bezelye", "pea",
		"fasulye", "bean", "mısır", "corn", "mantar", "mushroom", "pancar", "beet",
		"enginar", "artichoke", "kuşkonmaz", "asparagus", "bamya", "okra",
	},
	{ // nuts
		"kuruyemiş", "nuts", "nüsse", "noix", "badem", "almond", "fındık", "hazelnut",
		"ceviz", "walnut", "antep fıstığı", "pistachio", "kaju", "cashew", "yer fıstığı", "peanut",
		"çam fıstığı", "pine nut", "macadamia", "brezilya cevizi", "brazil nut", "pekan", "pecan",
	},
	{ // legumes
		"baklagil", "legume", "hülsenfrüchte", "légumineuses", "mercimek", "lentil",
		"nohut", "chickpea", "barbunya", "kidney bean", "börülce", "black-eyed pea",
		"bakla", "broad bean", "soya", "soy",
	},
}

// Config holds the calculator's static tables. Zero-value fields fall back
// to the built-in defaults.
type Config struct {
	FoodTypeKeywords map[FoodType][]string
	FVNKeywords      [][]string
}

// Calculator converts nutrition data plus an ingredient list into a
// Nutri-Score grade. Construct once and share; it holds only read-only
// configuration.
type Calculator struct {
	foodTypeKeywords map[FoodType][]string
	fvnKeywords      [][]string
}

// New creates a Calculator.
func New(cfg Config) *Calculator {
	c := &Calculator{
		foodTypeKeywords: cfg.FoodTypeKeywords,
		fvnKeywords:      cfg.FVNKeywords,
	}
	if c.foodTypeKeywords == nil {
		c.foodTypeKeywords = defaultFoodTypeKeywords
	}
	if c.fvnKeywords == nil {
		c.fvnKeywords = defaultFVNKeywords
	}
	return c
}

// Calculate computes the Nutri-Score for validated nutrition data. When the
// FVN share is unset it is estimated from the ingredient list first.
// The only error condition is structurally invalid input (NaN/Inf after
// upstream coercion); callers surface it as a failed result.
func (c *Calculator) Calculate(data nutrient.Data, ingredients []string) (Result, error) {
	if err := checkFinite(data); err != nil {
		return Result{}, err
	}

	if data.FruitsVegetablesNuts <= 0 {
		data.FruitsVegetablesNuts = c.EstimateFVNPercentage(ingredients)
	}

	foodType := c.ClassifyFoodType(ingredients, data)
	points := c.scorePoints(data, foodType)
	final := combineScore(points, foodType)

	grade, color := gradeFor(final)
	return Result{
		Grade:     grade,
		Score:     final,
		Color:     color,
		Points:    points,
		FoodType:  foodType,
		Nutrition: data,
	}, nil
}

func checkFinite(data nutrient.Data) error {
	for _, key := range append([]string{"fruits_vegetables_nuts"}, nutrient.Keys...) {
		v := data.Get(key)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("nutrition value %q is not a finite number", key)
		}
	}
	return nil
}

// scorePoints computes the per-nutrient sub-points. Beverages use denser
// sugar and FVN ladders than solid foods.
func (c *Calculator) scorePoints(data nutrient.Data, foodType FoodType) Points {
	var p Points
	p.Energy = ladderPoints(data.EnergyKJ, energyKJBounds)
	p.SaturatedFat = ladderPoints(data.SaturatedFat, saturatedFatBounds)
	if foodType == FoodTypeBeverage {
		p.Sugar = ladderPoints(data.Sugars, sugarBeverageBounds)
	} else {
		p.Sugar = ladderPoints(data.Sugars, sugarSolidBounds)
	}
	p.Sodium = ladderPoints(data.Sodium, sodiumBounds)

	fvn := data.FruitsVegetablesNuts
	if foodType == FoodTypeBeverage {
		switch {
		case fvn <= 40:
			p.FruitsVegetablesNuts = 0
		case fvn <= 60:
			p.FruitsVegetablesNuts = 2
		case fvn <= 80:
			p.FruitsVegetablesNuts = 4
		default:
			p.FruitsVegetablesNuts = 10
		}
	} else {
		switch {
		case fvn <= 40:
			p.FruitsVegetablesNuts = 0
		case fvn <= 60:
			p.FruitsVegetablesNuts = 1
		case fvn <= 80:
			p.FruitsVegetablesNuts = 2
		default:
			p.FruitsVegetablesNuts = 5
		}
	}

	p.Fiber = ladderPoints(data.Fiber, fiberBounds)
	p.Protein = ladderPoints(data.Proteins, proteinBounds)

	p.Negative = p.Energy + p.SaturatedFat + p.Sugar + p.Sodium
	p.Positive = p.FruitsVegetablesNuts + p.Fiber + p.Protein
	return p
}

// combineScore applies the food-type-specific combination rule.
func combineScore(p Points, foodType FoodType) int {
	switch foodType {
	case FoodTypeCheese:
		// Cheese is calcium-rich; fiber and FVN are excluded so low values
		// do not misclassify it.
		return p.Energy + p.SaturatedFat + p.Sodium - p.Protein
	case FoodTypeAddedFat:
		// Protein is excluded for oils and spreads.
		return p.Energy + p.SaturatedFat + p.Sugar + p.Sodium - p.FruitsVegetablesNuts - p.Fiber
	default:
		// High-negative foods with little FVN may not offset points with
		// protein; this keeps protein-heavy unhealthy foods from scoring
		// well.
		if p.Negative >= 11 && p.FruitsVegetablesNuts < 5 {
			return p.Negative - p.FruitsVegetablesNuts - p.Fiber
		}
		return p.Negative - p.Positive
	}
}

func gradeFor(score int) (string, string) {
	for _, b := range gradeBoundaries {
		if score >= b.Min && score <= b.Max {
			return b.Grade, b.Color
		}
	}
	for _, b := range gradeBoundaries {
		if b.Grade == fallbackGrade {
			return b.Grade, b.Color
		}
	}
	return fallbackGrade, ""
}

const (
	fvnMaxWeight = 100.0
	fvnMinWeight = 20.0
)

// EstimateFVNPercentage estimates the fruits/vegetables/nuts/legumes share
// from an ingredient list. Lists are ordered by descending mass, so each
// ingredient is weighted linearly from 100 (first) down to 20 (last) and
// matching ingredients contribute their weight.
func (c *Calculator) EstimateFVNPercentage(ingredients []string) float64 {
	if len(ingredients) == 0 {
		return 0
	}

	step := 0.0
	if len(ingredients) > 1 {
		step = (fvnMaxWeight - fvnMinWeight) / float64(len(ingredients)-1)
	}

	var matchedWeight, totalWeight float64
	for i, ingredient := range ingredients {
		weight := fvnMaxWeight - float64(i)*step
		totalWeight += weight
		lower := strings.ToLower(ingredient)
		for _, category := range c.fvnKeywords {
			if containsAny(lower, category) {
				matchedWeight += weight
				break
			}
		}
	}
	if totalWeight <= 0 {
		return 0
	}
	pct := matchedWeight / totalWeight * 100
	if pct > 100 {
		pct = 100
	}
	return pct
}

// ClassifyFoodType picks the scoring branch: ingredient keywords first, then
// nutrition-profile heuristics, defaulting to general food.
func (c *Calculator) ClassifyFoodType(ingredients []string, data nutrient.Data) FoodType {
	joined := strings.ToLower(strings.Join(ingredients, " "))
	if joined != "" {
		for _, ft := range foodTypeOrder {
			if containsAny(joined, c.foodTypeKeywords[ft]) {
				return ft
			}
		}
	}

	// Beverages are low in fat, protein and fiber.
	if data.Fat < 3 && data.Proteins < 4 && data.Fiber < 1 {
		return FoodTypeBeverage
	}
	// Added fats are almost entirely fat.
	if data.Fat > 80 {
		return FoodTypeAddedFat
	}
	// Cheese is high in both protein and fat.
	if data.Proteins > 15 && data.Fat > 15 {
		return FoodTypeCheese
	}
	return FoodTypeGeneral
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// essentialNutrients are the keys counted toward data completeness.
var essentialNutrients = []string{
	"energy_kcal", "fat", "saturated_fat", "carbohydrates", "sugars", "proteins", "salt",
}

// AssessDataQuality combines OCR confidence with nutritional completeness
// into a caller-facing quality signal.
func AssessDataQuality(data nutrient.Data, ocrConfidence float64) Quality {
	present := 0
	missing := make([]string, 0, len(essentialNutrients))
	for _, key := range essentialNutrients {
		if data.Get(key) > 0 {
			present++
		} else {
			missing = append(missing, key)
		}
	}

	completeness := float64(present) / float64(len(essentialNutrients)) * 100
	confidence := ocrConfidence*0.6 + completeness/100*0.4
	if confidence > 1 {
		confidence = 1
	}

	return Quality{
		Completeness:       completeness,
		Confidence:         confidence * 100,
		ManualReviewNeeded: confidence < 0.7 || completeness < 70,
		MissingNutrients:   missing,
	}
}
