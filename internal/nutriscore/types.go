// Package nutriscore implements the European Nutri-Score point algorithm
// with food-type-specific rule branches. The calculator is a pure function of
// its inputs plus static configuration tables.
package nutriscore

import "github.com/MeKo-Tech/foodlens/internal/nutrient"

// FoodType selects the scoring rule branch.
type FoodType string

const (
	FoodTypeCheese          FoodType = "cheese"
	FoodTypeBeverage        FoodType = "beverage"
	FoodTypeAddedFat        FoodType = "added_fat"
	FoodTypeBreakfastCereal FoodType = "breakfast_cereal"
	FoodTypeGeneral         FoodType = "general_food"
)

// Points is the per-nutrient sub-point breakdown.
type Points struct {
	Energy               int `json:"energy_points"`
	SaturatedFat         int `json:"saturated_fat_points"`
	Sugar                int `json:"sugar_points"`
	Sodium               int `json:"sodium_points"`
	FruitsVegetablesNuts int `json:"fruits_vegetables_nuts_points"`
	Fiber                int `json:"fiber_points"`
	Protein              int `json:"protein_points"`
	Negative             int `json:"negative_points"`
	Positive             int `json:"positive_points"`
}

// Result is a computed Nutri-Score. Immutable once returned.
type Result struct {
	Grade     string        `json:"grade"`
	Score     int           `json:"score"`
	Color     string        `json:"color"`
	Points    Points        `json:"scoring_details"`
	FoodType  FoodType      `json:"food_type"`
	Nutrition nutrient.Data `json:"nutrition_data"`
}

// GradeBoundary maps a score interval to a display color.
type GradeBoundary struct {
	Grade string
	Min   int
	Max   int
	Color string
}

// Quality is the data-quality assessment attached to an analysis.
type Quality struct {
	Completeness       float64  `json:"completeness_pct"`
	Confidence         float64  `json:"confidence_pct"`
	ManualReviewNeeded bool     `json:"manual_review_needed"`
	MissingNutrients   []string `json:"missing_nutrients"`
}
