package pipeline

import (
	"github.com/MeKo-Tech/foodlens/internal/nutrient"
	"github.com/MeKo-Tech/foodlens/internal/nutriscore"
	"github.com/MeKo-Tech/foodlens/internal/utils"
)

// Diagnostics carries analysis metadata for callers and logs.
type Diagnostics struct {
	// Image describes the decoded input photo.
	Image utils.ImageMetadata `json:"image"`
	// OCRConfidence estimates extraction quality from how many nutrients were
	// actually located, capped at 0.95 since OCR is never certain.
	OCRConfidence float64 `json:"ocr_confidence"`
	// TableFound reports whether a bordered table region was detected and
	// accepted; values may still come from grid reconstruction over the
	// whole-image detections when it is false.
	TableFound bool `json:"table_found"`
	TableRows  int  `json:"table_rows,omitempty"`
	TableCols  int  `json:"table_cols,omitempty"`
	// Candidates is the number of preprocessing variants fed to OCR.
	Candidates int `json:"candidates"`
	// Engines lists the OCR engines that participated.
	Engines []string `json:"engines"`
	// DegradedQuality is set when a preprocessing step failed and the
	// analysis continued on partially processed images.
	DegradedQuality bool `json:"degraded_quality,omitempty"`
	ProcessingMs    int64 `json:"processing_ms"`
}

// Result is the full outcome of one analysis. When scoring fails on invalid
// derived input, Success is false and Error carries the reason while the
// extracted nutrition data is still returned.
type Result struct {
	Success     bool               `json:"success"`
	Error       string             `json:"error,omitempty"`
	Nutrition   nutrient.Data      `json:"nutrition_table"`
	Ingredients []string           `json:"ingredients,omitempty"`
	NutriScore  *nutriscore.Result `json:"nutri_score,omitempty"`
	DataQuality nutriscore.Quality `json:"data_quality"`
	Diagnostics Diagnostics        `json:"diagnostics"`
}

// Extraction is the debug-path payload: raw intermediate state without a
// score, for tuning keyword tables and preprocessing.
type Extraction struct {
	CombinedText string             `json:"combined_text"`
	RawValues    map[string]float64 `json:"raw_values"`
	Ingredients  []string           `json:"ingredients,omitempty"`
	Diagnostics  Diagnostics        `json:"diagnostics"`
}
