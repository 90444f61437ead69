// Package config loads the application configuration from files, environment
// variables and command-line flags, in that order of increasing precedence.
package config

import (
	"fmt"

	"github.com/MeKo-Tech/foodlens/internal/ocr"
	"github.com/MeKo-Tech/foodlens/internal/pipeline"
	"github.com/MeKo-Tech/foodlens/internal/preprocess"
	"github.com/MeKo-Tech/foodlens/internal/tabledetect"
	"github.com/MeKo-Tech/foodlens/internal/tablegrid"
	"github.com/MeKo-Tech/foodlens/internal/utils"
)

// Config is the complete application configuration.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`
	Language string `mapstructure:"language" yaml:"language" json:"language"`

	Preprocess PreprocessConfig `mapstructure:"preprocess" yaml:"preprocess" json:"preprocess"`
	Detect     DetectConfig     `mapstructure:"detect" yaml:"detect" json:"detect"`
	OCR        OCRConfig        `mapstructure:"ocr" yaml:"ocr" json:"ocr"`
	Grid       GridConfig       `mapstructure:"grid" yaml:"grid" json:"grid"`

	// KeywordFile optionally overrides the built-in keyword tables.
	KeywordFile string `mapstructure:"keyword_file" yaml:"keyword_file" json:"keyword_file"`
	// DebugDir, when set, receives preprocessing candidate dumps.
	DebugDir string `mapstructure:"debug_dir" yaml:"debug_dir" json:"debug_dir"`
}

// PreprocessConfig contains image preprocessing settings.
type PreprocessConfig struct {
	MaxEdge         int      `mapstructure:"max_edge" yaml:"max_edge" json:"max_edge"`
	MinEdge         int      `mapstructure:"min_edge" yaml:"min_edge" json:"min_edge"`
	Deskew          bool     `mapstructure:"deskew" yaml:"deskew" json:"deskew"`
	DeskewMinAngle  float64  `mapstructure:"deskew_min_angle" yaml:"deskew_min_angle" json:"deskew_min_angle"`
	Denoise         bool     `mapstructure:"denoise" yaml:"denoise" json:"denoise"`
	DenoiseStrength int      `mapstructure:"denoise_strength" yaml:"denoise_strength" json:"denoise_strength"`
	Variants        []string `mapstructure:"variants" yaml:"variants" json:"variants"`
}

// DetectConfig contains table-region detection settings.
type DetectConfig struct {
	MinArea         int     `mapstructure:"min_area" yaml:"min_area" json:"min_area"`
	MaxAreaFraction float64 `mapstructure:"max_area_fraction" yaml:"max_area_fraction" json:"max_area_fraction"`
	MinAspect       float64 `mapstructure:"min_aspect" yaml:"min_aspect" json:"min_aspect"`
	MaxAspect       float64 `mapstructure:"max_aspect" yaml:"max_aspect" json:"max_aspect"`
	AcceptScore     int     `mapstructure:"accept_score" yaml:"accept_score" json:"accept_score"`
	Padding         int     `mapstructure:"padding" yaml:"padding" json:"padding"`
}

// OCRConfig contains engine and fan-out settings.
type OCRConfig struct {
	ConfidenceFloor float64 `mapstructure:"confidence_floor" yaml:"confidence_floor" json:"confidence_floor"`
	Workers         int     `mapstructure:"workers" yaml:"workers" json:"workers"`
	Tesseract       bool    `mapstructure:"tesseract" yaml:"tesseract" json:"tesseract"`
	LayoutModelPath string  `mapstructure:"layout_model_path" yaml:"layout_model_path" json:"layout_model_path"`
	ONNXLibraryPath string  `mapstructure:"onnx_library_path" yaml:"onnx_library_path" json:"onnx_library_path"`
}

// GridConfig contains table-structure clustering tolerances.
type GridConfig struct {
	RowTolerance float64 `mapstructure:"row_tolerance" yaml:"row_tolerance" json:"row_tolerance"`
	ColTolerance float64 `mapstructure:"col_tolerance" yaml:"col_tolerance" json:"col_tolerance"`
}

// Default returns the built-in configuration.
func Default() Config {
	pp := preprocess.DefaultConfig()
	det := tabledetect.DefaultConfig()
	adp := ocr.DefaultAdapterConfig()
	grid := tablegrid.DefaultConfig()
	return Config{
		LogLevel: "info",
		Language: "tr",
		Preprocess: PreprocessConfig{
			MaxEdge:         pp.Resize.MaxEdge,
			MinEdge:         pp.Resize.MinEdge,
			Deskew:          pp.Deskew,
			DeskewMinAngle:  pp.DeskewMinAngle,
			Denoise:         pp.Denoise,
			DenoiseStrength: pp.DenoiseStrength,
			Variants:        pp.Variants,
		},
		Detect: DetectConfig{
			MinArea:         det.MinArea,
			MaxAreaFraction: det.MaxAreaFraction,
			MinAspect:       det.MinAspect,
			MaxAspect:       det.MaxAspect,
			AcceptScore:     det.AcceptScore,
			Padding:         det.Padding,
		},
		OCR: OCRConfig{
			ConfidenceFloor: adp.ConfidenceFloor,
			Workers:         0, // NumCPU
			Tesseract:       true,
		},
		Grid: GridConfig{
			RowTolerance: grid.RowTolerance,
			ColTolerance: grid.ColTolerance,
		},
	}
}

// Validate checks value ranges. It returns the first problem found.
func (c *Config) Validate() error {
	if c.Preprocess.MaxEdge > 0 && c.Preprocess.MinEdge > c.Preprocess.MaxEdge {
		return fmt.Errorf("preprocess: min_edge %d exceeds max_edge %d", c.Preprocess.MinEdge, c.Preprocess.MaxEdge)
	}
	if c.OCR.ConfidenceFloor < 0 || c.OCR.ConfidenceFloor > 1 {
		return fmt.Errorf("ocr: confidence_floor %v outside [0,1]", c.OCR.ConfidenceFloor)
	}
	if c.OCR.Workers < 0 {
		return fmt.Errorf("ocr: workers must not be negative")
	}
	if c.Detect.MinAspect > 0 && c.Detect.MaxAspect > 0 && c.Detect.MinAspect > c.Detect.MaxAspect {
		return fmt.Errorf("detect: min_aspect %v exceeds max_aspect %v", c.Detect.MinAspect, c.Detect.MaxAspect)
	}
	if c.Grid.RowTolerance < 0 || c.Grid.ColTolerance < 0 {
		return fmt.Errorf("grid: tolerances must not be negative")
	}
	if !c.OCR.Tesseract && c.OCR.LayoutModelPath == "" {
		return fmt.Errorf("ocr: every engine is disabled")
	}
	return nil
}

// ToPipelineConfig maps the flat application config onto the component
// configs, starting from their defaults so unset fields keep tuned values.
func (c *Config) ToPipelineConfig() pipeline.Config {
	pc := pipeline.DefaultConfig()

	if c.Language != "" {
		pc.DefaultLanguage = c.Language
	}
	pc.KeywordPath = c.KeywordFile
	pc.DebugDir = c.DebugDir

	if c.Preprocess.MaxEdge > 0 {
		pc.Preprocess.Resize = utils.ResizeLimits{MaxEdge: c.Preprocess.MaxEdge, MinEdge: c.Preprocess.MinEdge}
	}
	pc.Preprocess.Deskew = c.Preprocess.Deskew
	if c.Preprocess.DeskewMinAngle > 0 {
		pc.Preprocess.DeskewMinAngle = c.Preprocess.DeskewMinAngle
	}
	pc.Preprocess.Denoise = c.Preprocess.Denoise
	if c.Preprocess.DenoiseStrength > 0 {
		pc.Preprocess.DenoiseStrength = c.Preprocess.DenoiseStrength
	}
	if len(c.Preprocess.Variants) > 0 {
		pc.Preprocess.Variants = c.Preprocess.Variants
	}

	if c.Detect.MinArea > 0 {
		pc.Detect.MinArea = c.Detect.MinArea
	}
	if c.Detect.MaxAreaFraction > 0 {
		pc.Detect.MaxAreaFraction = c.Detect.MaxAreaFraction
	}
	if c.Detect.MinAspect > 0 {
		pc.Detect.MinAspect = c.Detect.MinAspect
	}
	if c.Detect.MaxAspect > 0 {
		pc.Detect.MaxAspect = c.Detect.MaxAspect
	}
	if c.Detect.AcceptScore > 0 {
		pc.Detect.AcceptScore = c.Detect.AcceptScore
	}
	if c.Detect.Padding > 0 {
		pc.Detect.Padding = c.Detect.Padding
	}

	if c.OCR.ConfidenceFloor > 0 {
		pc.Adapter.ConfidenceFloor = c.OCR.ConfidenceFloor
	}
	if c.OCR.Workers > 0 {
		pc.Adapter.MaxWorkers = c.OCR.Workers
	}
	pc.EnableTesseract = c.OCR.Tesseract
	if c.OCR.LayoutModelPath != "" {
		pc.EnableLayout = true
		pc.Layout.ModelPath = c.OCR.LayoutModelPath
		pc.Layout.LibraryPath = c.OCR.ONNXLibraryPath
	}

	if c.Grid.RowTolerance > 0 {
		pc.Grid.RowTolerance = c.Grid.RowTolerance
	}
	if c.Grid.ColTolerance > 0 {
		pc.Grid.ColTolerance = c.Grid.ColTolerance
	}
	return pc
}
