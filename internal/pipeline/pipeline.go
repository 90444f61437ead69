// Package pipeline wires the preprocessing, detection, OCR, mapping and
// scoring stages into the image-to-nutrition-score flow.
package pipeline

import (
	"errors"
	"log/slog"

	"github.com/MeKo-Tech/foodlens/internal/nutrient"
	"github.com/MeKo-Tech/foodlens/internal/nutriscore"
	"github.com/MeKo-Tech/foodlens/internal/ocr"
	"github.com/MeKo-Tech/foodlens/internal/preprocess"
	"github.com/MeKo-Tech/foodlens/internal/tabledetect"
	"github.com/MeKo-Tech/foodlens/internal/tablegrid"
)

// Config holds configuration for the pipeline and its components.
type Config struct {
	Preprocess preprocess.Config
	Detect     tabledetect.Config
	Adapter    ocr.AdapterConfig
	Grid       tablegrid.Config
	Layout     ocr.LayoutConfig

	// EnableTesseract / EnableLayout toggle the engines; an engine that fails
	// to initialize is skipped with a warning, and the pipeline refuses to
	// start only when no engine is left.
	EnableTesseract bool
	EnableLayout    bool

	// DefaultLanguage is the BCP-47 code assumed when a call passes none.
	DefaultLanguage string

	// KeywordPath optionally points to a YAML keyword-table override file.
	KeywordPath string

	// DebugDir, when set, receives the preprocessing candidates of every
	// analysis as PNG files under a request-unique prefix.
	DebugDir string
}

// DefaultConfig returns a pipeline config with component defaults.
func DefaultConfig() Config {
	return Config{
		Preprocess:      preprocess.DefaultConfig(),
		Detect:          tabledetect.DefaultConfig(),
		Adapter:         ocr.DefaultAdapterConfig(),
		Grid:            tablegrid.DefaultConfig(),
		Layout:          ocr.DefaultLayoutConfig(),
		EnableTesseract: true,
		EnableLayout:    false,
		DefaultLanguage: "tr",
	}
}

// Builder constructs a Pipeline with fluent configuration.
type Builder struct {
	cfg    Config
	logger *slog.Logger
}

// NewBuilder creates a pipeline builder with defaults.
func NewBuilder() *Builder { return &Builder{cfg: DefaultConfig()} }

// WithConfig replaces the whole config at once.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.cfg = cfg
	return b
}

// WithLogger sets the pipeline logger.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithLanguage sets the default OCR language.
func (b *Builder) WithLanguage(lang string) *Builder {
	if lang != "" {
		b.cfg.DefaultLanguage = lang
	}
	return b
}

// WithKeywordFile sets the keyword-table override file.
func (b *Builder) WithKeywordFile(path string) *Builder {
	b.cfg.KeywordPath = path
	return b
}

// WithLayoutModelPath enables the layout engine with the given model.
func (b *Builder) WithLayoutModelPath(path string) *Builder {
	if path != "" {
		b.cfg.EnableLayout = true
		b.cfg.Layout.ModelPath = path
	}
	return b
}

// WithWorkers caps the OCR fan-out worker pool.
func (b *Builder) WithWorkers(n int) *Builder {
	if n > 0 {
		b.cfg.Adapter.MaxWorkers = n
	}
	return b
}

// WithConfidenceFloor sets the minimum OCR confidence kept in the pool.
func (b *Builder) WithConfidenceFloor(floor float64) *Builder {
	b.cfg.Adapter.ConfidenceFloor = floor
	return b
}

// WithDebugDir enables candidate-image dumps.
func (b *Builder) WithDebugDir(dir string) *Builder {
	b.cfg.DebugDir = dir
	return b
}

// Build assembles the pipeline.
func (b *Builder) Build() (*Pipeline, error) {
	return New(b.cfg, b.logger)
}

// Pipeline is the assembled analysis flow. Safe for concurrent use; per-call
// state lives on the stack of Analyze.
type Pipeline struct {
	cfg          Config
	preprocessor *preprocess.Preprocessor
	detector     *tabledetect.Detector
	adapter      *ocr.Adapter
	tesseract    *ocr.TesseractEngine
	layout       *ocr.LayoutEngine
	keywords     *nutrient.Keywords
	calculator   *nutriscore.Calculator
	logger       *slog.Logger
}

// ErrNoEngines indicates that no OCR engine could be initialized.
var ErrNoEngines = errors.New("no OCR engine available")

// New assembles a Pipeline from cfg. Engine initialization failures are
// logged and the engine skipped; only a fully engine-less pipeline is an
// error. A nil logger falls back to slog.Default. Explicitly passed engines
// replace the configured ones, which tests use for canned OCR.
func New(cfg Config, logger *slog.Logger, engines ...ocr.Engine) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}

	kw, err := nutrient.LoadKeywords(cfg.KeywordPath)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:          cfg,
		preprocessor: preprocess.New(cfg.Preprocess),
		keywords:     kw,
		calculator:   nutriscore.New(nutriscore.Config{}),
		logger:       logger,
	}

	if len(engines) == 0 {
		engines = p.buildEngines()
	}
	if len(engines) == 0 {
		return nil, ErrNoEngines
	}

	p.adapter = ocr.NewAdapter(cfg.Adapter, engines...)

	// Table detection needs a plain-text pass for candidate scoring; any
	// engine providing one will do.
	for _, e := range engines {
		if scorer, ok := e.(tabledetect.RegionScorer); ok {
			p.detector = tabledetect.New(cfg.Detect, scorer, kw, logger)
			break
		}
	}

	logger.Info("pipeline ready",
		"engines", p.adapter.EngineNames(),
		"table_detection", p.detector != nil)
	return p, nil
}

func (p *Pipeline) buildEngines() []ocr.Engine {
	engines := make([]ocr.Engine, 0, 2)
	if p.cfg.EnableTesseract {
		tess, err := ocr.NewTesseractEngine()
		if err != nil {
			p.logger.Warn("tesseract engine unavailable", "error", err)
		} else {
			p.tesseract = tess
			engines = append(engines, tess)
		}
	}
	if p.cfg.EnableLayout {
		var recognize ocr.RecognizeFunc
		if p.tesseract != nil {
			recognize = p.tesseract.Recognize
		}
		layout, err := ocr.NewLayoutEngine(p.cfg.Layout, recognize)
		if err != nil {
			p.logger.Warn("layout engine unavailable", "error", err)
		} else {
			p.layout = layout
			engines = append(engines, layout)
		}
	}
	return engines
}

// Close releases engine resources.
func (p *Pipeline) Close() error {
	if p.layout != nil {
		return p.layout.Close()
	}
	return nil
}
