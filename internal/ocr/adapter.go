package ocr

import (
	"context"
	"image"
	"log/slog"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"sync"
)

// AdapterConfig configures the extraction fan-out.
type AdapterConfig struct {
	// ConfidenceFloor discards detections below this confidence. Lower than
	// typical OCR floors because nutrition tables have small dense glyphs.
	ConfidenceFloor float64
	// MaxWorkers bounds the (image, engine) fan-out pool (0 = NumCPU).
	MaxWorkers int
}

// DefaultAdapterConfig returns the default fan-out configuration.
func DefaultAdapterConfig() AdapterConfig {
	return AdapterConfig{
		ConfidenceFloor: 0.3,
		MaxWorkers:      runtime.NumCPU(),
	}
}

// Adapter fans extraction out over every image candidate and every available
// engine, pooling the normalized detections. Engines that fail are dropped
// from the pool; the pool is only empty when every source failed or produced
// nothing.
type Adapter struct {
	cfg     AdapterConfig
	engines []Engine
	logger  *slog.Logger
}

// NewAdapter creates an Adapter over the given engines. Engines unavailable
// at startup are simply not passed in.
func NewAdapter(cfg AdapterConfig, engines ...Engine) *Adapter {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = runtime.NumCPU()
	}
	return &Adapter{cfg: cfg, engines: engines, logger: slog.Default().With("component", "ocr")}
}

// EngineNames lists the registered engines.
func (a *Adapter) EngineNames() []string {
	names := make([]string, 0, len(a.engines))
	for _, e := range a.engines {
		names = append(names, e.Name())
	}
	return names
}

type extractJob struct {
	img    image.Image
	engine Engine
}

// ExtractAll runs every engine over every image concurrently and pools the
// results above the confidence floor. Results are not deduplicated here;
// duplicates carry signal for table reconstruction and are collapsed later
// during plain-text combination.
func (a *Adapter) ExtractAll(ctx context.Context, images []image.Image, lang string) []AnnotatedText {
	if len(images) == 0 || len(a.engines) == 0 {
		return nil
	}

	jobs := make(chan extractJob, len(images)*len(a.engines))
	results := make(chan []AnnotatedText, len(images)*len(a.engines))

	workers := a.cfg.MaxWorkers
	if total := len(images) * len(a.engines); workers > total {
		workers = total
	}

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				texts, err := job.engine.Extract(ctx, job.img, lang)
				if err != nil {
					a.logger.Warn("engine extraction failed, dropping source",
						"engine", job.engine.Name(), "error", err)
					continue
				}
				results <- texts
			}
		}()
	}

	for _, img := range images {
		for _, engine := range a.engines {
			jobs <- extractJob{img: img, engine: engine}
		}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	var pooled []AnnotatedText
	for texts := range results {
		for _, t := range texts {
			if t.Confidence >= a.cfg.ConfidenceFloor {
				pooled = append(pooled, t)
			}
		}
	}
	return pooled
}

var (
	// Keep word characters, digits, basic punctuation and Turkish letters.
	cleanTextRe  = regexp.MustCompile(`[^\w\s\-\.\,\%\(\)çÇğĞıİöÖşŞüÜ]`)
	multiSpaceRe = regexp.MustCompile(`\s+`)
)

// CleanText strips OCR artifacts while preserving Turkish characters and
// collapses runs of whitespace.
func CleanText(text string) string {
	text = cleanTextRe.ReplaceAllString(text, "")
	text = multiSpaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// CombineText merges pooled detections into a single text string. Detections
// are taken in confidence order and deduplicated by case-insensitive exact
// text match, keeping the highest-confidence occurrence.
func CombineText(texts []AnnotatedText) string {
	if len(texts) == 0 {
		return ""
	}

	sorted := make([]AnnotatedText, len(texts))
	copy(sorted, texts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	seen := make(map[string]struct{}, len(sorted))
	parts := make([]string, 0, len(sorted))
	for _, t := range sorted {
		clean := CleanText(t.Text)
		if len(clean) <= 1 {
			continue
		}
		key := strings.ToLower(clean)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		parts = append(parts, clean)
	}
	return strings.Join(parts, " ")
}
