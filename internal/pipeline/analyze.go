package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/MeKo-Tech/foodlens/internal/nutrient"
	"github.com/MeKo-Tech/foodlens/internal/nutriscore"
	"github.com/MeKo-Tech/foodlens/internal/ocr"
	"github.com/MeKo-Tech/foodlens/internal/tablegrid"
	"github.com/MeKo-Tech/foodlens/internal/utils"
	"github.com/disintegration/imaging"
)

// Sentinel errors for the two unrecoverable analysis failures. Everything
// else degrades: failing engines, preprocessing steps and detection all fall
// back to weaker paths.
var (
	ErrImageRead      = errors.New("image could not be read")
	ErrNoTextDetected = errors.New("no text detected in image")
)

// maxOCRConfidence caps the coverage-derived confidence; OCR extraction is
// never treated as certain.
const maxOCRConfidence = 0.95

// Analyze runs the full flow on encoded image bytes and returns the scored
// result. lang is a BCP-47 code; empty means the configured default.
func (p *Pipeline) Analyze(ctx context.Context, data []byte, lang string) (Result, error) {
	ext, err := p.extract(ctx, data, lang)
	if err != nil {
		return Result{}, err
	}
	return p.score(ext), nil
}

// AnalyzeFile is Analyze for an image on disk.
func (p *Pipeline) AnalyzeFile(ctx context.Context, path string, lang string) (Result, error) {
	if !utils.IsSupportedImage(path) {
		return Result{}, fmt.Errorf("%w: unsupported file type %q", ErrImageRead, filepath.Ext(path))
	}
	data, err := os.ReadFile(path) //nolint:gosec // G304: caller-provided image path
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrImageRead, err)
	}
	return p.Analyze(ctx, data, lang)
}

// Debug runs extraction only and returns the raw intermediate state: the
// combined OCR text, per-nutrient raw values and diagnostics, without
// validation or scoring. Used for tuning keyword tables.
func (p *Pipeline) Debug(ctx context.Context, data []byte, lang string) (Extraction, error) {
	ext, err := p.extract(ctx, data, lang)
	if err != nil {
		return Extraction{}, err
	}
	return Extraction{
		CombinedText: ext.combined,
		RawValues:    ext.values,
		Ingredients:  nutrient.ExtractIngredients(ext.combined),
		Diagnostics:  ext.diag,
	}, nil
}

// extraction is the shared intermediate state between extract and score.
type extraction struct {
	values   map[string]float64
	combined string
	diag     Diagnostics
}

// extract decodes, preprocesses, detects the table and pools OCR results.
// The structured table path and the whole-image OCR pass run concurrently;
// the free-text extractor fills in whatever the table path missed.
func (p *Pipeline) extract(ctx context.Context, data []byte, lang string) (extraction, error) {
	start := time.Now()
	if lang == "" {
		lang = p.cfg.DefaultLanguage
	}

	img, format, err := utils.DecodeImage(data)
	if err != nil {
		analysesTotal.WithLabelValues("decode_error").Inc()
		return extraction{}, fmt.Errorf("%w: %w", ErrImageRead, err)
	}
	meta := utils.DescribeImage(img, format, len(data))
	p.logger.Debug("image decoded",
		"format", meta.Format, "width", meta.Width, "height", meta.Height)

	prepStart := time.Now()
	candidates, degraded := p.preprocessor.Candidates(img)
	stageDuration.WithLabelValues("preprocess").Observe(time.Since(prepStart).Seconds())
	p.dumpCandidates(candidates)

	// Table detection and whole-image OCR are independent; run them in
	// parallel. The whole-image text is always needed for ingredients and as
	// the fallback extractor.
	type detection struct {
		crop  image.Image
		found bool
		err   error
	}
	detCh := make(chan detection, 1)
	go func() {
		if p.detector == nil {
			detCh <- detection{}
			return
		}
		detStart := time.Now()
		crop, _, found, err := p.detector.Detect(ctx, candidates[0], lang)
		stageDuration.WithLabelValues("detect").Observe(time.Since(detStart).Seconds())
		tableDetections.WithLabelValues(boolLabel(found)).Inc()
		detCh <- detection{crop: crop, found: found, err: err}
	}()

	ocrStart := time.Now()
	imageTexts := p.adapter.ExtractAll(ctx, candidates, lang)
	stageDuration.WithLabelValues("ocr").Observe(time.Since(ocrStart).Seconds())

	det := <-detCh
	if det.err != nil {
		p.logger.Warn("table detection failed", "error", det.err)
	}
	if err := ctx.Err(); err != nil {
		return extraction{}, err
	}

	// Detections from inside the accepted region join the main pool, so the
	// combined text includes the highest-value words.
	pooled := imageTexts
	var regionTexts []ocr.AnnotatedText
	if det.found {
		regionTexts = p.regionTexts(ctx, det.crop, lang)
		pooled = append(pooled, regionTexts...)
	}
	textsPooled.Add(float64(len(pooled)))

	combined := ocr.CombineText(pooled)

	ext := extraction{
		combined: combined,
		diag: Diagnostics{
			Image:           meta,
			Candidates:      len(candidates),
			Engines:         p.adapter.EngineNames(),
			DegradedQuality: degraded,
			TableFound:      det.found,
		},
	}

	// Grid reconstruction always runs: the pooled word boxes carry row and
	// column geometry even when no bordered region was accepted. The region
	// pass takes precedence because its crop-local detections are cleaner;
	// the two sets stay separate since their coordinate frames differ.
	values, rows, cols := p.structuredValues(regionTexts)
	if countFound(values) == 0 {
		values, rows, cols = p.structuredValues(imageTexts)
	}
	ext.values = values
	ext.diag.TableRows = rows
	ext.diag.TableCols = cols
	if countFound(values) == 0 {
		ext.diag.TableFound = false
		ext.values = nutrient.TextValues(combined, p.keywords)
	}

	if len(pooled) == 0 && combined == "" {
		analysesTotal.WithLabelValues("no_text").Inc()
		return extraction{}, ErrNoTextDetected
	}

	ext.diag.OCRConfidence = ocrConfidence(countFound(ext.values))
	ext.diag.ProcessingMs = time.Since(start).Milliseconds()
	return ext, nil
}

// regionTexts OCRs the cropped table region through the same preprocessing
// fan-out as the whole image.
func (p *Pipeline) regionTexts(ctx context.Context, crop image.Image, lang string) []ocr.AnnotatedText {
	tableCandidates, _ := p.preprocessor.Candidates(crop)
	return p.adapter.ExtractAll(ctx, tableCandidates, lang)
}

// structuredValues clusters detections into a grid and maps its cells onto
// nutrient fields.
func (p *Pipeline) structuredValues(texts []ocr.AnnotatedText) (map[string]float64, int, int) {
	if len(texts) == 0 {
		return nil, 0, 0
	}
	grid := tablegrid.Reconstruct(texts, p.cfg.Grid)
	values := nutrient.MapTable(grid, p.keywords)
	p.logger.Debug("structured extraction",
		"rows", len(grid.Rows), "cols", len(grid.Cols), "found", countFound(values))
	return values, len(grid.Rows), len(grid.Cols)
}

// score validates the extracted values, estimates the Nutri-Score and
// assesses data quality. Scoring failures become failed results, not errors.
func (p *Pipeline) score(ext extraction) Result {
	data := nutrient.FromValues(ext.values)
	ingredients := nutrient.ExtractIngredients(ext.combined)

	res := Result{
		Nutrition:   data,
		Ingredients: ingredients,
		DataQuality: nutriscore.AssessDataQuality(data, ext.diag.OCRConfidence),
		Diagnostics: ext.diag,
	}

	scored, err := p.calculator.Calculate(data, ingredients)
	if err != nil {
		p.logger.Warn("scoring failed on extracted data", "error", err)
		analysesTotal.WithLabelValues("scoring_invalid").Inc()
		res.Error = err.Error()
		return res
	}
	res.Success = true
	res.NutriScore = &scored
	// The calculator may have refined the data (FVN estimation).
	res.Nutrition = scored.Nutrition

	analysesTotal.WithLabelValues("ok").Inc()
	p.logger.Info("analysis complete",
		"grade", scored.Grade, "score", scored.Score,
		"food_type", scored.FoodType,
		"table_found", ext.diag.TableFound,
		"processing_ms", ext.diag.ProcessingMs)
	return res
}

// ocrConfidence derives an extraction confidence from nutrient coverage.
func ocrConfidence(found int) float64 {
	conf := float64(found)/float64(len(nutrient.Keys))*0.8 + 0.2
	if conf > maxOCRConfidence {
		conf = maxOCRConfidence
	}
	return conf
}

func countFound(values map[string]float64) int {
	n := 0
	for _, v := range values {
		if v > 0 {
			n++
		}
	}
	return n
}

// dumpCandidates writes the preprocessing candidates as PNGs for inspection.
// Best effort; failures are logged and ignored.
func (p *Pipeline) dumpCandidates(candidates []image.Image) {
	if p.cfg.DebugDir == "" {
		return
	}
	prefix := fmt.Sprintf("req-%d", time.Now().UnixNano())
	if err := os.MkdirAll(p.cfg.DebugDir, 0o750); err != nil {
		p.logger.Warn("creating debug dir failed", "error", err)
		return
	}
	for i, img := range candidates {
		path := filepath.Join(p.cfg.DebugDir, fmt.Sprintf("%s-candidate-%02d.png", prefix, i))
		if err := imaging.Save(img, path); err != nil {
			p.logger.Warn("saving debug image failed", "path", path, "error", err)
		}
	}
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
