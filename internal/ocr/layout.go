package ocr

import (
	"context"
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/MeKo-Tech/foodlens/internal/utils"
	"github.com/disintegration/imaging"
	ort "github.com/yalue/onnxruntime_go"
)

// LayoutConfig configures the document-layout-aware engine.
type LayoutConfig struct {
	ModelPath     string  // DB-style text detection model (ONNX)
	LibraryPath   string  // optional ONNX Runtime shared library override
	MaskThreshold float32 // probability-map binarization threshold
	MinRegionArea int     // regions smaller than this (px) are noise
	InputName     string
	OutputName    string
}

// DefaultLayoutConfig returns defaults for the layout engine.
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		MaskThreshold: 0.3,
		MinRegionArea: 24,
		InputName:     "x",
		OutputName:    "sigmoid_0.tmp_0",
	}
}

// RecognizeFunc turns a cropped text region into text plus a confidence.
type RecognizeFunc func(ctx context.Context, img image.Image, lang string) (string, float64, error)

// LayoutEngine pairs an ONNX text-region detector with per-box recognition.
// Unlike the whole-image Tesseract pass it preserves document layout: each
// detected word box is recognized separately, giving precise geometry for
// table reconstruction. The detection session is not reentrant, so access is
// serialized; recognition of the cropped boxes runs outside the lock.
type LayoutEngine struct {
	cfg       LayoutConfig
	session   *ort.DynamicAdvancedSession
	recognize RecognizeFunc
	mu        sync.Mutex
}

var ortInitOnce sync.Once

// NewLayoutEngine loads the detection model. It returns an error when the
// model file or the ONNX runtime is unavailable; callers then leave the
// engine out of the fan-out.
func NewLayoutEngine(cfg LayoutConfig, recognize RecognizeFunc) (*LayoutEngine, error) {
	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("layout engine: no model path configured")
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("layout engine: model not found: %w", err)
	}
	if recognize == nil {
		return nil, fmt.Errorf("layout engine: no recognizer provided")
	}

	var initErr error
	ortInitOnce.Do(func() {
		if cfg.LibraryPath != "" {
			ort.SetSharedLibraryPath(cfg.LibraryPath)
		}
		if !ort.IsInitialized() {
			initErr = ort.InitializeEnvironment()
		}
	})
	if initErr != nil {
		return nil, fmt.Errorf("layout engine: initializing ONNX runtime: %w", initErr)
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{cfg.InputName}, []string{cfg.OutputName}, nil)
	if err != nil {
		return nil, fmt.Errorf("layout engine: creating session: %w", err)
	}
	return &LayoutEngine{cfg: cfg, session: session, recognize: recognize}, nil
}

// Name implements Engine.
func (e *LayoutEngine) Name() string { return "layout" }

// Close releases the detection session.
func (e *LayoutEngine) Close() error {
	if e.session == nil {
		return nil
	}
	return e.session.Destroy()
}

// Extract implements Engine: detect text regions, then recognize each crop.
func (e *LayoutEngine) Extract(ctx context.Context, img image.Image, lang string) ([]AnnotatedText, error) {
	boxes, scaleX, scaleY, err := e.detectRegions(img)
	if err != nil {
		return nil, err
	}

	var out []AnnotatedText
	for _, box := range boxes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// Map model coordinates back to the source image and crop with a
		// small margin so descenders are not clipped.
		rect := image.Rect(
			int(float64(box.MinX)*scaleX), int(float64(box.MinY)*scaleY),
			int(float64(box.MaxX+1)*scaleX), int(float64(box.MaxY+1)*scaleY))
		crop, err := utils.CropPadded(img, rect, 2)
		if err != nil {
			continue
		}
		text, conf, err := e.recognize(ctx, crop, lang)
		if err != nil || text == "" {
			continue
		}
		out = append(out, NewAnnotatedText(text, conf, RectBox(rect), e.Name()))
	}
	return out, nil
}

// detectRegions runs the detection model and extracts word-level boxes from
// the probability map.
func (e *LayoutEngine) detectRegions(img image.Image) ([]utils.Component, float64, float64, error) {
	b := img.Bounds()
	srcW, srcH := b.Dx(), b.Dy()

	// DB models expect dimensions in multiples of 32.
	netW := (srcW / 32) * 32
	netH := (srcH / 32) * 32
	if netW < 32 {
		netW = 32
	}
	if netH < 32 {
		netH = 32
	}
	scaled := imaging.Resize(img, netW, netH, imaging.Linear)
	tensorData := normalizeNCHW(scaled, netW, netH)

	input, err := ort.NewTensor(ort.NewShape(1, 3, int64(netH), int64(netW)), tensorData)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("layout engine: creating input tensor: %w", err)
	}
	defer func() { _ = input.Destroy() }()

	outputs := []ort.Value{nil}
	e.mu.Lock()
	err = e.session.Run([]ort.Value{input}, outputs)
	e.mu.Unlock()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("layout engine: inference failed: %w", err)
	}
	defer func() {
		if outputs[0] != nil {
			_ = outputs[0].Destroy()
		}
	}()

	probTensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, 0, 0, fmt.Errorf("layout engine: unexpected output tensor type")
	}
	prob := probTensor.GetData()
	if len(prob) < netW*netH {
		return nil, 0, 0, fmt.Errorf("layout engine: output size %d below %dx%d", len(prob), netW, netH)
	}

	mask := make([]bool, netW*netH)
	for i := range mask {
		if prob[i] >= e.cfg.MaskThreshold {
			mask[i] = true
		}
	}
	comps, _ := utils.ConnectedComponents(mask, netW, netH)

	boxes := comps[:0]
	for _, c := range comps {
		if c.Count >= e.cfg.MinRegionArea {
			boxes = append(boxes, c)
		}
	}
	return boxes, float64(srcW) / float64(netW), float64(srcH) / float64(netH), nil
}

// normalizeNCHW converts an image to a [1,3,H,W] float tensor scaled to [0,1].
func normalizeNCHW(img image.Image, w, h int) []float32 {
	nrgba := imaging.Clone(img)
	bounds := nrgba.Bounds()
	data := make([]float32, 3*w*h)
	for y := range h {
		for x := range w {
			r, g, b, _ := nrgba.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			idx := y*w + x
			data[idx] = float32(r>>8) / 255.0
			data[w*h+idx] = float32(g>>8) / 255.0
			data[2*w*h+idx] = float32(b>>8) / 255.0
		}
	}
	return data
}
