package utils

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ImageProcessingError represents errors that can occur during image processing.
type ImageProcessingError struct {
	Operation string
	Err       error
}

func (e *ImageProcessingError) Error() string {
	return fmt.Sprintf("image processing error in %s: %v", e.Operation, e.Err)
}

func (e *ImageProcessingError) Unwrap() error { return e.Err }

// ResizeLimits bounds the longer edge of an image before recognition.
type ResizeLimits struct {
	MaxEdge int // longer edge above which the image is scaled down
	MinEdge int // floor below which the image is never scaled
}

// DefaultResizeLimits returns the default limits for label photographs.
func DefaultResizeLimits() ResizeLimits {
	return ResizeLimits{MaxEdge: 2048, MinEdge: 800}
}

// ResizeToLimit scales an image down so its longer edge fits MaxEdge,
// preserving aspect ratio. Uses box (area-averaging) resampling, which keeps
// small glyphs legible better than point sampling. Images are never upscaled,
// and never scaled below MinEdge on the longer side.
func ResizeToLimit(img image.Image, limits ResizeLimits) (image.Image, error) {
	if img == nil {
		return nil, &ImageProcessingError{Operation: "resize", Err: errors.New("input image is nil")}
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, &ImageProcessingError{Operation: "resize", Err: errors.New("invalid image dimensions")}
	}

	longer := w
	if h > longer {
		longer = h
	}
	if limits.MaxEdge <= 0 || longer <= limits.MaxEdge {
		return img, nil
	}

	target := limits.MaxEdge
	if target < limits.MinEdge {
		target = limits.MinEdge
	}
	scale := float64(target) / float64(longer)
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}
	return imaging.Resize(img, newW, newH, imaging.Box), nil
}

// ToGrayscale converts an image to a flat 8-bit luminance raster.
func ToGrayscale(img image.Image) ([]uint8, int, int, error) {
	if img == nil {
		return nil, 0, 0, &ImageProcessingError{Operation: "grayscale", Err: errors.New("input image is nil")}
	}
	gray := imaging.Grayscale(img)
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	pix := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// NRGBA with R==G==B after Grayscale; red channel is the luma.
			pix[y*w+x] = gray.Pix[gray.PixOffset(x, y)]
		}
	}
	return pix, w, h, nil
}

// GrayToImage wraps a luminance raster back into an image.Gray.
func GrayToImage(pix []uint8, w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	copy(img.Pix, pix)
	return img
}

// CropPadded crops a rectangle from the image with an extra margin on each
// side, clamped to the image bounds.
func CropPadded(img image.Image, rect image.Rectangle, padding int) (image.Image, error) {
	if img == nil {
		return nil, &ImageProcessingError{Operation: "crop", Err: errors.New("input image is nil")}
	}
	b := img.Bounds()
	padded := image.Rect(rect.Min.X-padding, rect.Min.Y-padding, rect.Max.X+padding, rect.Max.Y+padding)
	padded = padded.Intersect(b)
	if padded.Empty() {
		return nil, &ImageProcessingError{Operation: "crop", Err: fmt.Errorf("crop rectangle %v outside image bounds %v", rect, b)}
	}
	return imaging.Crop(img, padded), nil
}
