package utils

import (
	"bytes"
	"errors"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
)

// SupportedImageExtensions lists supported file extensions for loading.
var SupportedImageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp"}

// IsSupportedImage reports whether the path has a supported image extension.
func IsSupportedImage(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range SupportedImageExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// ImageMetadata captures lightweight information about a decoded image,
// carried in the analysis diagnostics.
type ImageMetadata struct {
	Format      string  `json:"format"`
	SizeBytes   int     `json:"size_bytes"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	AspectRatio float64 `json:"aspect_ratio"`
}

// DescribeImage summarizes a decoded image and its encoded size.
func DescribeImage(img image.Image, format string, sizeBytes int) ImageMetadata {
	b := img.Bounds()
	meta := ImageMetadata{
		Format:    format,
		SizeBytes: sizeBytes,
		Width:     b.Dx(),
		Height:    b.Dy(),
	}
	if b.Dy() > 0 {
		meta.AspectRatio = float64(b.Dx()) / float64(b.Dy())
	}
	return meta
}

// DecodeImage decodes an in-memory image buffer (JPEG, PNG or BMP).
func DecodeImage(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", &ImageProcessingError{Operation: "decode", Err: errors.New("empty image buffer")}
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", &ImageProcessingError{Operation: "decode", Err: err}
	}
	return img, format, nil
}

