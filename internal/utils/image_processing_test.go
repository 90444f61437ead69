package utils

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.Color) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestResizeToLimit(t *testing.T) {
	limits := DefaultResizeLimits()

	t.Run("large image scaled down", func(t *testing.T) {
		out, err := ResizeToLimit(solid(4096, 2048, color.White), limits)
		require.NoError(t, err)
		b := out.Bounds()
		assert.Equal(t, 2048, b.Dx())
		assert.Equal(t, 1024, b.Dy())
	})

	t.Run("small image untouched", func(t *testing.T) {
		src := solid(640, 480, color.White)
		out, err := ResizeToLimit(src, limits)
		require.NoError(t, err)
		assert.Equal(t, src.Bounds(), out.Bounds())
	})

	t.Run("exactly at limit untouched", func(t *testing.T) {
		out, err := ResizeToLimit(solid(2048, 100, color.White), limits)
		require.NoError(t, err)
		assert.Equal(t, 2048, out.Bounds().Dx())
	})

	t.Run("nil image", func(t *testing.T) {
		_, err := ResizeToLimit(nil, limits)
		require.Error(t, err)
		var procErr *ImageProcessingError
		require.ErrorAs(t, err, &procErr)
		assert.Equal(t, "resize", procErr.Operation)
	})
}

func TestToGrayscale(t *testing.T) {
	pix, w, h, err := ToGrayscale(solid(4, 3, color.NRGBA{R: 255, G: 255, B: 255, A: 255}))
	require.NoError(t, err)
	assert.Equal(t, 4, w)
	assert.Equal(t, 3, h)
	require.Len(t, pix, 12)
	assert.Equal(t, uint8(255), pix[0])

	pix, _, _, err = ToGrayscale(solid(2, 2, color.Black))
	require.NoError(t, err)
	assert.Equal(t, uint8(0), pix[0])
}

func TestGrayToImage_RoundTrip(t *testing.T) {
	pix := []uint8{0, 64, 128, 255}
	img := GrayToImage(pix, 2, 2)
	back, w, h, err := ToGrayscale(img)
	require.NoError(t, err)
	assert.Equal(t, 2, w)
	assert.Equal(t, 2, h)
	assert.Equal(t, pix, back)
}

func TestCropPadded(t *testing.T) {
	src := solid(100, 100, color.White)

	t.Run("padding applied", func(t *testing.T) {
		out, err := CropPadded(src, image.Rect(40, 40, 60, 60), 10)
		require.NoError(t, err)
		assert.Equal(t, 40, out.Bounds().Dx())
	})

	t.Run("clamped at image border", func(t *testing.T) {
		out, err := CropPadded(src, image.Rect(0, 0, 20, 20), 10)
		require.NoError(t, err)
		assert.Equal(t, 30, out.Bounds().Dx())
	})

	t.Run("outside bounds", func(t *testing.T) {
		_, err := CropPadded(src, image.Rect(500, 500, 600, 600), 10)
		require.Error(t, err)
	})
}

func TestDecodeImage(t *testing.T) {
	t.Run("valid png", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, png.Encode(&buf, solid(8, 8, color.White)))

		img, format, err := DecodeImage(buf.Bytes())
		require.NoError(t, err)
		assert.Equal(t, "png", format)
		assert.Equal(t, 8, img.Bounds().Dx())
	})

	t.Run("empty buffer", func(t *testing.T) {
		_, _, err := DecodeImage(nil)
		require.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, _, err := DecodeImage([]byte("not an image"))
		require.Error(t, err)
	})
}

func TestDescribeImage(t *testing.T) {
	meta := DescribeImage(solid(640, 480, color.White), "png", 1234)
	assert.Equal(t, "png", meta.Format)
	assert.Equal(t, 1234, meta.SizeBytes)
	assert.Equal(t, 640, meta.Width)
	assert.Equal(t, 480, meta.Height)
	assert.InDelta(t, 640.0/480.0, meta.AspectRatio, 0.001)
}

func TestIsSupportedImage(t *testing.T) {
	assert.True(t, IsSupportedImage("label.jpg"))
	assert.True(t, IsSupportedImage("LABEL.PNG"))
	assert.True(t, IsSupportedImage("scan.bmp"))
	assert.False(t, IsSupportedImage("doc.pdf"))
	assert.False(t, IsSupportedImage("noext"))
}
