package preprocess

// Contrast enhancement variants. Each produces a full-range luminance raster
// suitable for feeding to an OCR engine as its own candidate.

// adaptiveThreshold binarizes using a per-pixel threshold derived from the
// local mean over a blockSize window, offset by c. Mirrors Gaussian adaptive
// thresholding closely enough for printed label text.
func adaptiveThreshold(gray []uint8, w, h, blockSize, c int) []uint8 {
	if blockSize < 3 {
		blockSize = 3
	}
	if blockSize%2 == 0 {
		blockSize++
	}
	half := blockSize / 2

	// Summed-area table for O(1) window means.
	integral := make([]int64, (w+1)*(h+1))
	for y := 0; y < h; y++ {
		var rowSum int64
		for x := 0; x < w; x++ {
			rowSum += int64(gray[y*w+x])
			integral[(y+1)*(w+1)+x+1] = integral[y*(w+1)+x+1] + rowSum
		}
	}

	out := make([]uint8, len(gray))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			x0, y0 := x-half, y-half
			x1, y1 := x+half+1, y+half+1
			if x0 < 0 {
				x0 = 0
			}
			if y0 < 0 {
				y0 = 0
			}
			if x1 > w {
				x1 = w
			}
			if y1 > h {
				y1 = h
			}
			area := int64((x1 - x0) * (y1 - y0))
			sum := integral[y1*(w+1)+x1] - integral[y0*(w+1)+x1] -
				integral[y1*(w+1)+x0] + integral[y0*(w+1)+x0]
			mean := sum / area
			if int64(gray[y*w+x]) > mean-int64(c) {
				out[y*w+x] = 255
			}
		}
	}
	return out
}

// otsuThreshold binarizes using Otsu's global threshold over the luminance
// histogram: the split maximizing between-class variance.
func otsuThreshold(gray []uint8, w, h int) []uint8 {
	out := make([]uint8, len(gray))
	if len(gray) == 0 {
		return out
	}

	var histogram [256]int
	for _, v := range gray {
		histogram[v]++
	}
	totalPixels := len(gray)

	var totalMean float64
	for i, c := range histogram {
		totalMean += float64(i) * float64(c)
	}
	totalMean /= float64(totalPixels)

	var maxVariance, sumB float64
	bestThreshold := 0
	wB := 0
	for t := 0; t < 256; t++ {
		wB += histogram[t]
		if wB == 0 {
			continue
		}
		wF := totalPixels - wB
		if wF == 0 {
			break
		}
		sumB += float64(t) * float64(histogram[t])
		meanB := sumB / float64(wB)
		meanF := (totalMean*float64(totalPixels) - sumB) / float64(wF)
		variance := float64(wB) * float64(wF) * (meanB - meanF) * (meanB - meanF)
		if variance > maxVariance {
			maxVariance = variance
			bestThreshold = t
		}
	}

	for i, v := range gray {
		if int(v) > bestThreshold {
			out[i] = 255
		}
	}
	return out
}

// equalizeLocal performs tile-wise histogram equalization with clipping,
// lifting faint text out of unevenly lit regions without blowing out noise.
func equalizeLocal(gray []uint8, w, h, tiles int, clipLimit float64) []uint8 {
	out := make([]uint8, len(gray))
	if tiles < 1 {
		tiles = 1
	}
	tileW := (w + tiles - 1) / tiles
	tileH := (h + tiles - 1) / tiles
	if tileW == 0 || tileH == 0 {
		copy(out, gray)
		return out
	}

	for ty := 0; ty < h; ty += tileH {
		for tx := 0; tx < w; tx += tileW {
			x1, y1 := tx+tileW, ty+tileH
			if x1 > w {
				x1 = w
			}
			if y1 > h {
				y1 = h
			}
			equalizeTile(gray, out, w, tx, ty, x1, y1, clipLimit)
		}
	}
	return out
}

func equalizeTile(gray, out []uint8, w, x0, y0, x1, y1 int, clipLimit float64) {
	var histogram [256]int
	count := 0
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			histogram[gray[y*w+x]]++
			count++
		}
	}
	if count == 0 {
		return
	}

	// Clip histogram peaks and redistribute the excess uniformly.
	clip := int(clipLimit * float64(count) / 256)
	if clip > 0 {
		excess := 0
		for i := range histogram {
			if histogram[i] > clip {
				excess += histogram[i] - clip
				histogram[i] = clip
			}
		}
		share := excess / 256
		for i := range histogram {
			histogram[i] += share
		}
	}

	// Cumulative mapping.
	var mapping [256]uint8
	cum := 0
	for i := range histogram {
		cum += histogram[i]
		mapping[i] = uint8(255 * cum / count)
	}
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			out[y*w+x] = mapping[gray[y*w+x]]
		}
	}
}

// stretchContrast applies a linear contrast/brightness transform:
// v' = alpha*v + beta, clamped to [0, 255].
func stretchContrast(gray []uint8, alpha float64, beta int) []uint8 {
	out := make([]uint8, len(gray))
	for i, v := range gray {
		nv := alpha*float64(v) + float64(beta)
		if nv < 0 {
			nv = 0
		} else if nv > 255 {
			nv = 255
		}
		out[i] = uint8(nv)
	}
	return out
}
