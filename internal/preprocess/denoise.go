package preprocess

// denoise applies a non-local-means style filter to a luminance raster.
// Each pixel is replaced by a weighted average of pixels in a small search
// window, weighted by the similarity of their 3x3 patches. strength plays the
// role of the filtering parameter h: higher values smooth more aggressively.
func denoise(gray []uint8, w, h, strength int) []uint8 {
	if strength <= 0 || w < 5 || h < 5 {
		out := make([]uint8, len(gray))
		copy(out, gray)
		return out
	}

	const (
		patchRadius  = 1 // 3x3 patches
		searchRadius = 3 // 7x7 search window
	)
	h2 := float64(strength * strength)
	out := make([]uint8, len(gray))

	patchDistance := func(ax, ay, bx, by int) float64 {
		var sum float64
		for dy := -patchRadius; dy <= patchRadius; dy++ {
			for dx := -patchRadius; dx <= patchRadius; dx++ {
				pa := sampleClamped(gray, w, h, ax+dx, ay+dy)
				pb := sampleClamped(gray, w, h, bx+dx, by+dy)
				d := float64(pa) - float64(pb)
				sum += d * d
			}
		}
		return sum / 9.0
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var weightSum, valueSum float64
			for sy := -searchRadius; sy <= searchRadius; sy++ {
				for sx := -searchRadius; sx <= searchRadius; sx++ {
					nx, ny := x+sx, y+sy
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					dist := patchDistance(x, y, nx, ny)
					weight := fastExpNeg(dist / h2)
					weightSum += weight
					valueSum += weight * float64(gray[ny*w+nx])
				}
			}
			if weightSum > 0 {
				out[y*w+x] = uint8(valueSum/weightSum + 0.5)
			} else {
				out[y*w+x] = gray[y*w+x]
			}
		}
	}
	return out
}

func sampleClamped(gray []uint8, w, h, x, y int) uint8 {
	if x < 0 {
		x = 0
	} else if x >= w {
		x = w - 1
	}
	if y < 0 {
		y = 0
	} else if y >= h {
		y = h - 1
	}
	return gray[y*w+x]
}

// fastExpNeg approximates exp(-x) for x >= 0. The weights only need relative
// ordering, so a cheap rational approximation is enough.
func fastExpNeg(x float64) float64 {
	if x > 8 {
		return 0
	}
	// (1 + x/32)^-32 converges to exp(-x) and avoids math.Exp in the hot loop.
	v := 1 + x/32
	v *= v // ^2
	v *= v // ^4
	v *= v // ^8
	v *= v // ^16
	v *= v // ^32
	return 1 / v
}
