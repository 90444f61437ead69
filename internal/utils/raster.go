package utils

import "container/list"

// Raster helpers for binary masks shared by the deskew estimator, the table
// region detector and the layout engine postprocessing.

// SobelEdges computes a binary edge mask from a luminance raster using the
// Sobel operator. Pixels whose gradient magnitude exceeds threshold are set.
func SobelEdges(gray []uint8, w, h int, threshold int) []bool {
	mask := make([]bool, w*h)
	if w < 3 || h < 3 {
		return mask
	}
	at := func(x, y int) int { return int(gray[y*w+x]) }
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := -at(x-1, y-1) + at(x+1, y-1) +
				-2*at(x-1, y) + 2*at(x+1, y) +
				-at(x-1, y+1) + at(x+1, y+1)
			gy := -at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1) +
				at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)
			if gx < 0 {
				gx = -gx
			}
			if gy < 0 {
				gy = -gy
			}
			if gx+gy > threshold {
				mask[y*w+x] = true
			}
		}
	}
	return mask
}

// DilateMask performs binary dilation with a square kernel, bridging broken
// strokes before component extraction.
func DilateMask(mask []bool, w, h, kernelSize, iterations int) []bool {
	if kernelSize <= 1 || iterations <= 0 {
		return mask
	}
	half := kernelSize / 2
	cur := mask
	for _i := 0; _i < iterations; _i++ {
		next := make([]bool, len(cur))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				set := false
				for ky := -half; ky <= half && !set; ky++ {
					for kx := -half; kx <= half; kx++ {
						nx, ny := x+kx, y+ky
						if nx >= 0 && nx < w && ny >= 0 && ny < h && cur[ny*w+nx] {
							set = true
							break
						}
					}
				}
				next[y*w+x] = set
			}
		}
		cur = next
	}
	return cur
}

// Component holds the pixel count and axis-aligned bounds of a connected
// component in a binary mask.
type Component struct {
	Label int
	Count int
	MinX  int
	MinY  int
	MaxX  int
	MaxY  int
}

// ConnectedComponents finds 4-connected components in the mask and returns
// per-component stats plus the label raster (0 = background).
func ConnectedComponents(mask []bool, w, h int) ([]Component, []int) {
	labels := make([]int, w*h)
	var comps []Component
	label := 1

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			if mask[idx] && labels[idx] == 0 {
				comps = append(comps, componentBFS(mask, labels, w, h, x, y, label))
				label++
			}
		}
	}
	return comps, labels
}

func componentBFS(mask []bool, labels []int, w, h, startX, startY, label int) Component {
	idx := func(x, y int) int { return y*w + x }
	st := Component{Label: label, MinX: startX, MinY: startY, MaxX: startX, MaxY: startY}
	q := list.New()
	q.PushBack(idx(startX, startY))
	labels[idx(startX, startY)] = label

	dirs := [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	for q.Len() > 0 {
		e := q.Front()
		q.Remove(e)
		ci, ok := e.Value.(int)
		if !ok {
			continue
		}
		cx, cy := ci%w, ci/w
		st.Count++
		if cx < st.MinX {
			st.MinX = cx
		}
		if cx > st.MaxX {
			st.MaxX = cx
		}
		if cy < st.MinY {
			st.MinY = cy
		}
		if cy > st.MaxY {
			st.MaxY = cy
		}
		for _, d := range dirs {
			nx, ny := cx+d[0], cy+d[1]
			if nx < 0 || ny < 0 || nx >= w || ny >= h {
				continue
			}
			ni := idx(nx, ny)
			if mask[ni] && labels[ni] == 0 {
				labels[ni] = label
				q.PushBack(ni)
			}
		}
	}
	return st
}

// TraceContour extracts a boundary polygon for the given labeled component
// using Moore-Neighbor tracing restricted to the component's bounds.
// Collinear intermediate points are dropped as they are appended.
func TraceContour(labels []int, w, h int, comp Component) []Point {
	label := comp.Label
	if label <= 0 || len(labels) != w*h {
		return nil
	}
	isLabel := func(x, y int) bool {
		if x < 0 || y < 0 || x >= w || y >= h {
			return false
		}
		return labels[y*w+x] == label
	}

	// Starting boundary pixel: first labeled pixel in scan order.
	sx, sy := -1, -1
	for y := comp.MinY; y <= comp.MaxY && sx == -1; y++ {
		for x := comp.MinX; x <= comp.MaxX; x++ {
			if isLabel(x, y) {
				sx, sy = x, y
				break
			}
		}
	}
	if sx == -1 {
		return nil
	}

	pts := make([]Point, 0, 64)
	addPoint := func(x, y int) {
		p := Point{X: float64(x), Y: float64(y)}
		n := len(pts)
		if n >= 2 {
			a, b := pts[n-2], pts[n-1]
			cross := (b.X-a.X)*(p.Y-b.Y) - (b.Y-a.Y)*(p.X-b.X)
			if cross == 0 {
				pts = pts[:n-1]
			}
		}
		pts = append(pts, p)
	}

	// 8-neighborhood clockwise order: E, SE, S, SW, W, NW, N, NE.
	ndx := [8]int{1, 1, 0, -1, -1, -1, 0, 1}
	ndy := [8]int{0, 1, 1, 1, 0, -1, -1, -1}
	dirIndex := func(dx, dy int) int {
		for i := 0; i < 8; i++ {
			if ndx[i] == dx && ndy[i] == dy {
				return i
			}
		}
		return 0
	}

	cx, cy := sx, sy
	bx, by := sx-1, sy
	addPoint(cx, cy)
	maxSteps := w*h*4 + 8

	for _i := 0; _i < maxSteps; _i++ {
		start := (dirIndex(bx-cx, by-cy) + 1) % 8
		nx, ny := -1, -1
		found := false
		for k := 0; k < 8; k++ {
			i := (start + k) % 8
			tx, ty := cx+ndx[i], cy+ndy[i]
			if isLabel(tx, ty) {
				nx, ny = tx, ty
				found = true
				break
			}
			bx, by = tx, ty
		}
		if !found {
			break
		}
		bx, by = cx, cy
		cx, cy = nx, ny
		if cx == sx && cy == sy {
			break
		}
		if len(pts) == 0 || pts[len(pts)-1].X != float64(cx) || pts[len(pts)-1].Y != float64(cy) {
			addPoint(cx, cy)
		}
	}

	if len(pts) >= 2 && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}
	return pts
}
