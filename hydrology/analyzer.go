// Package hydrology derives slope, D8 flow routing and downhill traces
// from an elevation grid, and selects the erosion stamp candidates fed
// to the control-map stamper.
package hydrology

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"terrainbaker/core"
)

// neighbor offsets for 8-connected routing, with grid-space distances.
var d8 = [8]struct {
	dx, dy int
	dist   float32
}{
	{-1, 0, 1}, {1, 0, 1}, {0, -1, 1}, {0, 1, 1},
	{-1, -1, math.Sqrt2}, {1, -1, math.Sqrt2}, {-1, 1, math.Sqrt2}, {1, 1, math.Sqrt2},
}

// Slope computes the gradient magnitude sqrt((dz/dx)^2+(dz/dy)^2) by
// central differences, with dx,dy the physical cell spacing. Edge cells
// clamp to the nearest interior neighbor; there is no wraparound.
func Slope(elev *core.ScalarGrid, dx, dy float32) *core.ScalarGrid {
	w, h := elev.W, elev.H
	out := core.NewScalarGrid(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			x0, x1 := max(x-1, 0), min(x+1, w-1)
			y0, y1 := max(y-1, 0), min(y+1, h-1)
			gx := (elev.At(x1, y) - elev.At(x0, y)) / (float32(x1-x0) * dx)
			gy := (elev.At(x, y1) - elev.At(x, y0)) / (float32(y1-y0) * dy)
			out.Set(x, y, float32(math.Sqrt(float64(gx*gx+gy*gy))))
		}
	}
	return out
}

// FlowDirections returns, per cell, the index of its unique downstream
// cell: the strictly lower 8-neighbor with the steepest descent
// (drop over distance). Pits (no lower neighbor) get -1.
func FlowDirections(elev *core.ScalarGrid) []int32 {
	w, h := elev.W, elev.H
	down := make([]int32, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			here := elev.At(x, y)
			best := int32(-1)
			var bestSlope float32
			for _, n := range d8 {
				nx, ny := x+n.dx, y+n.dy
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				drop := here - elev.At(nx, ny)
				if drop <= 0 {
					continue
				}
				if s := drop / n.dist; s > bestSlope {
					bestSlope = s
					best = int32(ny*w + nx)
				}
			}
			down[y*w+x] = best
		}
	}
	return down
}

// FlowAccumulation routes one unit of flow per cell down its D8
// direction. Cells are processed in strictly descending elevation order,
// so every cell is finalized before it contributes downstream; flow only
// moves to strictly lower cells, which keeps the dependency graph
// acyclic and lets a single sweep suffice. Ties on plateaus break
// arbitrarily by sort order.
func FlowAccumulation(elev *core.ScalarGrid) *core.ScalarGrid {
	w, h := elev.W, elev.H
	down := FlowDirections(elev)

	order := make([]int32, w*h)
	for i := range order {
		order[i] = int32(i)
	}
	sort.Slice(order, func(a, b int) bool {
		return elev.Data[order[a]] > elev.Data[order[b]]
	})

	acc := core.NewScalarGrid(w, h)
	acc.Fill(1)
	for _, i := range order {
		if d := down[i]; d >= 0 {
			acc.Data[d] += acc.Data[i]
		}
	}
	return acc
}

// TraceDownhill walks from a world-space seed to the lowest of each
// cell's 8 neighbors, requiring strict improvement each step, for at
// most maxSteps steps. The walk ends early at a local minimum. The
// returned path is ordered from the seed downward.
func TraceDownhill(elev *core.ScalarGrid, rect core.WorldRect, seed mgl32.Vec2, maxSteps int) []mgl32.Vec2 {
	x, y, ok := rect.WorldToCell(elev, seed)
	if !ok {
		return nil
	}
	path := []mgl32.Vec2{rect.CellToWorld(elev, x, y)}
	for step := 0; step < maxSteps; step++ {
		here := elev.At(x, y)
		bx, by := -1, -1
		lowest := here
		for _, n := range d8 {
			nx, ny := x+n.dx, y+n.dy
			if nx < 0 || ny < 0 || nx >= elev.W || ny >= elev.H {
				continue
			}
			if v := elev.At(nx, ny); v < lowest {
				lowest = v
				bx, by = nx, ny
			}
		}
		if bx < 0 {
			break // local minimum
		}
		x, y = bx, by
		path = append(path, rect.CellToWorld(elev, x, y))
	}
	return path
}
