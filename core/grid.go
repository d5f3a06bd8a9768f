package core

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
)

// Input validation failures. Callers see these before any partial output
// is produced.
var (
	ErrEmptyGrid    = errors.New("grid is nil or empty")
	ErrGridMismatch = errors.New("grid dimensions do not match")
)

// ScalarGrid is a W×H row-major array of float32 holding one semantic
// channel (elevation, moisture, slope, flow accumulation). Origin is the
// top-left cell (0,0).
type ScalarGrid struct {
	W, H int
	Data []float32
}

func NewScalarGrid(w, h int) *ScalarGrid {
	return &ScalarGrid{W: w, H: h, Data: make([]float32, w*h)}
}

func (g *ScalarGrid) At(x, y int) float32 {
	return g.Data[y*g.W+x]
}

func (g *ScalarGrid) Set(x, y int, v float32) {
	g.Data[y*g.W+x] = v
}

func (g *ScalarGrid) Fill(v float32) {
	for i := range g.Data {
		g.Data[i] = v
	}
}

func (g *ScalarGrid) Clone() *ScalarGrid {
	c := NewScalarGrid(g.W, g.H)
	copy(c.Data, g.Data)
	return c
}

// Empty reports whether the grid cannot hold at least one cell.
func (g *ScalarGrid) Empty() bool {
	return g == nil || g.W <= 0 || g.H <= 0 || len(g.Data) < g.W*g.H
}

// Validate checks a set of grids for presence and equal dimensions.
func Validate(grids ...*ScalarGrid) error {
	if len(grids) == 0 || grids[0].Empty() {
		return ErrEmptyGrid
	}
	w, h := grids[0].W, grids[0].H
	for _, g := range grids[1:] {
		if g.Empty() {
			return ErrEmptyGrid
		}
		if g.W != w || g.H != h {
			return ErrGridMismatch
		}
	}
	return nil
}

// WorldRect maps the grid onto a world-space rectangle. X,Y is the world
// position of cell (0,0); W,H the world extent covered by the full grid.
type WorldRect struct {
	X, Y float32
	W, H float32
}

// CellToWorld returns the world position of the center of cell (x,y).
func (r WorldRect) CellToWorld(g *ScalarGrid, x, y int) mgl32.Vec2 {
	return mgl32.Vec2{
		r.X + (float32(x)+0.5)/float32(g.W)*r.W,
		r.Y + (float32(y)+0.5)/float32(g.H)*r.H,
	}
}

// WorldToCell returns the cell containing the world point p, and whether
// the point lies inside the rect at all.
func (r WorldRect) WorldToCell(g *ScalarGrid, p mgl32.Vec2) (int, int, bool) {
	fx := (p.X() - r.X) / r.W * float32(g.W)
	fy := (p.Y() - r.Y) / r.H * float32(g.H)
	x, y := int(fx), int(fy)
	if fx < 0 || fy < 0 || x >= g.W || y >= g.H {
		return 0, 0, false
	}
	return x, y, true
}

// CellSize returns the world-space extent of one cell.
func (r WorldRect) CellSize(g *ScalarGrid) (float32, float32) {
	return r.W / float32(g.W), r.H / float32(g.H)
}
