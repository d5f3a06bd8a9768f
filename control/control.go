// Package control holds the per-cell erosion control maps and the
// radial-falloff stamper that writes preset multiplier tuples into them.
package control

import (
	"github.com/go-gl/mathgl/mgl32"

	"terrainbaker/core"
	"terrainbaker/hydrology"
)

// Neutral channel values. Grid A packs (rainMult, erosionMult,
// depositionMult, capacityMult); grid B packs (evaporationMult,
// pipeAreaMult, slopeBiasAdd, maskWeight).
var (
	NeutralA = mgl32.Vec4{1, 1, 1, 1}
	NeutralB = mgl32.Vec4{1, 1, 0, 1}
)

// State is the pair of RGBA control grids consumed by the erosion
// kernel. It is mutated only by stamping and reset to neutral at the
// start of each bake.
type State struct {
	W, H int
	A    []mgl32.Vec4
	B    []mgl32.Vec4
}

func NewState(w, h int) *State {
	s := &State{W: w, H: h, A: make([]mgl32.Vec4, w*h), B: make([]mgl32.Vec4, w*h)}
	s.Reset()
	return s
}

// Reset restores every cell to the neutral tuples.
func (s *State) Reset() {
	for i := range s.A {
		s.A[i] = NeutralA
		s.B[i] = NeutralB
	}
}

// Preset is a named pair of target tuples for the two control grids.
type Preset struct {
	A mgl32.Vec4
	B mgl32.Vec4
}

var presets = map[string]Preset{
	"default": {NeutralA, NeutralB},
	"rain_gullies": {
		A: mgl32.Vec4{1.6, 1.4, 0.8, 1.2},
		B: mgl32.Vec4{0.9, 1.0, 0.10, 1},
	},
	"alluvial_fan": {
		A: mgl32.Vec4{1.0, 0.6, 1.8, 0.7},
		B: mgl32.Vec4{1.0, 1.2, -0.05, 1},
	},
	"river_carve": {
		A: mgl32.Vec4{1.3, 1.7, 0.5, 1.5},
		B: mgl32.Vec4{0.85, 1.5, 0, 1},
	},
}

// PresetFor resolves a preset by name. Unknown names fall back to the
// neutral tuple silently.
func PresetFor(name string) Preset {
	if p, ok := presets[name]; ok {
		return p
	}
	return Preset{NeutralA, NeutralB}
}

// Falloff returns the blend weight at distance d from a stamp center:
// 1 inside radius-feather, linear to 0 at radius, 0 beyond.
func Falloff(d, radius, feather float32) float32 {
	if radius < 0 {
		radius = 0
	}
	if feather < 0 {
		feather = 0
	}
	if feather > radius {
		feather = radius
	}
	switch {
	case d >= radius:
		return 0
	case d <= radius-feather:
		return 1
	default:
		return (radius - d) / feather
	}
}

// StampCircle blends the preset targets into both grids inside a
// world-space circle. The blend is lerp(current, target, k) per channel,
// so later stamps at the same cell win in proportion to their own k.
func (s *State) StampCircle(grid *core.ScalarGrid, rect core.WorldRect, center mgl32.Vec2, radius, feather float32, p Preset) {
	if radius <= 0 {
		return
	}
	cw, ch := rect.CellSize(grid)
	// Bounding box of the circle in cell space, computed per axis so a
	// circle hanging over the rect border still covers its in-rect cells.
	x0 := int((center.X() - radius - rect.X) / cw)
	y0 := int((center.Y() - radius - rect.Y) / ch)
	x1 := int((center.X()+radius-rect.X)/cw) + 1
	y1 := int((center.Y()+radius-rect.Y)/ch) + 1
	x0, y0 = max(x0, 0), max(y0, 0)
	x1, y1 = min(x1, grid.W-1), min(y1, grid.H-1)

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			d := rect.CellToWorld(grid, x, y).Sub(center).Len()
			k := Falloff(d, radius, feather)
			if k <= 0 {
				continue
			}
			i := y*grid.W + x
			s.A[i] = lerp4(s.A[i], p.A, k)
			s.B[i] = lerp4(s.B[i], p.B, k)
		}
	}
}

// StampZone applies one zone request: a circle at its center, or the
// union of circles along its path for polyline zones. Disabled zones
// are skipped.
func (s *State) StampZone(grid *core.ScalarGrid, rect core.WorldRect, z hydrology.Zone) {
	if !z.Enabled {
		return
	}
	p := PresetFor(z.Preset)
	if len(z.Path) > 0 {
		for _, pt := range z.Path {
			s.StampCircle(grid, rect, pt, z.Radius, z.Feather, p)
		}
		return
	}
	s.StampCircle(grid, rect, z.Center, z.Radius, z.Feather, p)
}

// StampAll applies zones in order. Order matters: overlapping stamps
// blend sequentially, so callers decide which presets win by stamping
// them last.
func (s *State) StampAll(grid *core.ScalarGrid, rect core.WorldRect, zones []hydrology.Zone) {
	for _, z := range zones {
		s.StampZone(grid, rect, z)
	}
}

func lerp4(a, b mgl32.Vec4, k float32) mgl32.Vec4 {
	return mgl32.Vec4{
		a.X() + (b.X()-a.X())*k,
		a.Y() + (b.Y()-a.Y())*k,
		a.Z() + (b.Z()-a.Z())*k,
		a.W() + (b.W()-a.W())*k,
	}
}
