package hydrology

import (
	"github.com/go-gl/mathgl/mgl32"

	"terrainbaker/core"
)

// Zone is a declarative stamp request: a preset name plus world-space
// geometry. Center is used when Path is empty; polyline zones stamp a
// circle at every path point.
type Zone struct {
	Preset  string
	Center  mgl32.Vec2
	Path    []mgl32.Vec2
	Radius  float32
	Feather float32
	Enabled bool
}

// CandidateParams holds the selection thresholds for river, fan and
// gully candidates.
type CandidateParams struct {
	RiverMinAccum    float32
	RiverSlopeMin    float32
	RiverSlopeMax    float32
	RiverMoistureMin float32
	RiverMinPathLen  int
	RiverTraceSteps  int
	RiverRadius      float32
	RiverFeather     float32

	FanMinAccum    float32
	FanSteepSlope  float32
	FanGentleSlope float32
	FanLookahead   int
	FanRadius      float32
	FanFeather     float32

	GullyMaxAccum    float32
	GullyMinSlope    float32
	GullyMaxMoisture float32
	GullyRadius      float32
	GullyFeather     float32
}

func DefaultCandidateParams() CandidateParams {
	return CandidateParams{
		RiverMinAccum:    48,
		RiverSlopeMin:    0.004,
		RiverSlopeMax:    0.35,
		RiverMoistureMin: 0.45,
		RiverMinPathLen:  6,
		RiverTraceSteps:  256,
		RiverRadius:      18,
		RiverFeather:     10,

		FanMinAccum:    32,
		FanSteepSlope:  0.18,
		FanGentleSlope: 0.05,
		FanLookahead:   6,
		FanRadius:      26,
		FanFeather:     14,

		GullyMaxAccum:    4,
		GullyMinSlope:    0.22,
		GullyMaxMoisture: 0.3,
		GullyRadius:      22,
		GullyFeather:     16,
	}
}

// Analysis bundles the derived grids the candidate passes share.
type Analysis struct {
	Slope *core.ScalarGrid
	Accum *core.ScalarGrid
	Down  []int32
}

// Analyze derives slope and flow accumulation from the elevation grid.
func Analyze(elev *core.ScalarGrid, rect core.WorldRect) *Analysis {
	dx, dy := rect.CellSize(elev)
	return &Analysis{
		Slope: Slope(elev, dx, dy),
		Accum: FlowAccumulation(elev),
		Down:  FlowDirections(elev),
	}
}

// FindRiverZones picks river seeds at local maxima of flow accumulation
// that clear the accumulation, slope and moisture gates and sit on a
// non-ocean, non-snow cell, then traces each seed downhill. Paths
// shorter than RiverMinPathLen are discarded as noise.
func FindRiverZones(elev, moist *core.ScalarGrid, biomes *core.BiomeGrid, a *Analysis, rect core.WorldRect, p CandidateParams) []Zone {
	var zones []Zone
	w, h := elev.W, elev.H
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			acc := a.Accum.At(x, y)
			if acc < p.RiverMinAccum {
				continue
			}
			if s := a.Slope.At(x, y); s < p.RiverSlopeMin || s > p.RiverSlopeMax {
				continue
			}
			if moist.At(x, y) < p.RiverMoistureMin {
				continue
			}
			if b := biomes.At(x, y); b == core.Ocean || b == core.Snow {
				continue
			}
			if !isAccumMaximum(a.Accum, a.Down, x, y) {
				continue
			}
			path := TraceDownhill(elev, rect, rect.CellToWorld(elev, x, y), p.RiverTraceSteps)
			if len(path) < p.RiverMinPathLen {
				continue
			}
			zones = append(zones, Zone{
				Preset:  "river_carve",
				Center:  path[0],
				Path:    path,
				Radius:  p.RiverRadius,
				Feather: p.RiverFeather,
				Enabled: true,
			})
		}
	}
	return zones
}

// isAccumMaximum reports whether (x,y) carries at least as much flow as
// every 8-neighbor except its own downstream cell. The downstream cell
// always carries at least this cell's flow, so including it would leave
// only pits as maxima.
func isAccumMaximum(acc *core.ScalarGrid, down []int32, x, y int) bool {
	here := acc.At(x, y)
	skip := down[y*acc.W+x]
	for _, n := range d8 {
		nx, ny := x+n.dx, y+n.dy
		if nx < 0 || ny < 0 || nx >= acc.W || ny >= acc.H {
			continue
		}
		if int32(ny*acc.W+nx) == skip {
			continue
		}
		if acc.At(nx, ny) > here {
			return false
		}
	}
	return true
}

// FindFanZones detects slope breaks: well-fed cells that are steep here
// but reach gentle ground within a short downstream lookahead. The fan
// stamp lands at the gentle end.
func FindFanZones(elev *core.ScalarGrid, a *Analysis, rect core.WorldRect, p CandidateParams) []Zone {
	var zones []Zone
	w, h := elev.W, elev.H
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if a.Accum.At(x, y) < p.FanMinAccum || a.Slope.At(x, y) < p.FanSteepSlope {
				continue
			}
			i := int32(y*w + x)
			for step := 0; step < p.FanLookahead; step++ {
				i = a.Down[i]
				if i < 0 {
					break
				}
				fx, fy := int(i)%w, int(i)/w
				if a.Slope.At(fx, fy) <= p.FanGentleSlope {
					zones = append(zones, Zone{
						Preset:  "alluvial_fan",
						Center:  rect.CellToWorld(elev, fx, fy),
						Radius:  p.FanRadius,
						Feather: p.FanFeather,
						Enabled: true,
					})
					break
				}
			}
		}
	}
	return zones
}

// FindGullyZones marks dry, steep, unchanneled terrain: low flow
// accumulation, slope above the minimum, moisture below the ceiling.
func FindGullyZones(elev, moist *core.ScalarGrid, a *Analysis, rect core.WorldRect, p CandidateParams) []Zone {
	var zones []Zone
	w, h := elev.W, elev.H
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if a.Accum.At(x, y) > p.GullyMaxAccum {
				continue
			}
			if a.Slope.At(x, y) < p.GullyMinSlope {
				continue
			}
			if moist.At(x, y) >= p.GullyMaxMoisture {
				continue
			}
			zones = append(zones, Zone{
				Preset:  "rain_gullies",
				Center:  rect.CellToWorld(elev, x, y),
				Radius:  p.GullyRadius,
				Feather: p.GullyFeather,
				Enabled: true,
			})
		}
	}
	return zones
}
