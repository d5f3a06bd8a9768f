// Package bake orchestrates a full terrain bake: field synthesis, biome
// classification, hydrology analysis, control-map stamping and the GPU
// erosion pass.
package bake

import (
	"fmt"
	"image"
	"log"

	"terrainbaker/config"
	"terrainbaker/control"
	"terrainbaker/core"
	"terrainbaker/gpu"
	"terrainbaker/hydrology"
)

// Result carries every output surface of one bake.
type Result struct {
	Elevation   *core.ScalarGrid // relaxed heightfield, [0,1]
	RawHeight   *core.ScalarGrid // pre-erosion heightfield
	Moisture    *core.ScalarGrid
	Biomes      *core.BiomeGrid
	BiomeColors *image.RGBA
	Zones       []hydrology.Zone
	Rect        core.WorldRect
}

// Prepared is the CPU half of a bake: everything up to the point where
// the solver takes over. Split out so servers and tests can run it
// without a GL context.
type Prepared struct {
	Elevation *core.ScalarGrid
	Moisture  *core.ScalarGrid
	Biomes    *core.BiomeGrid
	Zones     []hydrology.Zone
	Control   *control.State
	Rect      core.WorldRect
}

// Prepare runs the CPU pipeline: synthesize fields, classify biomes,
// derive hydrology, select stamp candidates and stamp the control maps
// in the documented order (gullies first, rivers last, so river carving
// wins on overlap). The control maps start from neutral every time.
func Prepare(cfg config.Settings) (*Prepared, error) {
	return prepare(cfg, nil)
}

// PrepareFrom runs the same pipeline against a pre-existing heightfield
// (a persisted bake) instead of synthesizing elevation. Moisture is
// still generated from the configured seed.
func PrepareFrom(cfg config.Settings, elev *core.ScalarGrid) (*Prepared, error) {
	if elev.Empty() {
		return nil, core.ErrEmptyGrid
	}
	return prepare(cfg, elev)
}

func prepare(cfg config.Settings, source *core.ScalarGrid) (*Prepared, error) {
	t := cfg.Terrain
	if source != nil {
		t.Width, t.Height = source.W, source.H
	}

	elev, moist := core.GenerateFields(core.FieldParams{
		Width:          t.Width,
		Height:         t.Height,
		Seed:           t.Seed,
		Kernel:         core.Kernel(t.Kernel),
		ElevFrequency:  t.ElevationFrequency,
		MoistFrequency: t.MoistureFrequency,
		OctaveWeights:  t.OctaveWeights,
		Exponent:       t.Exponent,
		Fudge:          t.Fudge,
		Island:         islandMode(t.IslandMode),
		IslandMix:      t.IslandMix,
	})
	if source != nil {
		elev = source
	}

	biomes, err := core.Classify(elev, moist, t.BeachThickness)
	if err != nil {
		return nil, err
	}

	rect := core.WorldRect{W: float32(t.WorldSize), H: float32(t.WorldSize)}
	analysis := hydrology.Analyze(elev, rect)
	params := hydrology.DefaultCandidateParams()

	zones := hydrology.FindGullyZones(elev, moist, analysis, rect, params)
	zones = append(zones, hydrology.FindFanZones(elev, analysis, rect, params)...)
	zones = append(zones, hydrology.FindRiverZones(elev, moist, biomes, analysis, rect, params)...)

	ctl := control.NewState(elev.W, elev.H)
	ctl.StampAll(elev, rect, zones)

	return &Prepared{
		Elevation: elev,
		Moisture:  moist,
		Biomes:    biomes,
		Zones:     zones,
		Control:   ctl,
		Rect:      rect,
	}, nil
}

// Run executes a complete bake. A current GL context is required when
// erosion iterations are configured.
func Run(cfg config.Settings) (*Result, error) {
	return run(cfg, nil)
}

// RunFrom executes a bake that resumes from a persisted heightfield,
// skipping elevation synthesis.
func RunFrom(cfg config.Settings, elev *core.ScalarGrid) (*Result, error) {
	if elev.Empty() {
		return nil, core.ErrEmptyGrid
	}
	return run(cfg, elev)
}

func run(cfg config.Settings, source *core.ScalarGrid) (*Result, error) {
	warnConfig(cfg)

	prep, err := prepare(cfg, source)
	if err != nil {
		return nil, err
	}
	fmt.Printf("Prepared %dx%d bake: %d stamp zones\n", prep.Elevation.W, prep.Elevation.H, len(prep.Zones))

	relaxed := prep.Elevation
	if cfg.Erosion.Iterations > 0 {
		relaxed, err = erode(prep, cfg.Erosion)
		if err != nil {
			return nil, err
		}
	}

	return &Result{
		Elevation:   relaxed,
		RawHeight:   prep.Elevation,
		Moisture:    prep.Moisture,
		Biomes:      prep.Biomes,
		BiomeColors: prep.Biomes.ColorImage(),
		Zones:       prep.Zones,
		Rect:        prep.Rect,
	}, nil
}

func erode(prep *Prepared, e config.ErosionSettings) (*core.ScalarGrid, error) {
	dx, dy := prep.Rect.CellSize(prep.Elevation)
	p := gpu.Params{
		Dt:              float32(e.Timestep),
		Dx:              dx,
		Dy:              dy,
		Gravity:         float32(e.Gravity),
		PipeArea:        float32(e.PipeArea),
		Ks:              float32(e.ErosionRate),
		Kd:              float32(e.DepositionRate),
		Kc:              float32(e.Capacity),
		Ke:              float32(e.Evaporation),
		MinSlopeSine:    float32(e.MinSlopeSine),
		RainIntensity:   float32(e.RainIntensity),
		HeightScale:     float32(e.HeightScale),
		BatchIterations: e.BatchIterations,
	}

	solver := gpu.NewSolver()
	if err := solver.Init(prep.Elevation, prep.Control, p); err != nil {
		return nil, fmt.Errorf("solver init: %w", err)
	}
	defer solver.Dispose()

	fmt.Printf("Eroding: %d iterations in batches of %d\n", e.Iterations, e.BatchIterations)
	if err := solver.Simulate(e.Iterations); err != nil {
		return nil, err
	}
	return solver.ReadHeight()
}

// warnConfig logs the recoverable configuration problems and lets the
// bake continue with degraded behavior.
func warnConfig(cfg config.Settings) {
	if cfg.Erosion.Iterations > 0 && cfg.Erosion.RainIntensity == 0 {
		log.Printf("warning: %d erosion iterations with zero rain intensity; erosion will have no effect", cfg.Erosion.Iterations)
	}
	t := cfg.Terrain
	if t.LayersPerBiome > 1 && t.TextureLayers < core.BiomeCount*t.LayersPerBiome {
		log.Printf("warning: %d texture layers cannot hold %d layers per biome; falling back to one layer per biome",
			t.TextureLayers, t.LayersPerBiome)
	}
}

func islandMode(name string) core.IslandMode {
	switch name {
	case "square":
		return core.IslandSquare
	case "radial":
		return core.IslandRadial
	}
	return core.IslandNone
}
