package bake

import (
	"path/filepath"
	"testing"

	"terrainbaker/config"
	"terrainbaker/control"
	"terrainbaker/core"
)

func smallConfig() config.Settings {
	cfg := config.Default()
	cfg.Terrain.Width = 48
	cfg.Terrain.Height = 48
	cfg.Terrain.Seed = 7
	cfg.Erosion.Iterations = 0
	return cfg
}

func TestPrepareProducesConsistentSurfaces(t *testing.T) {
	prep, err := Prepare(smallConfig())
	if err != nil {
		t.Fatal(err)
	}
	w, h := prep.Elevation.W, prep.Elevation.H
	if w != 48 || h != 48 {
		t.Fatalf("unexpected grid size %dx%d", w, h)
	}
	if prep.Moisture.W != w || prep.Moisture.H != h {
		t.Fatal("moisture grid size mismatch")
	}
	if prep.Biomes.W != w || prep.Biomes.H != h {
		t.Fatal("biome grid size mismatch")
	}
	if prep.Control.W != w || prep.Control.H != h {
		t.Fatal("control grid size mismatch")
	}
	for _, id := range prep.Biomes.IDs {
		if int(id) >= core.BiomeCount {
			t.Fatalf("biome id %d outside enumeration", id)
		}
	}
}

func TestPrepareDeterministic(t *testing.T) {
	cfg := smallConfig()
	p1, err := Prepare(cfg)
	if err != nil {
		t.Fatal(err)
	}
	p2, err := Prepare(cfg)
	if err != nil {
		t.Fatal(err)
	}
	for i := range p1.Elevation.Data {
		if p1.Elevation.Data[i] != p2.Elevation.Data[i] {
			t.Fatal("elevation not deterministic")
		}
	}
	if len(p1.Zones) != len(p2.Zones) {
		t.Fatalf("zone counts differ: %d vs %d", len(p1.Zones), len(p2.Zones))
	}
	for i := range p1.Control.A {
		if p1.Control.A[i] != p2.Control.A[i] || p1.Control.B[i] != p2.Control.B[i] {
			t.Fatal("control maps not deterministic")
		}
	}
}

func TestPrepareStampsMatchZones(t *testing.T) {
	prep, err := Prepare(smallConfig())
	if err != nil {
		t.Fatal(err)
	}
	touched := 0
	for i := range prep.Control.A {
		if prep.Control.A[i] != control.NeutralA || prep.Control.B[i] != control.NeutralB {
			touched++
		}
	}
	if len(prep.Zones) == 0 && touched > 0 {
		t.Fatalf("%d cells mutated without zones", touched)
	}
	if len(prep.Zones) > 0 && touched == 0 {
		t.Fatalf("%d zones stamped but every cell is neutral", len(prep.Zones))
	}
}

func TestPrepareFromUsesSuppliedHeightfield(t *testing.T) {
	grid := core.NewScalarGrid(32, 32)
	for i := range grid.Data {
		grid.Data[i] = 0.5
	}
	prep, err := PrepareFrom(smallConfig(), grid)
	if err != nil {
		t.Fatal(err)
	}
	if prep.Elevation != grid {
		t.Fatal("resume should keep the supplied heightfield")
	}
	// Derived surfaces follow the supplied grid's size, not the config.
	if prep.Moisture.W != 32 || prep.Biomes.H != 32 {
		t.Fatal("derived surfaces should match the supplied grid")
	}
	if _, err := PrepareFrom(smallConfig(), nil); err != core.ErrEmptyGrid {
		t.Fatalf("want ErrEmptyGrid, got %v", err)
	}
}

func TestRunWithoutErosionReturnsRawHeight(t *testing.T) {
	result, err := Run(smallConfig())
	if err != nil {
		t.Fatal(err)
	}
	if result.Elevation != result.RawHeight {
		t.Fatal("zero iterations should pass the raw heightfield through")
	}
	if result.BiomeColors.Bounds().Dx() != 48 {
		t.Fatal("biome color image size mismatch")
	}
}

func TestHeightfieldRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "height.png")

	grid := core.NewScalarGrid(16, 16)
	for i := range grid.Data {
		grid.Data[i] = float32(i) / float32(len(grid.Data))
	}
	if err := SaveHeightfield(path, grid); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadHeightfield(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.W != 16 || loaded.H != 16 {
		t.Fatalf("loaded size %dx%d", loaded.W, loaded.H)
	}
	for i := range grid.Data {
		diff := grid.Data[i] - loaded.Data[i]
		if diff < 0 {
			diff = -diff
		}
		// 16-bit quantization tolerance.
		if diff > 1.0/65535+1e-6 {
			t.Fatalf("round trip at %d: wrote %v, read %v", i, grid.Data[i], loaded.Data[i])
		}
	}
}

func TestSaveHeightfieldRejectsEmpty(t *testing.T) {
	if err := SaveHeightfield(filepath.Join(t.TempDir(), "x.png"), nil); err != core.ErrEmptyGrid {
		t.Fatalf("want ErrEmptyGrid, got %v", err)
	}
}
