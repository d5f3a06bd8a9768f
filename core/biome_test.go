package core

import "testing"

func uniformGrids(w, h int, elev, moist float32) (*ScalarGrid, *ScalarGrid) {
	e := NewScalarGrid(w, h)
	e.Fill(elev)
	m := NewScalarGrid(w, h)
	m.Fill(moist)
	return e, m
}

func TestClassifyRejectsMismatchedGrids(t *testing.T) {
	e := NewScalarGrid(4, 4)
	m := NewScalarGrid(5, 4)
	if _, err := Classify(e, m, 1); err != ErrGridMismatch {
		t.Fatalf("want ErrGridMismatch, got %v", err)
	}
	if _, err := Classify(nil, m, 1); err != ErrEmptyGrid {
		t.Fatalf("want ErrEmptyGrid, got %v", err)
	}
}

// The ocean threshold is exclusive: exactly 0.08 falls through to the
// land bands.
func TestOceanBoundaryExclusive(t *testing.T) {
	if b := classifyCell(0.0799, 0.5); b != Ocean {
		t.Fatalf("0.0799 should be ocean, got %v", b)
	}
	if b := classifyCell(0.08, 0.5); b == Ocean {
		t.Fatal("elevation exactly 0.08 must not classify as ocean")
	}
}

func TestSnowBoundaryInclusive(t *testing.T) {
	if b := classifyCell(0.92, 0.0); b != Snow {
		t.Fatalf("0.92 should be snow, got %v", b)
	}
}

func TestDecisionTable(t *testing.T) {
	cases := []struct {
		e, m float32
		want Biome
	}{
		{0.02, 0.5, Ocean},
		{0.95, 0.1, Snow},
		{0.85, 0.05, Scorched},
		{0.85, 0.2, Bare},
		{0.85, 0.5, Tundra},
		{0.85, 0.9, Snow},
		{0.65, 0.2, TemperateDesert},
		{0.65, 0.5, Shrubland},
		{0.65, 0.9, Taiga},
		{0.5, 0.1, TemperateDesert},
		{0.5, 0.4, Grassland},
		{0.5, 0.6, DeciduousForest},
		{0.5, 0.95, TemperateRainForest},
		{0.2, 0.1, SubtropicalDesert},
		{0.2, 0.3, Grassland},
		{0.2, 0.5, SeasonalForest},
		{0.2, 0.9, TropicalRainForest},
	}
	for _, tc := range cases {
		if got := classifyCell(tc.e, tc.m); got != tc.want {
			t.Errorf("classify(%v, %v) = %v, want %v", tc.e, tc.m, got, tc.want)
		}
	}
}

// Beach reaches exactly thickness steps from the ocean over 4-connected
// neighbors; the ocean cell itself stays ocean.
func TestBeachBFSExactDistance(t *testing.T) {
	e, m := uniformGrids(6, 6, 0.5, 0.5)
	e.Set(0, 0, 0.02) // single ocean cell

	biomes, err := Classify(e, m, 2)
	if err != nil {
		t.Fatal(err)
	}
	if biomes.At(0, 0) != Ocean {
		t.Fatalf("ocean cell overwritten: %v", biomes.At(0, 0))
	}
	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			if x == 0 && y == 0 {
				continue
			}
			steps := x + y // 4-connected step distance from (0,0)
			got := biomes.At(x, y)
			if steps <= 2 && got != Beach {
				t.Errorf("cell (%d,%d) at distance %d should be beach, got %v", x, y, steps, got)
			}
			if steps > 2 && got == Beach {
				t.Errorf("cell (%d,%d) at distance %d must not be beach", x, y, steps)
			}
		}
	}
}

func TestBeachZeroThicknessDisablesPass(t *testing.T) {
	e, m := uniformGrids(4, 4, 0.5, 0.5)
	e.Set(0, 0, 0.02)
	biomes, err := Classify(e, m, 0)
	if err != nil {
		t.Fatal(err)
	}
	for _, b := range biomes.IDs {
		if b == Beach {
			t.Fatal("beach produced with zero thickness")
		}
	}
}

// End-to-end: a 4x4 grid with one low corner classifies the corner
// ocean, its 4-connected neighbors beach, and the rest by the midland
// table at moisture 0.5.
func TestClassifyLowCornerScenario(t *testing.T) {
	e, m := uniformGrids(4, 4, 0.5, 0.5)
	e.Set(0, 0, 0.02)

	biomes, err := Classify(e, m, 1)
	if err != nil {
		t.Fatal(err)
	}
	want := classifyCell(0.5, 0.5)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			got := biomes.At(x, y)
			switch {
			case x == 0 && y == 0:
				if got != Ocean {
					t.Errorf("corner: got %v, want Ocean", got)
				}
			case x+y == 1:
				if got != Beach {
					t.Errorf("neighbor (%d,%d): got %v, want Beach", x, y, got)
				}
			default:
				if got != want {
					t.Errorf("cell (%d,%d): got %v, want %v", x, y, got, want)
				}
			}
		}
	}
}

func TestColorImageMatchesPalette(t *testing.T) {
	g := NewBiomeGrid(2, 1)
	g.Set(0, 0, Ocean)
	g.Set(1, 0, Snow)
	img := g.ColorImage()
	if img.RGBAAt(0, 0) != Ocean.Info().Color {
		t.Error("ocean pixel does not match palette")
	}
	if img.RGBAAt(1, 0) != Snow.Info().Color {
		t.Error("snow pixel does not match palette")
	}
}
