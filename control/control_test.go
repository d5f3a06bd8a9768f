package control

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"terrainbaker/core"
	"terrainbaker/hydrology"
)

func TestNewStateIsNeutral(t *testing.T) {
	s := NewState(4, 4)
	for i := range s.A {
		if s.A[i] != NeutralA || s.B[i] != NeutralB {
			t.Fatalf("cell %d not neutral: A=%v B=%v", i, s.A[i], s.B[i])
		}
	}
}

func TestResetRestoresNeutral(t *testing.T) {
	s := NewState(4, 4)
	s.A[5] = mgl32.Vec4{9, 9, 9, 9}
	s.B[5] = mgl32.Vec4{9, 9, 9, 9}
	s.Reset()
	if s.A[5] != NeutralA || s.B[5] != NeutralB {
		t.Fatal("reset did not restore neutral values")
	}
}

func TestPresetFallback(t *testing.T) {
	p := PresetFor("no_such_preset")
	if p.A != NeutralA || p.B != NeutralB {
		t.Fatalf("unknown preset should be neutral, got %+v", p)
	}
	if PresetFor("river_carve").A == NeutralA {
		t.Fatal("river_carve should not be neutral")
	}
}

// k is 1 inside radius-feather, strictly decreasing across the feather
// band, 0 at and beyond the radius.
func TestFalloffMonotonic(t *testing.T) {
	const r, f = 10.0, 4.0
	if k := Falloff(0, r, f); k != 1 {
		t.Fatalf("center k = %v, want 1", k)
	}
	if k := Falloff(6, r, f); k != 1 {
		t.Fatalf("k at radius-feather = %v, want 1", k)
	}
	prev := float32(1)
	for d := float32(6.5); d < 10; d += 0.5 {
		k := Falloff(d, r, f)
		if k >= prev {
			t.Fatalf("k not strictly decreasing at d=%v: %v >= %v", d, k, prev)
		}
		if k <= 0 || k > 1 {
			t.Fatalf("k out of (0,1] inside feather at d=%v: %v", d, k)
		}
		prev = k
	}
	if k := Falloff(10, r, f); k != 0 {
		t.Fatalf("k at radius = %v, want 0", k)
	}
	if k := Falloff(15, r, f); k != 0 {
		t.Fatalf("k beyond radius = %v, want 0", k)
	}
}

func TestFalloffClampsFeather(t *testing.T) {
	// Feather wider than the radius clamps to the radius.
	if k := Falloff(5, 10, 25); k != 0.5 {
		t.Fatalf("clamped feather k = %v, want 0.5", k)
	}
	// Zero feather is a hard-edged stamp.
	if k := Falloff(9.99, 10, 0); k != 1 {
		t.Fatalf("hard edge inside radius k = %v, want 1", k)
	}
	if k := Falloff(10, 10, 0); k != 0 {
		t.Fatalf("hard edge at radius k = %v, want 0", k)
	}
}

func TestStampCircleBlendsChannels(t *testing.T) {
	grid := core.NewScalarGrid(16, 16)
	rect := core.WorldRect{W: 16, H: 16}
	s := NewState(16, 16)

	center := rect.CellToWorld(grid, 8, 8)
	s.StampCircle(grid, rect, center, 5, 2, PresetFor("river_carve"))

	ci := 8*16 + 8
	want := presets["river_carve"]
	if s.A[ci] != want.A {
		t.Fatalf("center A = %v, want full target %v", s.A[ci], want.A)
	}
	// Far corner untouched.
	if s.A[0] != NeutralA || s.B[0] != NeutralB {
		t.Fatal("stamp leaked outside its radius")
	}
}

// A circle overhanging the west or north border must still blend the
// cells it covers inside the rect.
func TestStampCircleNearBorder(t *testing.T) {
	grid := core.NewScalarGrid(64, 64)
	rect := core.WorldRect{W: 64, H: 64}
	s := NewState(64, 64)

	center := mgl32.Vec2{2, 56}
	s.StampCircle(grid, rect, center, 6, 2, PresetFor("river_carve"))

	cx, cy, ok := rect.WorldToCell(grid, center)
	if !ok {
		t.Fatal("stamp center should map to a grid cell")
	}
	ci := cy*64 + cx
	want := presets["river_carve"]
	if s.A[ci] != want.A || s.B[ci] != want.B {
		t.Fatalf("cell under border stamp stayed A=%v B=%v, want full target", s.A[ci], s.B[ci])
	}
	// Far side of the grid untouched.
	if s.A[63] != NeutralA {
		t.Fatal("border stamp leaked across the grid")
	}

	// A circle entirely outside the rect stamps nothing.
	s.Reset()
	s.StampCircle(grid, rect, mgl32.Vec2{-20, -20}, 6, 2, PresetFor("river_carve"))
	for i := range s.A {
		if s.A[i] != NeutralA {
			t.Fatal("out-of-rect stamp must not touch the grid")
		}
	}
}

// Overlapping stamps blend sequentially: the later stamp wins in
// proportion to its own weight, so order changes the result.
func TestStampOrderMatters(t *testing.T) {
	grid := core.NewScalarGrid(16, 16)
	rect := core.WorldRect{W: 16, H: 16}
	center := rect.CellToWorld(grid, 8, 8)

	riverFirst := NewState(16, 16)
	riverFirst.StampCircle(grid, rect, center, 6, 3, PresetFor("river_carve"))
	riverFirst.StampCircle(grid, rect, center, 6, 3, PresetFor("alluvial_fan"))

	fanFirst := NewState(16, 16)
	fanFirst.StampCircle(grid, rect, center, 6, 3, PresetFor("alluvial_fan"))
	fanFirst.StampCircle(grid, rect, center, 6, 3, PresetFor("river_carve"))

	ci := 8*16 + 8
	if riverFirst.A[ci] == fanFirst.A[ci] {
		t.Fatal("stamp order should affect the blended result")
	}
	// At full weight the last stamp overwrites outright.
	if riverFirst.A[ci] != presets["alluvial_fan"].A {
		t.Fatalf("center should hold the last stamp's target, got %v", riverFirst.A[ci])
	}
}

func TestStampZonePolylineAndDisabled(t *testing.T) {
	grid := core.NewScalarGrid(32, 8)
	rect := core.WorldRect{W: 32, H: 8}
	s := NewState(32, 8)

	disabled := hydrology.Zone{Preset: "river_carve", Center: rect.CellToWorld(grid, 4, 4), Radius: 3, Feather: 1}
	s.StampZone(grid, rect, disabled)
	for i := range s.A {
		if s.A[i] != NeutralA {
			t.Fatal("disabled zone must not stamp")
		}
	}

	path := []mgl32.Vec2{
		rect.CellToWorld(grid, 6, 4),
		rect.CellToWorld(grid, 16, 4),
		rect.CellToWorld(grid, 26, 4),
	}
	s.StampZone(grid, rect, hydrology.Zone{Preset: "river_carve", Path: path, Radius: 2, Feather: 1, Enabled: true})
	want := presets["river_carve"].A
	for _, x := range []int{6, 16, 26} {
		if got := s.A[4*32+x]; got != want {
			t.Fatalf("path point x=%d not stamped: %v", x, got)
		}
	}
}
