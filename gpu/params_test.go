package gpu

import (
	"math"
	"testing"
	"unsafe"
)

// The parameter block is a wire contract with the kernel: 64 bytes,
// fields at fixed std140 offsets.
func TestKernelParamsLayout(t *testing.T) {
	var kp kernelParams
	if got := unsafe.Sizeof(kp); got != 64 {
		t.Fatalf("kernelParams size = %d, want 64", got)
	}
	offsets := map[string]uintptr{
		"Width":         unsafe.Offsetof(kp.Width),
		"Height":        unsafe.Offsetof(kp.Height),
		"Dt":            unsafe.Offsetof(kp.Dt),
		"Dx":            unsafe.Offsetof(kp.Dx),
		"Dy":            unsafe.Offsetof(kp.Dy),
		"Gravity":       unsafe.Offsetof(kp.Gravity),
		"PipeArea":      unsafe.Offsetof(kp.PipeArea),
		"Ks":            unsafe.Offsetof(kp.Ks),
		"Kd":            unsafe.Offsetof(kp.Kd),
		"Kc":            unsafe.Offsetof(kp.Kc),
		"Ke":            unsafe.Offsetof(kp.Ke),
		"MinSlopeSine":  unsafe.Offsetof(kp.MinSlopeSine),
		"RainIntensity": unsafe.Offsetof(kp.RainIntensity),
	}
	want := map[string]uintptr{
		"Width":         0,
		"Height":        4,
		"Dt":            16,
		"Dx":            20,
		"Dy":            24,
		"Gravity":       28,
		"PipeArea":      32,
		"Ks":            36,
		"Kd":            40,
		"Kc":            44,
		"Ke":            48,
		"MinSlopeSine":  52,
		"RainIntensity": 56,
	}
	for name, w := range want {
		if offsets[name] != w {
			t.Errorf("offset of %s = %d, want %d", name, offsets[name], w)
		}
	}
}

func TestPackParams(t *testing.T) {
	p := DefaultParams()
	kp := packParams(p, 640, 480)
	if kp.Width != 640 || kp.Height != 480 {
		t.Fatalf("dimensions not packed: %dx%d", kp.Width, kp.Height)
	}
	if kp.Dt != p.Dt || kp.RainIntensity != p.RainIntensity || kp.MinSlopeSine != p.MinSlopeSine {
		t.Fatal("constants not packed")
	}
	if kp.Pad0 != 0 || kp.Pad1 != 0 || kp.Pad2 != 0 {
		t.Fatal("padding must be zero")
	}
}

// A flat 0.5 grid survives the meters round-trip used at init and
// readback within float tolerance.
func TestHeightScaleRoundTrip(t *testing.T) {
	const scale = 120.0
	in := make([]float32, 64)
	for i := range in {
		in[i] = 0.5
	}
	out := metersToHeight(heightToMeters(in, scale), scale)
	for i, v := range out {
		if math.Abs(float64(v-0.5)) > 1e-6 {
			t.Fatalf("round trip at %d: %v", i, v)
		}
	}
}

func TestMetersToHeightClamps(t *testing.T) {
	out := metersToHeight([]float32{-10, 0, 60, 130}, 120)
	if out[0] != 0 {
		t.Errorf("negative meters should clamp to 0, got %v", out[0])
	}
	if out[3] != 1 {
		t.Errorf("overheight meters should clamp to 1, got %v", out[3])
	}
	if out[2] != 0.5 {
		t.Errorf("60m at scale 120 should decode to 0.5, got %v", out[2])
	}
}
