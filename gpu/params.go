package gpu

// Params holds the global physical constants of the pipe-model erosion
// step plus the host-side batching and height encoding settings.
type Params struct {
	Dt            float32 // timestep, seconds
	Dx, Dy        float32 // physical cell spacing, meters
	Gravity       float32 // m/s^2
	PipeArea      float32 // virtual pipe cross-section
	Ks            float32 // erosion rate
	Kd            float32 // deposition rate
	Kc            float32 // sediment capacity constant
	Ke            float32 // evaporation rate
	MinSlopeSine  float32 // capacity floor so flat ground still erodes
	RainIntensity float32 // water added per step before the rain multiplier

	// HeightScale converts the normalized [0,1] input heightfield to
	// meters at init and back at readback. One scale per bake.
	HeightScale float32

	// BatchIterations is the number of kernel dispatches per GPU
	// submission; each batch ends in a blocking sync.
	BatchIterations int
}

// DefaultParams mirrors the stock bake tuning.
func DefaultParams() Params {
	return Params{
		Dt:              0.02,
		Dx:              1,
		Dy:              1,
		Gravity:         9.81,
		PipeArea:        20,
		Ks:              0.03,
		Kd:              0.02,
		Kc:              0.8,
		Ke:              0.015,
		MinSlopeSine:    0.05,
		RainIntensity:   0.012,
		HeightScale:     120,
		BatchIterations: 64,
	}
}

// kernelParams is the 64-byte uniform block uploaded once per batch.
// Layout is the wire contract shared with the compute kernel (std140,
// scalars only): u32 width, height, two pad words, then eleven floats
// and a trailing pad word.
type kernelParams struct {
	Width  uint32
	Height uint32
	Pad0   uint32
	Pad1   uint32

	Dt            float32
	Dx            float32
	Dy            float32
	Gravity       float32
	PipeArea      float32
	Ks            float32
	Kd            float32
	Kc            float32
	Ke            float32
	MinSlopeSine  float32
	RainIntensity float32
	Pad2          float32
}

func packParams(p Params, w, h int) kernelParams {
	return kernelParams{
		Width:         uint32(w),
		Height:        uint32(h),
		Dt:            p.Dt,
		Dx:            p.Dx,
		Dy:            p.Dy,
		Gravity:       p.Gravity,
		PipeArea:      p.PipeArea,
		Ks:            p.Ks,
		Kd:            p.Kd,
		Kc:            p.Kc,
		Ke:            p.Ke,
		MinSlopeSine:  p.MinSlopeSine,
		RainIntensity: p.RainIntensity,
	}
}

// heightToMeters encodes a normalized heightfield for upload.
func heightToMeters(data []float32, scale float32) []float32 {
	out := make([]float32, len(data))
	for i, v := range data {
		out[i] = v * scale
	}
	return out
}

// metersToHeight decodes readback data with the same scale used at init,
// clamping back into [0,1].
func metersToHeight(data []float32, scale float32) []float32 {
	out := make([]float32, len(data))
	for i, v := range data {
		n := v / scale
		if n < 0 {
			n = 0
		} else if n > 1 {
			n = 1
		}
		out[i] = n
	}
	return out
}
