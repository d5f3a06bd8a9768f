package core

import (
	"math"

	"github.com/aquilax/go-perlin"
	opensimplex "github.com/ojrac/opensimplex-go"
)

// NoiseSource is a seeded 2D coherent noise kernel. Implementations must
// be deterministic: the same seed and coordinates always produce the
// same value, in roughly [-1,1].
type NoiseSource interface {
	Eval2(x, y float64) float64
}

// Kernel selects the concrete noise algorithm.
type Kernel string

const (
	KernelSimplex Kernel = "simplex"
	KernelPerlin  Kernel = "perlin"
)

type perlinSource struct {
	p *perlin.Perlin
}

func (s perlinSource) Eval2(x, y float64) float64 {
	return s.p.Noise2D(x, y)
}

// NewSource builds the kernel named by k. Unknown names fall back to
// simplex.
func NewSource(k Kernel, seed int64) NoiseSource {
	if k == KernelPerlin {
		return perlinSource{perlin.NewPerlin(2, 2, 3, seed)}
	}
	return opensimplex.New(seed)
}

// IslandMode shapes elevation toward a falloff at the grid border.
type IslandMode int

const (
	IslandNone IslandMode = iota
	IslandSquare
	IslandRadial
)

// moistureSeedMix decorrelates the moisture field from elevation. Odd so
// that XOR never maps two seeds onto the same moisture seed pair.
const moistureSeedMix = 0x5DEECE6D

// offsets shift each octave into a distinct region of noise space. The
// table length bounds the octave count.
var offsets = [6][2]float64{
	{5.3, 9.1},
	{17.8, 23.5},
	{31.4, 7.7},
	{11.9, 41.3},
	{27.6, 13.2},
	{3.8, 35.9},
}

// FieldParams drives the procedural elevation/moisture synthesis.
type FieldParams struct {
	Width, Height int
	Seed          int64
	Kernel        Kernel

	ElevFrequency  float64
	MoistFrequency float64
	OctaveWeights  []float64

	Exponent float64 // elevation redistribution
	Fudge    float64 // pre-exponent multiplier

	Island    IslandMode
	IslandMix float64
}

// GenerateFields synthesizes the elevation and moisture grids. Grids
// smaller than 2×2 are clamped up. Identical params produce bit-identical
// output.
func GenerateFields(p FieldParams) (elev, moist *ScalarGrid) {
	w, h := p.Width, p.Height
	if w < 2 {
		w = 2
	}
	if h < 2 {
		h = 2
	}

	elevSrc := NewSource(p.Kernel, p.Seed)
	moistSrc := NewSource(p.Kernel, p.Seed^moistureSeedMix)

	elev = NewScalarGrid(w, h)
	moist = NewScalarGrid(w, h)

	octaves := len(p.OctaveWeights)
	if octaves > len(offsets) {
		octaves = len(offsets)
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			nx := float64(x) / float64(w)
			ny := float64(y) / float64(h)

			e := octaveSum(elevSrc, nx, ny, p.ElevFrequency, p.OctaveWeights[:octaves], 0)
			e = clamp01(e * p.Fudge)
			if p.Exponent > 0 {
				e = math.Pow(e, p.Exponent)
			}
			if p.Island != IslandNone {
				// Normalized coords in [-1,1] around the grid center.
				u := 2*float64(x)/float64(w-1) - 1
				v := 2*float64(y)/float64(h-1) - 1
				shape := 1 - islandDistance(p.Island, u, v)
				e = clamp01(e + (shape-e)*p.IslandMix)
			}
			elev.Set(x, y, float32(e))

			// Moisture: independent source, cyclically shifted octave
			// offsets, no redistribution or island shaping.
			m := octaveSum(moistSrc, nx, ny, p.MoistFrequency, p.OctaveWeights[:octaves], 3)
			moist.Set(x, y, float32(clamp01(m)))
		}
	}
	return elev, moist
}

// octaveSum evaluates weighted octaves at doubling frequencies, each
// octave displaced by its entry of the offset table (rotated by shift),
// normalized to [0,1] by the weight sum.
func octaveSum(src NoiseSource, nx, ny, freq float64, weights []float64, shift int) float64 {
	var sum, wsum float64
	f := freq
	for i, wgt := range weights {
		off := offsets[(i+shift)%len(offsets)]
		n := src.Eval2(nx*f+off[0], ny*f+off[1])
		sum += wgt * 0.5 * (n + 1)
		wsum += wgt
		f *= 2
	}
	if wsum == 0 {
		return 0
	}
	return sum / wsum
}

func islandDistance(mode IslandMode, u, v float64) float64 {
	switch mode {
	case IslandSquare:
		return math.Max(math.Abs(u), math.Abs(v))
	case IslandRadial:
		d := math.Sqrt(u*u+v*v) / math.Sqrt2
		return math.Min(d, 1)
	}
	return 0
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
