package core

import (
	"image"
	"image/color"
)

// Biome is a discrete terrain-cover class derived from elevation and
// moisture.
type Biome uint8

const (
	Ocean Biome = iota
	Beach
	Snow
	Scorched
	Bare
	Tundra
	TemperateDesert
	Shrubland
	Taiga
	Grassland
	DeciduousForest
	TemperateRainForest
	SubtropicalDesert
	SeasonalForest
	TropicalRainForest

	BiomeCount = iota
)

// BiomeInfo carries the display attributes of one biome class.
type BiomeInfo struct {
	Name  string
	Color color.RGBA
}

var biomeTable = [BiomeCount]BiomeInfo{
	Ocean:               {"Ocean", color.RGBA{54, 54, 97, 255}},
	Beach:               {"Beach", color.RGBA{172, 159, 139, 255}},
	Snow:                {"Snow", color.RGBA{248, 248, 248, 255}},
	Scorched:            {"Scorched", color.RGBA{85, 85, 85, 255}},
	Bare:                {"Bare", color.RGBA{136, 136, 136, 255}},
	Tundra:              {"Tundra", color.RGBA{187, 187, 170, 255}},
	TemperateDesert:     {"Temperate Desert", color.RGBA{201, 210, 155, 255}},
	Shrubland:           {"Shrubland", color.RGBA{136, 153, 119, 255}},
	Taiga:               {"Taiga", color.RGBA{153, 170, 119, 255}},
	Grassland:           {"Grassland", color.RGBA{136, 170, 85, 255}},
	DeciduousForest:     {"Deciduous Forest", color.RGBA{103, 148, 89, 255}},
	TemperateRainForest: {"Temperate Rain Forest", color.RGBA{68, 136, 85, 255}},
	SubtropicalDesert:   {"Subtropical Desert", color.RGBA{210, 185, 139, 255}},
	SeasonalForest:      {"Seasonal Forest", color.RGBA{85, 153, 68, 255}},
	TropicalRainForest:  {"Tropical Rain Forest", color.RGBA{51, 119, 85, 255}},
}

// Info returns the display attributes of b; out-of-range ids map to Bare.
func (b Biome) Info() BiomeInfo {
	if int(b) >= BiomeCount {
		return biomeTable[Bare]
	}
	return biomeTable[b]
}

func (b Biome) String() string { return b.Info().Name }

// BiomeGrid is a W×H array of biome ids, row-major like ScalarGrid.
type BiomeGrid struct {
	W, H int
	IDs  []Biome
}

func NewBiomeGrid(w, h int) *BiomeGrid {
	return &BiomeGrid{W: w, H: h, IDs: make([]Biome, w*h)}
}

func (g *BiomeGrid) At(x, y int) Biome     { return g.IDs[y*g.W+x] }
func (g *BiomeGrid) Set(x, y int, b Biome) { g.IDs[y*g.W+x] = b }

// Classification thresholds. Elevation cutoffs for ocean and snow apply
// to the raw value; the band tables below see values quantized to
// quantizeLevels plateaus.
const (
	oceanLevel     = 0.08
	snowLevel      = 0.92
	mountainLevel  = 0.78
	uplandLevel    = 0.58
	midlandLevel   = 0.32
	quantizeLevels = 12
)

func quantize(v float32) float32 {
	q := float32(int(v*quantizeLevels)) / quantizeLevels
	return q
}

// classifyCell runs the fixed elevation/moisture decision table on one
// cell. e and m are raw [0,1] values.
func classifyCell(e, m float32) Biome {
	if e < oceanLevel {
		return Ocean
	}
	if e >= snowLevel {
		return Snow
	}
	eq, mq := quantize(e), quantize(m)
	switch {
	case eq > mountainLevel:
		switch {
		case mq < 0.10:
			return Scorched
		case mq < 1.0/3:
			return Bare
		case mq < 2.0/3:
			return Tundra
		default:
			return Snow
		}
	case eq > uplandLevel:
		switch {
		case mq < 1.0/3:
			return TemperateDesert
		case mq < 2.0/3:
			return Shrubland
		default:
			return Taiga
		}
	case eq > midlandLevel:
		switch {
		case mq < 1.0/6:
			return TemperateDesert
		case mq < 0.5:
			return Grassland
		case mq < 5.0/6:
			return DeciduousForest
		default:
			return TemperateRainForest
		}
	default:
		switch {
		case mq < 1.0/6:
			return SubtropicalDesert
		case mq < 1.0/3:
			return Grassland
		case mq < 2.0/3:
			return SeasonalForest
		default:
			return TropicalRainForest
		}
	}
}

// Classify maps elevation and moisture to a biome per cell, then applies
// the shoreline pass: a multi-source BFS from every ocean cell over
// 4-connected neighbors reclassifies land within beachThickness steps as
// beach. Ocean cells are never overwritten.
func Classify(elev, moist *ScalarGrid, beachThickness int) (*BiomeGrid, error) {
	if err := Validate(elev, moist); err != nil {
		return nil, err
	}
	w, h := elev.W, elev.H
	biomes := NewBiomeGrid(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			biomes.Set(x, y, classifyCell(elev.At(x, y), moist.At(x, y)))
		}
	}
	if beachThickness > 0 {
		markBeaches(biomes, beachThickness)
	}
	return biomes, nil
}

// markBeaches seeds a BFS at every ocean cell and walks outward in exact
// step distance. Beach is a distance-from-ocean property, so it cannot
// be decided from local elevation alone.
func markBeaches(biomes *BiomeGrid, thickness int) {
	w, h := biomes.W, biomes.H
	dist := make([]int32, w*h)
	queue := make([]int32, 0, w*h)
	for i := range dist {
		if biomes.IDs[i] == Ocean {
			dist[i] = 0
			queue = append(queue, int32(i))
		} else {
			dist[i] = -1
		}
	}
	for head := 0; head < len(queue); head++ {
		i := queue[head]
		d := dist[i]
		if int(d) >= thickness {
			continue
		}
		x, y := int(i)%w, int(i)/w
		for _, n := range [4][2]int{{x - 1, y}, {x + 1, y}, {x, y - 1}, {x, y + 1}} {
			nx, ny := n[0], n[1]
			if nx < 0 || ny < 0 || nx >= w || ny >= h {
				continue
			}
			j := int32(ny*w + nx)
			if dist[j] >= 0 {
				continue
			}
			dist[j] = d + 1
			biomes.IDs[j] = Beach
			queue = append(queue, j)
		}
	}
}

// ColorImage renders the biome grid into an RGBA image using the fixed
// display palette.
func (g *BiomeGrid) ColorImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, g.W, g.H))
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			img.SetRGBA(x, y, g.At(x, y).Info().Color)
		}
	}
	return img
}
