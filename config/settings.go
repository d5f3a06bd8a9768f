// Package config loads the bake settings file. Settings are plain value
// structs handed to components explicitly; there is no global state.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

type Settings struct {
	Terrain TerrainSettings `json:"terrain"`
	Erosion ErosionSettings `json:"erosion"`
	Server  ServerSettings  `json:"server"`
}

type TerrainSettings struct {
	Width  int   `json:"width"`
	Height int   `json:"height"`
	Seed   int64 `json:"seed"`

	Kernel             string    `json:"kernel"` // "simplex" or "perlin"
	ElevationFrequency float64   `json:"elevationFrequency"`
	MoistureFrequency  float64   `json:"moistureFrequency"`
	OctaveWeights      []float64 `json:"octaveWeights"`
	Exponent           float64   `json:"exponent"`
	Fudge              float64   `json:"fudge"`
	IslandMode         string    `json:"islandMode"` // "none", "square", "radial"
	IslandMix          float64   `json:"islandMix"`

	BeachThickness int `json:"beachThickness"`

	// World extent in meters covered by the grid.
	WorldSize float64 `json:"worldSize"`

	// Biome texture-array layering for downstream shading consumers.
	TextureLayers  int `json:"textureLayers"`
	LayersPerBiome int `json:"layersPerBiome"`
}

type ErosionSettings struct {
	Iterations      int     `json:"iterations"`
	BatchIterations int     `json:"batchIterations"`
	Timestep        float64 `json:"timestep"`
	Gravity         float64 `json:"gravity"`
	PipeArea        float64 `json:"pipeArea"`
	ErosionRate     float64 `json:"erosionRate"`
	DepositionRate  float64 `json:"depositionRate"`
	Capacity        float64 `json:"capacity"`
	Evaporation     float64 `json:"evaporation"`
	MinSlopeSine    float64 `json:"minSlopeSine"`
	RainIntensity   float64 `json:"rainIntensity"`
	HeightScale     float64 `json:"heightScale"`
}

type ServerSettings struct {
	Port int `json:"port"`
}

// Default returns the stock bake tuning.
func Default() Settings {
	return Settings{
		Terrain: TerrainSettings{
			Width:              512,
			Height:             512,
			Seed:               1337,
			Kernel:             "simplex",
			ElevationFrequency: 3.2,
			MoistureFrequency:  2.4,
			OctaveWeights:      []float64{1, 0.5, 0.25, 0.13, 0.06, 0.03},
			Exponent:           1.8,
			Fudge:              1.2,
			IslandMode:         "radial",
			IslandMix:          0.35,
			BeachThickness:     1,
			WorldSize:          2048,
			TextureLayers:      16,
			LayersPerBiome:     1,
		},
		Erosion: ErosionSettings{
			Iterations:      2000,
			BatchIterations: 64,
			Timestep:        0.02,
			Gravity:         9.81,
			PipeArea:        20,
			ErosionRate:     0.03,
			DepositionRate:  0.02,
			Capacity:        0.8,
			Evaporation:     0.015,
			MinSlopeSine:    0.05,
			RainIntensity:   0.012,
			HeightScale:     120,
		},
		Server: ServerSettings{Port: 8080},
	}
}

// Load reads settings from path, falling back to defaults when the file
// does not exist.
func Load(path string) (Settings, error) {
	s := Default()
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Printf("No %s found, using defaults\n", path)
			return s, nil
		}
		return s, err
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(&s); err != nil {
		return s, fmt.Errorf("error parsing %s: %w", path, err)
	}
	return s, nil
}
