package main

import (
	"flag"
	"fmt"
	"log"
	"runtime"
	"time"

	"terrainbaker/bake"
	"terrainbaker/config"
	"terrainbaker/gpu"
)

func main() {
	runtime.LockOSThread()

	var (
		configPath = flag.String("config", "settings.json", "Settings file")
		seed       = flag.Int64("seed", 0, "Override terrain seed (0 = use settings)")
		size       = flag.Int("size", 0, "Override grid size (0 = use settings)")
		iterations = flag.Int("iterations", -1, "Override erosion iterations (-1 = use settings)")
		heightOut  = flag.String("height-out", "heightfield.png", "Relaxed heightfield output")
		biomeOut   = flag.String("biome-out", "biomes.png", "Biome color map output")
		noGPU      = flag.Bool("no-gpu", false, "Skip erosion, bake CPU stages only")
		resume     = flag.String("resume", "", "Resume from a persisted heightfield instead of generating")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}
	if *seed != 0 {
		cfg.Terrain.Seed = *seed
	}
	if *size > 0 {
		cfg.Terrain.Width = *size
		cfg.Terrain.Height = *size
	}
	if *iterations >= 0 {
		cfg.Erosion.Iterations = *iterations
	}
	if *noGPU {
		cfg.Erosion.Iterations = 0
	}

	fmt.Println("=== Terrain Baker ===")
	fmt.Printf("Grid: %dx%d, seed %d\n", cfg.Terrain.Width, cfg.Terrain.Height, cfg.Terrain.Seed)
	fmt.Printf("Erosion: %d iterations\n", cfg.Erosion.Iterations)

	if cfg.Erosion.Iterations > 0 {
		ctx, err := gpu.NewContext()
		if err != nil {
			log.Fatalf("Failed to create GL context: %v", err)
		}
		defer ctx.Terminate()
	}

	start := time.Now()
	var result *bake.Result
	if *resume != "" {
		grid, err := bake.LoadHeightfield(*resume)
		if err != nil {
			log.Fatalf("Failed to load %s: %v", *resume, err)
		}
		fmt.Printf("Resuming from %s (%dx%d)\n", *resume, grid.W, grid.H)
		result, err = bake.RunFrom(cfg, grid)
		if err != nil {
			log.Fatalf("Bake failed: %v", err)
		}
	} else {
		result, err = bake.Run(cfg)
		if err != nil {
			log.Fatalf("Bake failed: %v", err)
		}
	}
	fmt.Printf("Bake finished in %.2fs\n", time.Since(start).Seconds())

	if err := bake.SaveHeightfield(*heightOut, result.Elevation); err != nil {
		log.Fatalf("Failed to write heightfield: %v", err)
	}
	if err := bake.SaveImage(*biomeOut, result.BiomeColors); err != nil {
		log.Fatalf("Failed to write biome map: %v", err)
	}
	fmt.Printf("Wrote %s and %s\n", *heightOut, *biomeOut)
}
