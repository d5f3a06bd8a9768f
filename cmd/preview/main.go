// Heightmap viewer for baked output: displays the relaxed heightfield as
// a displaced mesh with the biome color map as its texture.
package main

import (
	"flag"
	"log"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func main() {
	var (
		heightPath = flag.String("height", "heightfield.png", "Baked heightfield PNG")
		biomePath  = flag.String("biomes", "biomes.png", "Biome color PNG")
		meshScale  = flag.Float64("scale", 16, "Vertical exaggeration")
	)
	flag.Parse()

	rl.InitWindow(1280, 720, "terrainbaker preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	heightImg := rl.LoadImage(*heightPath)
	if heightImg.Width == 0 {
		log.Fatalf("Failed to load heightfield %s", *heightPath)
	}
	defer rl.UnloadImage(heightImg)

	mesh := rl.GenMeshHeightmap(*heightImg, rl.NewVector3(64, float32(*meshScale), 64))
	model := rl.LoadModelFromMesh(mesh)
	defer rl.UnloadModel(model)

	biomeTex := rl.LoadTexture(*biomePath)
	if biomeTex.ID != 0 {
		rl.SetMaterialTexture(model.Materials, rl.MapDiffuse, biomeTex)
		defer rl.UnloadTexture(biomeTex)
	}

	camera := rl.Camera3D{
		Position:   rl.NewVector3(48, 40, 48),
		Target:     rl.NewVector3(0, 4, 0),
		Up:         rl.NewVector3(0, 1, 0),
		Fovy:       45,
		Projection: rl.CameraPerspective,
	}

	for !rl.WindowShouldClose() {
		rl.UpdateCamera(&camera, rl.CameraOrbital)

		rl.BeginDrawing()
		rl.ClearBackground(rl.NewColor(24, 26, 34, 255))
		rl.BeginMode3D(camera)
		rl.DrawModel(model, rl.NewVector3(-32, 0, -32), 1, rl.White)
		rl.EndMode3D()
		rl.DrawFPS(12, 12)
		rl.DrawText(*heightPath, 12, 36, 18, rl.RayWhite)
		rl.EndDrawing()
	}
}
