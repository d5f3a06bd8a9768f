package bake

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"terrainbaker/core"
)

// SaveHeightfield persists a normalized heightfield as a lossless 16-bit
// grayscale PNG.
func SaveHeightfield(path string, grid *core.ScalarGrid) error {
	if grid.Empty() {
		return core.ErrEmptyGrid
	}
	img := image.NewGray16(image.Rect(0, 0, grid.W, grid.H))
	for y := 0; y < grid.H; y++ {
		for x := 0; x < grid.W; x++ {
			v := grid.At(x, y)
			if v < 0 {
				v = 0
			} else if v > 1 {
				v = 1
			}
			u := uint16(v * 65535)
			i := img.PixOffset(x, y)
			img.Pix[i] = byte(u >> 8)
			img.Pix[i+1] = byte(u)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return png.Encode(file, img)
}

// LoadHeightfield reads a previously baked heightfield back into a
// normalized grid, so a bake can resume from persisted output instead
// of regenerating.
func LoadHeightfield(path string) (*core.ScalarGrid, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, err := png.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	bounds := img.Bounds()
	grid := core.NewScalarGrid(bounds.Dx(), bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, _, _, _ := img.At(x, y).RGBA()
			grid.Set(x-bounds.Min.X, y-bounds.Min.Y, float32(r)/65535)
		}
	}
	return grid, nil
}

// SaveImage writes an RGBA image (biome colors) as PNG.
func SaveImage(path string, img image.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return png.Encode(file, img)
}
