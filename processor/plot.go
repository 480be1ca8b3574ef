package processor

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"github.com/GRIDgva/SwissDataCube/utils"
)

var (
	streetColour   = color.RGBA{230, 140, 30, 255}
	buildingColour = color.RGBA{200, 30, 30, 255}
)

// WriteOverlayPNG renders the dataset as a grayscale backdrop with the
// streets and buildings layers drawn on top, and writes it as a PNG. This is
// a side channel for eyeballing a run, not part of the mask output.
func WriteOverlayPNG(path string, ds *utils.Dataset, streets, buildings *utils.MaskArray) error {
	img := image.NewRGBA(image.Rect(0, 0, ds.Width, ds.Height))

	minVal, maxVal := valueRange(ds)
	scale := 0.0
	if maxVal > minVal {
		scale = 255.0 / (maxVal - minVal)
	}

	for i := 0; i < ds.Width*ds.Height; i++ {
		x := i % ds.Width
		y := i / ds.Width

		val := float64(ds.Data[i])
		if math.IsNaN(val) || val == ds.NoData {
			img.SetRGBA(x, y, color.RGBA{0, 0, 0, 255})
		} else {
			gray := uint8((val - minVal) * scale)
			img.SetRGBA(x, y, color.RGBA{gray, gray, gray, 255})
		}

		if streets != nil && !math.IsNaN(float64(streets.Data[i])) {
			img.SetRGBA(x, y, streetColour)
		}
		if buildings != nil && !math.IsNaN(float64(buildings.Data[i])) {
			img.SetRGBA(x, y, buildingColour)
		}
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating plot file %s: %v", path, err)
	}
	defer out.Close()
	if err := png.Encode(out, img); err != nil {
		return fmt.Errorf("error encoding plot %s: %v", path, err)
	}
	return nil
}

func valueRange(ds *utils.Dataset) (float64, float64) {
	minVal := math.Inf(1)
	maxVal := math.Inf(-1)
	for _, v := range ds.Data {
		val := float64(v)
		if math.IsNaN(val) || val == ds.NoData {
			continue
		}
		if val < minVal {
			minVal = val
		}
		if val > maxVal {
			maxVal = val
		}
	}
	if minVal > maxVal {
		return 0, 0
	}
	return minVal, maxVal
}
