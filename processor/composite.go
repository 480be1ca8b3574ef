package processor

import (
	"math"

	"github.com/GRIDgva/SwissDataCube/utils"
)

// Composite merges the streets and buildings mask layers onto one grid.
// Where a buildings cell is present it always wins; otherwise the streets
// cell is taken; cells covered by neither stay NaN. Either layer may be nil.
func Composite(streets, buildings *utils.MaskArray) *utils.MaskArray {
	ref := buildings
	if ref == nil {
		ref = streets
	}
	if ref == nil {
		return nil
	}

	out := &utils.MaskArray{
		Data:   make([]float32, len(ref.Data)),
		Width:  ref.Width,
		Height: ref.Height,
		Lon:    ref.Lon,
		Lat:    ref.Lat,
	}
	for i := range out.Data {
		switch {
		case buildings != nil && !math.IsNaN(float64(buildings.Data[i])):
			out.Data[i] = buildings.Data[i]
		case streets != nil && !math.IsNaN(float64(streets.Data[i])):
			out.Data[i] = streets.Data[i]
		default:
			out.Data[i] = float32(math.NaN())
		}
	}
	return out
}

// Apply returns a filtered copy of the dataset with every cell under the
// mask set to the dataset's no-data value. The input dataset is not mutated.
// A nil mask yields an unchanged copy.
func Apply(ds *utils.Dataset, mask *utils.MaskArray) *utils.Dataset {
	out := ds.Copy()
	if mask == nil {
		return out
	}

	fill := float32(ds.NoData)
	if math.IsNaN(ds.NoData) {
		fill = float32(math.NaN())
	}
	for i := range out.Data {
		if !math.IsNaN(float64(mask.Data[i])) {
			out.Data[i] = fill
		}
	}
	return out
}

// MaskedCellCount reports how many cells of a mask are covered.
func MaskedCellCount(mask *utils.MaskArray) int {
	if mask == nil {
		return 0
	}
	count := 0
	for i := range mask.Data {
		if !math.IsNaN(float64(mask.Data[i])) {
			count++
		}
	}
	return count
}
