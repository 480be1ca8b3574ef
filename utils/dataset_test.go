package utils

import (
	"errors"
	"math"
	"testing"
)

func testDataset(width, height int) *Dataset {
	ds := &Dataset{
		Data:   make([]float32, width*height),
		Width:  width,
		Height: height,
		Lon:    make([]float64, width),
		Lat:    make([]float64, height),
		NoData: math.NaN(),
	}
	for i := 0; i < width; i++ {
		ds.Lon[i] = 7.0 + 0.01*float64(i)
	}
	for j := 0; j < height; j++ {
		ds.Lat[j] = 46.5 - 0.01*float64(j)
	}
	return ds
}

func TestExtractGeoInfo(t *testing.T) {
	ds := testDataset(10, 8)
	gi, err := ExtractGeoInfo(ds)
	if err != nil {
		t.Fatalf("geo info extraction failed: %v", err)
	}

	if gi.MinLon != 7.0 || math.Abs(gi.MaxLon-7.09) > 1e-9 {
		t.Errorf("unexpected longitude bounds: [%v, %v]", gi.MinLon, gi.MaxLon)
	}
	if math.Abs(gi.MinLat-46.43) > 1e-9 || gi.MaxLat != 46.5 {
		t.Errorf("unexpected latitude bounds: [%v, %v]", gi.MinLat, gi.MaxLat)
	}
	if math.Abs(gi.PixelWidth-0.01) > 1e-9 || math.Abs(gi.PixelHeight-0.01) > 1e-9 {
		t.Errorf("unexpected pixel size: %v x %v", gi.PixelWidth, gi.PixelHeight)
	}

	geot := gi.GeoTransform()
	if math.Abs(geot[0]-(gi.MinLon-0.005)) > 1e-9 || math.Abs(geot[3]-(gi.MaxLat+0.005)) > 1e-9 {
		t.Errorf("geotransform origin not on outer cell edge: %v", geot)
	}
	if geot[5] >= 0 {
		t.Errorf("expected negative row step, got %v", geot[5])
	}
}

func TestExtractGeoInfoRejectsNonMonotonic(t *testing.T) {
	ds := testDataset(10, 8)
	ds.Lon[5] = ds.Lon[3]
	if _, err := ExtractGeoInfo(ds); !errors.Is(err, ErrInvalidGeoInfo) {
		t.Errorf("expected ErrInvalidGeoInfo for non-monotonic coordinates, got %v", err)
	}
}

func TestExtractGeoInfoRejectsMissingCoords(t *testing.T) {
	ds := testDataset(10, 8)
	ds.Lat = ds.Lat[:1]
	if _, err := ExtractGeoInfo(ds); !errors.Is(err, ErrInvalidGeoInfo) {
		t.Errorf("expected ErrInvalidGeoInfo for missing coordinates, got %v", err)
	}
}

func TestExtractGeoInfoRejectsConstantAxis(t *testing.T) {
	ds := testDataset(10, 8)
	for j := range ds.Lat {
		ds.Lat[j] = 46.5
	}
	if _, err := ExtractGeoInfo(ds); !errors.Is(err, ErrInvalidGeoInfo) {
		t.Errorf("expected ErrInvalidGeoInfo for a constant latitude axis, got %v", err)
	}
}

func TestGeoInfoClip(t *testing.T) {
	ds := testDataset(10, 8)
	gi, err := ExtractGeoInfo(ds)
	if err != nil {
		t.Fatalf("geo info extraction failed: %v", err)
	}

	clipped, err := gi.Clip(7.02, 46.44, 7.05, 46.48)
	if err != nil {
		t.Fatalf("clip failed: %v", err)
	}
	if clipped.MinLon != 7.02 || clipped.MaxLon != 7.05 || clipped.MinLat != 46.44 || clipped.MaxLat != 46.48 {
		t.Errorf("unexpected clipped bounds: %+v", clipped)
	}
	if clipped.PixelWidth != gi.PixelWidth || clipped.Width != gi.Width {
		t.Errorf("clip must not change the grid: %+v", clipped)
	}

	if _, err := gi.Clip(20, 0, 30, 1); !errors.Is(err, ErrInvalidGeoInfo) {
		t.Errorf("expected ErrInvalidGeoInfo for non-overlapping AOI, got %v", err)
	}
}

func TestDatasetCopyIsIndependent(t *testing.T) {
	ds := testDataset(4, 4)
	ds.Data[0] = 42

	cp := ds.Copy()
	cp.Data[0] = 7
	if ds.Data[0] != 42 {
		t.Errorf("copy mutated the original dataset")
	}
}
