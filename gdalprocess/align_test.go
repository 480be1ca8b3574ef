package gdalprocess

import (
	"errors"
	"testing"

	"github.com/GRIDgva/SwissDataCube/utils"
)

var refInfo = &utils.GeoInfo{
	MinLon: 7.0, MaxLon: 7.99,
	MinLat: 46.01, MaxLat: 47.0,
	PixelWidth: 0.01, PixelHeight: 0.01,
	Width: 100, Height: 100,
}

func TestCheckAlignedAccepts(t *testing.T) {
	geot := refInfo.GeoTransform()
	if err := checkAligned(100, 100, geot, refInfo); err != nil {
		t.Errorf("matching grid rejected: %v", err)
	}

	// metadata rounding below half a pixel is tolerated
	geot[0] += 0.001
	if err := checkAligned(100, 100, geot, refInfo); err != nil {
		t.Errorf("sub-pixel origin drift rejected: %v", err)
	}

	// pixel size rounding is tolerated only while the accumulated error
	// across the whole grid stays below half a pixel
	geot = refInfo.GeoTransform()
	geot[1] += 0.0000001
	if err := checkAligned(100, 100, geot, refInfo); err != nil {
		t.Errorf("negligible pixel size drift rejected: %v", err)
	}
}

func TestCheckAlignedRejectsShapeMismatch(t *testing.T) {
	if err := checkAligned(50, 100, refInfo.GeoTransform(), refInfo); !errors.Is(err, ErrMisaligned) {
		t.Errorf("expected ErrMisaligned for a shape mismatch, got %v", err)
	}
}

func TestCheckAlignedRejectsResolutionMismatch(t *testing.T) {
	geot := refInfo.GeoTransform()
	geot[1] *= 2
	if err := checkAligned(100, 100, geot, refInfo); !errors.Is(err, ErrMisaligned) {
		t.Errorf("expected ErrMisaligned for a resolution mismatch, got %v", err)
	}

	// a pixel width off by less than half a reference pixel still shifts the
	// far columns by tens of pixels and must be rejected
	geot = refInfo.GeoTransform()
	geot[1] = 0.0149
	if err := checkAligned(100, 100, geot, refInfo); !errors.Is(err, ErrMisaligned) {
		t.Errorf("expected ErrMisaligned for a coarser pixel width, got %v", err)
	}

	geot = refInfo.GeoTransform()
	geot[5] = -0.0149
	if err := checkAligned(100, 100, geot, refInfo); !errors.Is(err, ErrMisaligned) {
		t.Errorf("expected ErrMisaligned for a coarser pixel height, got %v", err)
	}
}

func TestCheckAlignedRejectsShiftedOrigin(t *testing.T) {
	geot := refInfo.GeoTransform()
	geot[3] += 1.0
	if err := checkAligned(100, 100, geot, refInfo); !errors.Is(err, ErrMisaligned) {
		t.Errorf("expected ErrMisaligned for a shifted origin, got %v", err)
	}
}

func TestCheckGeographicSRS(t *testing.T) {
	if err := checkGeographicSRS(utils.WGS84WKT); err != nil {
		t.Errorf("WGS 84 rejected: %v", err)
	}
	if err := checkGeographicSRS(`GEOGCRS["WGS 84",DATUM["World Geodetic System 1984"]]`); err != nil {
		t.Errorf("WKT2 geographic reference rejected: %v", err)
	}

	if err := checkGeographicSRS(""); !errors.Is(err, ErrMisaligned) {
		t.Errorf("expected ErrMisaligned for a missing spatial reference, got %v", err)
	}
	projected := `PROJCS["WGS 84 / UTM zone 32N",GEOGCS["WGS 84"],AUTHORITY["EPSG","32632"]]`
	if err := checkGeographicSRS(projected); !errors.Is(err, ErrMisaligned) {
		t.Errorf("expected ErrMisaligned for a projected spatial reference, got %v", err)
	}
}

func TestAOIPolygonCorners(t *testing.T) {
	wkt := AOIPolygonWKT(refInfo)
	expected := "POLYGON ((7.000000 46.010000,7.000000 47.000000,7.990000 47.000000,7.990000 46.010000,7.000000 46.010000))"
	if wkt != expected {
		t.Errorf("unexpected AOI polygon:\nexpected %s\nactual   %s", expected, wkt)
	}
}
