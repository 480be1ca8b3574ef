package gdalprocess

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/GRIDgva/SwissDataCube/utils"
)

// ErrMisaligned flags a raster product whose grid does not overlay the
// reference dataset. Cached products with a different shape, origin or
// resolution must not be composited onto the reference grid.
var ErrMisaligned = errors.New("raster grid misaligned with reference dataset")

// checkAligned compares a raster grid against the reference geo info. The
// geotransform is allowed to drift by half a pixel to absorb float rounding
// in file metadata.
func checkAligned(width, height int, geot []float64, ref *utils.GeoInfo) error {
	if width != ref.Width || height != ref.Height {
		return fmt.Errorf("%w: shape %dx%d, want %dx%d", ErrMisaligned, width, height, ref.Width, ref.Height)
	}
	if len(geot) < 6 {
		return fmt.Errorf("%w: incomplete geotransform", ErrMisaligned)
	}

	refGeot := ref.GeoTransform()
	tolX := ref.PixelWidth / 2.0
	tolY := ref.PixelHeight / 2.0
	// Scale and rotation errors accumulate column by column and row by row,
	// so their tolerances shrink with the grid size. This keeps the far
	// corner of the grid within half a pixel of the reference.
	tols := []float64{
		tolX, tolX / float64(width), tolX / float64(height),
		tolY, tolY / float64(width), tolY / float64(height),
	}
	for i := 0; i < 6; i++ {
		if math.Abs(geot[i]-refGeot[i]) > tols[i] {
			return fmt.Errorf("%w: geotransform[%d]=%v, want %v", ErrMisaligned, i, geot[i], refGeot[i])
		}
	}
	return nil
}

// checkGeographicSRS rejects rasters whose spatial reference is absent or not
// a geographic lon/lat system. GDAL reports the reference as WKT, where
// geographic systems open with a GEOGCS (WKT1) or GEOGCRS (WKT2) node.
func checkGeographicSRS(wkt string) error {
	wkt = strings.TrimSpace(wkt)
	if wkt == "" {
		return fmt.Errorf("%w: no spatial reference", ErrMisaligned)
	}
	if !strings.HasPrefix(wkt, "GEOGCS") && !strings.HasPrefix(wkt, "GEOGCRS") {
		return fmt.Errorf("%w: spatial reference is not geographic", ErrMisaligned)
	}
	return nil
}
