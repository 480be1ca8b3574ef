package gdalprocess

// #include <stdlib.h>
// #include "ogr_api.h"
// #include "ogr_srs_api.h"
// #cgo pkg-config: gdal
import "C"

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"unsafe"

	geo "github.com/nci/geometry"

	"github.com/GRIDgva/SwissDataCube/utils"
)

// WriteAOIShapefile persists the area of interest as a single-feature
// EPSG:4326 shapefile.
func WriteAOIShapefile(path string, gi *utils.GeoInfo) error {
	return WriteShapefile(path, []string{AOIPolygonWKT(gi)})
}

// FeatureEnvelope reads a GeoJSON Feature file and returns the envelope of
// its geometry as (minLon, minLat, maxLon, maxLat). Used to limit the AOI to
// a sub-region of the dataset.
func FeatureEnvelope(path string) (float64, float64, float64, float64, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("error reading AOI feature file %s: %v", path, err)
	}

	var feat geo.Feature
	if err := json.Unmarshal(data, &feat); err != nil {
		return 0, 0, 0, 0, fmt.Errorf("problem unmarshalling AOI geometry %s: %v", path, err)
	}
	geomGeoJSON, err := json.Marshal(feat.Geometry)
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("problem marshaling GeoJSON geometry: %v", err)
	}

	cGeom := C.CString(string(geomGeoJSON))
	defer C.free(unsafe.Pointer(cGeom))
	hGeom := C.OGR_G_CreateGeometryFromJson(cGeom)
	if hGeom == nil {
		return 0, 0, 0, 0, fmt.Errorf("AOI geometry %s could not be parsed", path)
	}
	defer C.OGR_G_DestroyGeometry(hGeom)

	var env C.OGREnvelope
	C.OGR_G_GetEnvelope(hGeom, &env)
	return float64(env.MinX), float64(env.MinY), float64(env.MaxX), float64(env.MaxY), nil
}
