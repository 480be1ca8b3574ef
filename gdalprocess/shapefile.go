package gdalprocess

// #include <stdlib.h>
// #include "gdal.h"
// #include "ogr_api.h"
// #include "ogr_srs_api.h"
// #include "cpl_string.h"
// #cgo pkg-config: gdal
import "C"

import (
	"fmt"
	"os"
	"path/filepath"
	"unsafe"
)

var cShapeDriverName = C.CString("ESRI Shapefile")

// WriteShapefile persists a list of WKT geometries as a single-layer
// EPSG:4326 shapefile, overwriting any file at the target path.
func WriteShapefile(path string, wkts []string) error {
	if len(wkts) == 0 {
		return fmt.Errorf("no geometries to write to %s", path)
	}

	hDriver := C.OGRGetDriverByName(cShapeDriverName)
	if hDriver == nil {
		return fmt.Errorf("ESRI Shapefile driver not available")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		cOld := C.CString(path)
		C.OGR_Dr_DeleteDataSource(hDriver, cOld)
		C.free(unsafe.Pointer(cOld))
	}

	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))
	hDS := C.OGR_Dr_CreateDataSource(hDriver, cPath, nil)
	if hDS == nil {
		return fmt.Errorf("failed to create shapefile %s: %v", path, C.GoString(C.CPLGetLastErrorMsg()))
	}
	defer C.OGR_DS_Destroy(hDS)

	hSRS := C.OSRNewSpatialReference(nil)
	defer C.OSRDestroySpatialReference(hSRS)
	C.OSRImportFromEPSG(hSRS, 4326)

	layerName := layerNameFor(path)
	cLayerName := C.CString(layerName)
	defer C.free(unsafe.Pointer(cLayerName))

	geoms := make([]C.OGRGeometryH, 0, len(wkts))
	defer func() {
		for _, g := range geoms {
			C.OGR_G_DestroyGeometry(g)
		}
	}()
	geomType := C.OGRwkbGeometryType(C.wkbUnknown)
	for _, wkt := range wkts {
		// OGR_G_CreateFromWkt advances the input pointer, keep the original
		cWkt := C.CString(wkt)
		cWktIn := cWkt
		var hGeom C.OGRGeometryH
		ogrErr := C.OGR_G_CreateFromWkt(&cWktIn, hSRS, &hGeom)
		C.free(unsafe.Pointer(cWkt))
		if ogrErr != C.OGRERR_NONE || hGeom == nil {
			return fmt.Errorf("WKT geometry could not be parsed for %s: %v", path, ogrErr)
		}
		geoms = append(geoms, hGeom)
		if geomType == C.OGRwkbGeometryType(C.wkbUnknown) {
			geomType = C.OGR_G_GetGeometryType(hGeom)
		}
	}

	hLayer := C.OGR_DS_CreateLayer(hDS, cLayerName, hSRS, geomType, nil)
	if hLayer == nil {
		return fmt.Errorf("failed to create layer %s in %s", layerName, path)
	}

	for _, hGeom := range geoms {
		hFeat := C.OGR_F_Create(C.OGR_L_GetLayerDefn(hLayer))
		C.OGR_F_SetGeometry(hFeat, hGeom)
		ogrErr := C.OGR_L_CreateFeature(hLayer, hFeat)
		C.OGR_F_Destroy(hFeat)
		if ogrErr != C.OGRERR_NONE {
			return fmt.Errorf("failed to write feature to %s: %v", path, ogrErr)
		}
	}
	return nil
}

// BufferShapefile widens every geometry of the source shapefile by distance
// degrees and writes the result to dstPath. Thin line features become area
// features this way before rasterization.
func BufferShapefile(srcPath, dstPath string, distance float64) error {
	wkts, err := readShapefileWKTs(srcPath)
	if err != nil {
		return err
	}

	buffered := make([]string, 0, len(wkts))
	hSRS := C.OSRNewSpatialReference(nil)
	defer C.OSRDestroySpatialReference(hSRS)
	C.OSRImportFromEPSG(hSRS, 4326)

	for _, wkt := range wkts {
		cWkt := C.CString(wkt)
		cWktIn := cWkt
		var hGeom C.OGRGeometryH
		ogrErr := C.OGR_G_CreateFromWkt(&cWktIn, hSRS, &hGeom)
		C.free(unsafe.Pointer(cWkt))
		if ogrErr != C.OGRERR_NONE || hGeom == nil {
			return fmt.Errorf("WKT geometry could not be parsed from %s: %v", srcPath, ogrErr)
		}

		hBuf := C.OGR_G_Buffer(hGeom, C.double(distance), 30)
		C.OGR_G_DestroyGeometry(hGeom)
		if hBuf == nil {
			return fmt.Errorf("OGR_G_Buffer() failed for %s", srcPath)
		}
		var cOut *C.char
		C.OGR_G_ExportToWkt(hBuf, &cOut)
		buffered = append(buffered, C.GoString(cOut))
		C.free(unsafe.Pointer(cOut))
		C.OGR_G_DestroyGeometry(hBuf)
	}

	return WriteShapefile(dstPath, buffered)
}

func readShapefileWKTs(path string) ([]string, error) {
	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))
	hDS := C.GDALOpenEx(cPath, C.GDAL_OF_VECTOR|C.GDAL_OF_READONLY, nil, nil, nil)
	if hDS == nil {
		return nil, fmt.Errorf("OGR could not open vector file: %s: %v", path, C.GoString(C.CPLGetLastErrorMsg()))
	}
	defer C.GDALClose(hDS)

	hLayer := C.GDALDatasetGetLayer(hDS, 0)
	if hLayer == nil {
		return nil, fmt.Errorf("vector file %s has no layer", path)
	}

	var wkts []string
	C.OGR_L_ResetReading(hLayer)
	for {
		hFeat := C.OGR_L_GetNextFeature(hLayer)
		if hFeat == nil {
			break
		}
		hGeom := C.OGR_F_GetGeometryRef(hFeat)
		if hGeom != nil {
			var cWkt *C.char
			C.OGR_G_ExportToWkt(hGeom, &cWkt)
			wkts = append(wkts, C.GoString(cWkt))
			C.free(unsafe.Pointer(cWkt))
		}
		C.OGR_F_Destroy(hFeat)
	}
	if len(wkts) == 0 {
		return nil, fmt.Errorf("vector file %s has no geometries", path)
	}
	return wkts, nil
}

func layerNameFor(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return base[:len(base)-len(ext)]
}
