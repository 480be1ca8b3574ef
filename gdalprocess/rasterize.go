package gdalprocess

// #include <stdlib.h>
// #include "gdal.h"
// #include "gdal_alg.h"
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

	"github.com/GRIDgva/SwissDataCube/utils"
)

const BurnValue = 255

// Rasterize burns the geometries of a vector file onto the reference grid
// and persists the result as a Byte GeoTIFF. Covered cells get BurnValue,
// everything else stays zero. With allTouched every cell intersected by a
// geometry is burnt, not just cells whose centre falls inside it.
func Rasterize(vectorPath, rasterPath string, ref *utils.GeoInfo, allTouched bool) error {
	cVecPath := C.CString(vectorPath)
	defer C.free(unsafe.Pointer(cVecPath))
	hVecDS := C.GDALOpenEx(cVecPath, C.GDAL_OF_VECTOR|C.GDAL_OF_READONLY, nil, nil, nil)
	if hVecDS == nil {
		return fmt.Errorf("OGR could not open vector file: %s: %v", vectorPath, C.GoString(C.CPLGetLastErrorMsg()))
	}
	defer C.GDALClose(hVecDS)

	hLayer := C.GDALDatasetGetLayer(hVecDS, 0)
	if hLayer == nil {
		return fmt.Errorf("vector file %s has no layer", vectorPath)
	}

	var geoms []C.OGRGeometryH
	defer func() {
		for _, g := range geoms {
			C.OGR_G_DestroyGeometry(g)
		}
	}()
	C.OGR_L_ResetReading(hLayer)
	for {
		hFeat := C.OGR_L_GetNextFeature(hLayer)
		if hFeat == nil {
			break
		}
		hGeom := C.OGR_F_GetGeometryRef(hFeat)
		if hGeom != nil {
			geoms = append(geoms, C.OGR_G_Clone(hGeom))
		}
		C.OGR_F_Destroy(hFeat)
	}
	if len(geoms) == 0 {
		return fmt.Errorf("vector file %s has no geometries", vectorPath)
	}

	canvas := make([]uint8, ref.Width*ref.Height)
	memStr := C.CString(fmt.Sprintf("MEM:::DATAPOINTER=%d,PIXELS=%d,LINES=%d,DATATYPE=Byte",
		unsafe.Pointer(&canvas[0]), C.int(ref.Width), C.int(ref.Height)))
	defer C.free(unsafe.Pointer(memStr))
	hMemDS := C.GDALOpen(memStr, C.GA_Update)
	if hMemDS == nil {
		return fmt.Errorf("couldn't create memory driver for %s", rasterPath)
	}
	defer C.GDALClose(hMemDS)

	if err := setProjection(hMemDS, utils.WGS84WKT); err != nil {
		return err
	}
	geot := ref.GeoTransform()
	if gdalErr := C.GDALSetGeoTransform(hMemDS, (*C.double)(&geot[0])); gdalErr != 0 {
		return fmt.Errorf("couldn't set the geotransform on the mask raster: %v", gdalErr)
	}

	geomBurnValues := make([]C.double, len(geoms))
	for i := range geomBurnValues {
		geomBurnValues[i] = C.double(BurnValue)
	}
	panBandList := []C.int{C.int(1)}

	var opts **C.char
	if allTouched {
		optStr := C.CString("ALL_TOUCHED=TRUE")
		defer C.free(unsafe.Pointer(optStr))
		optList := []*C.char{optStr, nil}
		opts = &optList[0]
	}

	if gdalErr := C.GDALRasterizeGeometries(hMemDS, 1, &panBandList[0], C.int(len(geoms)), &geoms[0],
		nil, nil, &geomBurnValues[0], opts, nil, nil); gdalErr != 0 {
		return fmt.Errorf("GDALRasterizeGeometries error %v", gdalErr)
	}

	return writeByteGeoTiff(rasterPath, canvas, ref)
}

func writeByteGeoTiff(path string, data []uint8, ref *utils.GeoInfo) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	driverName := C.CString("GTiff")
	defer C.free(unsafe.Pointer(driverName))
	hDriver := C.GDALGetDriverByName(driverName)
	if hDriver == nil {
		return fmt.Errorf("GTiff driver not available")
	}

	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))
	hDS := C.GDALCreate(hDriver, cPath, C.int(ref.Width), C.int(ref.Height), 1, C.GDT_Byte, nil)
	if hDS == nil {
		return fmt.Errorf("failed to create %s: %v", path, C.GoString(C.CPLGetLastErrorMsg()))
	}
	defer C.GDALClose(hDS)

	geot := ref.GeoTransform()
	if gdalErr := C.GDALSetGeoTransform(hDS, (*C.double)(&geot[0])); gdalErr != 0 {
		return fmt.Errorf("couldn't set geotransform on %s: %v", path, gdalErr)
	}
	if err := setProjection(hDS, utils.WGS84WKT); err != nil {
		return err
	}

	hBand := C.GDALGetRasterBand(hDS, 1)
	C.GDALSetRasterNoDataValue(hBand, 0)
	gdalErr := C.GDALRasterIO(hBand, C.GF_Write, 0, 0, C.int(ref.Width), C.int(ref.Height),
		unsafe.Pointer(&data[0]), C.int(ref.Width), C.int(ref.Height), C.GDT_Byte, 0, 0)
	if gdalErr != 0 {
		return fmt.Errorf("GDALRasterIO() failed writing %s: %v", path, gdalErr)
	}
	return nil
}
