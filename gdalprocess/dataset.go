package gdalprocess

// #include "gdal.h"
// #include "ogr_srs_api.h"
// #include "cpl_string.h"
// #cgo pkg-config: gdal
import "C"

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/GRIDgva/SwissDataCube/utils"
)

// Open reads band 1 of a raster file into an in-memory dataset with cell
// centre coordinate arrays. Multi-band files with a degenerate leading axis
// collapse to the first band.
func Open(path string) (*utils.Dataset, error) {
	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))
	hDS := C.GDALOpen(cPath, C.GA_ReadOnly)
	if hDS == nil {
		return nil, fmt.Errorf("GDAL could not open dataset: %s: %v", path, C.GoString(C.CPLGetLastErrorMsg()))
	}
	defer C.GDALClose(hDS)

	width := int(C.GDALGetRasterXSize(hDS))
	height := int(C.GDALGetRasterYSize(hDS))
	if width < 2 || height < 2 {
		return nil, fmt.Errorf("dataset %s too small: %dx%d", path, width, height)
	}

	geot := make([]float64, 6)
	if gdalErr := C.GDALGetGeoTransform(hDS, (*C.double)(&geot[0])); gdalErr != 0 {
		return nil, fmt.Errorf("dataset %s has no geotransform", path)
	}
	if geot[2] != 0 || geot[4] != 0 {
		return nil, fmt.Errorf("dataset %s has a rotated geotransform, not supported", path)
	}

	hBand := C.GDALGetRasterBand(hDS, 1)
	if hBand == nil {
		return nil, fmt.Errorf("dataset %s has no raster band", path)
	}

	var hasNoData C.int
	noData := float64(C.GDALGetRasterNoDataValue(hBand, &hasNoData))
	if hasNoData == 0 {
		noData = math.NaN()
	}

	data := make([]float32, width*height)
	gdalErr := C.GDALRasterIO(hBand, C.GF_Read, 0, 0, C.int(width), C.int(height),
		unsafe.Pointer(&data[0]), C.int(width), C.int(height), C.GDT_Float32, 0, 0)
	if gdalErr != 0 {
		return nil, fmt.Errorf("GDALRasterIO() failed reading %s: %v", path, gdalErr)
	}

	lon := make([]float64, width)
	for i := 0; i < width; i++ {
		lon[i] = geot[0] + (float64(i)+0.5)*geot[1]
	}
	lat := make([]float64, height)
	for j := 0; j < height; j++ {
		lat[j] = geot[3] + (float64(j)+0.5)*geot[5]
	}

	return &utils.Dataset{
		Data:    data,
		Width:   width,
		Height:  height,
		Lon:     lon,
		Lat:     lat,
		NoData:  noData,
		ProjWKT: C.GoString(C.GDALGetProjectionRef(hDS)),
	}, nil
}

// WriteGeoTiff persists a dataset as a single-band Float32 GeoTIFF.
func WriteGeoTiff(path string, ds *utils.Dataset) error {
	gi, err := utils.ExtractGeoInfo(ds)
	if err != nil {
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
	hDS := C.GDALCreate(hDriver, cPath, C.int(ds.Width), C.int(ds.Height), 1, C.GDT_Float32, nil)
	if hDS == nil {
		return fmt.Errorf("failed to create %s: %v", path, C.GoString(C.CPLGetLastErrorMsg()))
	}
	defer C.GDALClose(hDS)

	geot := gi.GeoTransform()
	if gdalErr := C.GDALSetGeoTransform(hDS, (*C.double)(&geot[0])); gdalErr != 0 {
		return fmt.Errorf("couldn't set geotransform on %s: %v", path, gdalErr)
	}
	if err := setProjection(hDS, ds.ProjWKT); err != nil {
		return err
	}

	hBand := C.GDALGetRasterBand(hDS, 1)
	if !math.IsNaN(ds.NoData) {
		C.GDALSetRasterNoDataValue(hBand, C.double(ds.NoData))
	}
	gdalErr := C.GDALRasterIO(hBand, C.GF_Write, 0, 0, C.int(ds.Width), C.int(ds.Height),
		unsafe.Pointer(&ds.Data[0]), C.int(ds.Width), C.int(ds.Height), C.GDT_Float32, 0, 0)
	if gdalErr != 0 {
		return fmt.Errorf("GDALRasterIO() failed writing %s: %v", path, gdalErr)
	}
	return nil
}

func setProjection(hDS C.GDALDatasetH, projWKT string) error {
	if projWKT == "" {
		projWKT = utils.WGS84WKT
	}
	cProj := C.CString(projWKT)
	defer C.free(unsafe.Pointer(cProj))
	if gdalErr := C.GDALSetProjection(hDS, cProj); gdalErr != 0 {
		return fmt.Errorf("couldn't set projection: %v", gdalErr)
	}
	return nil
}
