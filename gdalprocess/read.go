package gdalprocess

// #include <stdlib.h>
// #include "gdal.h"
// #cgo pkg-config: gdal
import "C"

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/GRIDgva/SwissDataCube/utils"
)

// ReadMask loads a mask raster and aligns it with the reference dataset.
// Zero cells become NaN so that compositing treats them as "nothing present"
// rather than a valid zero value. A grid or spatial reference mismatch
// returns ErrMisaligned.
func ReadMask(path string, ref *utils.Dataset) (*utils.MaskArray, error) {
	refInfo, err := utils.ExtractGeoInfo(ref)
	if err != nil {
		return nil, err
	}

	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))
	hDS := C.GDALOpen(cPath, C.GA_ReadOnly)
	if hDS == nil {
		return nil, fmt.Errorf("GDAL could not open dataset: %s: %v", path, C.GoString(C.CPLGetLastErrorMsg()))
	}
	defer C.GDALClose(hDS)

	width := int(C.GDALGetRasterXSize(hDS))
	height := int(C.GDALGetRasterYSize(hDS))
	geot := make([]float64, 6)
	if gdalErr := C.GDALGetGeoTransform(hDS, (*C.double)(&geot[0])); gdalErr != 0 {
		return nil, fmt.Errorf("%w: %s has no geotransform", ErrMisaligned, path)
	}
	if err := checkAligned(width, height, geot, refInfo); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := checkGeographicSRS(C.GoString(C.GDALGetProjectionRef(hDS))); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	hBand := C.GDALGetRasterBand(hDS, 1)
	if hBand == nil {
		return nil, fmt.Errorf("dataset %s has no raster band", path)
	}

	data := make([]float32, width*height)
	gdalErr := C.GDALRasterIO(hBand, C.GF_Read, 0, 0, C.int(width), C.int(height),
		unsafe.Pointer(&data[0]), C.int(width), C.int(height), C.GDT_Float32, 0, 0)
	if gdalErr != 0 {
		return nil, fmt.Errorf("GDALRasterIO() failed reading %s: %v", path, gdalErr)
	}

	nan := float32(math.NaN())
	for i := range data {
		if data[i] == 0 {
			data[i] = nan
		}
	}

	return &utils.MaskArray{
		Data:   data,
		Width:  width,
		Height: height,
		Lon:    ref.Lon,
		Lat:    ref.Lat,
	}, nil
}
