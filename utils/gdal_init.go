package utils

// #include "gdal.h"
// #include "gdal_frmts.h"
// #cgo pkg-config: gdal
import "C"

import (
	"os"
)

func InitGdal() {
	setDefaultEnv("GDAL_PAM_ENABLED", "NO")
	setDefaultEnv("GDAL_DISABLE_READDIR_ON_OPEN", "EMPTY_DIR")
	setDefaultEnv("SHAPE_ENCODING", "UTF-8")

	registerGDALDrivers()
}

func setDefaultEnv(envVar string, defaultVal string) {
	if _, ok := os.LookupEnv(envVar); !ok {
		os.Setenv(envVar, defaultVal)
	}
}

func registerGDALDrivers() {
	// Register GTiff first so it sits at the front of the driver list
	// (drivers are interrogated in a linear scan). The shapefile driver
	// comes in with the GDALAllRegister pass below.
	var haveGTiff bool

	C.GDALAllRegister()
	for i := 0; i < int(C.GDALGetDriverCount()); i++ {
		driver := C.GDALGetDriver(C.int(i))
		if C.GoString(C.GDALGetDriverShortName(driver)) == "GTiff" {
			haveGTiff = true
		}
	}

	for i := int(C.GDALGetDriverCount()) - 1; i >= 0; i-- {
		driver := C.GDALGetDriver(C.int(i))
		C.GDALDeregisterDriver(driver)
	}

	if haveGTiff {
		C.GDALRegister_GTiff()
	}
	C.GDALAllRegister()
}
