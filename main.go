// Program sdc-osm-mask removes man-made infrastructure from satellite rasters.
// It downloads the OSM drivable road network and building footprints covering
// the dataset extent, rasterizes them onto the dataset grid and nulls out
// every covered cell, caching the intermediate vector and raster products in
// a working directory for subsequent runs.
package main

import (
	"flag"
	"log"
	"time"

	"golang.org/x/net/context"

	"github.com/GRIDgva/SwissDataCube/gdalprocess"
	"github.com/GRIDgva/SwissDataCube/metrics"
	"github.com/GRIDgva/SwissDataCube/osm"
	"github.com/GRIDgva/SwissDataCube/processor"
	"github.com/GRIDgva/SwissDataCube/utils"
)

var (
	inputFile  = flag.String("f", "", "Input GeoTIFF file.")
	outputFile = flag.String("o", "masked.tif", "Output GeoTIFF file with infrastructure cells nulled out.")
	configFile = flag.String("conf", "", "YAML config file.")
	workDir    = flag.String("workdir", "", "Working directory for cached vector and raster products. Overrides the config file.")
	aoiFile    = flag.String("aoi", "", "Optional GeoJSON feature limiting the area of interest.")
	plotFile   = flag.String("plot", "", "Optional PNG overlay of the fetched streets and buildings.")
	verbose    = flag.Bool("v", false, "Verbose mode for more pipeline outputs.")
)

func ensure(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	flag.Parse()

	if *inputFile == "" {
		log.Fatal("Please provide an input GeoTIFF with -f")
	}

	config, err := utils.LoadConfig(*configFile)
	ensure(err)
	if *workDir != "" {
		config.WorkDir = *workDir
	}

	utils.InitGdal()

	start := time.Now()
	collector := metrics.NewCollector(metrics.NewStdoutLogger())
	collector.Info.Dataset = *inputFile

	ds, err := gdalprocess.Open(*inputFile)
	ensure(err)

	pipeline := &processor.MaskPipeline{
		WorkDir:        config.WorkDir,
		Fetcher:        osm.NewFetcher(config.OverpassEndpoint, config.OverpassTimeout()),
		BufferPixels:   config.BufferPixels,
		AllTouched:     config.AllTouched,
		AOIFeaturePath: *aoiFile,
		Verbose:        *verbose,
		Collector:      collector,
	}

	filtered, mask, err := pipeline.Process(context.Background(), ds)
	ensure(err)

	ensure(gdalprocess.WriteGeoTiff(*outputFile, filtered))
	if *verbose {
		log.Printf("wrote %s with %d cells masked", *outputFile, processor.MaskedCellCount(mask))
	}

	if *plotFile != "" || config.Plot {
		plotPath := *plotFile
		if plotPath == "" {
			plotPath = "mask_overlay.png"
		}
		streets, err := gdalprocess.ReadMask(pipeline.StreetsRasterPath(), ds)
		if err != nil && *verbose {
			log.Printf("overlay: streets raster unavailable: %v", err)
		}
		buildings, err := gdalprocess.ReadMask(pipeline.BuildingsRasterPath(), ds)
		if err != nil && *verbose {
			log.Printf("overlay: buildings raster unavailable: %v", err)
		}
		ensure(processor.WriteOverlayPNG(plotPath, ds, streets, buildings))
	}

	collector.Info.RunDuration = time.Since(start)
	collector.Log()
}
