package processor

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/mitroadmaps/gomapinfer/common"
	"golang.org/x/net/context"

	"github.com/GRIDgva/SwissDataCube/gdalprocess"
	"github.com/GRIDgva/SwissDataCube/metrics"
	"github.com/GRIDgva/SwissDataCube/osm"
	"github.com/GRIDgva/SwissDataCube/utils"
)

// ErrCacheMiss wraps any failure to load previously generated mask rasters:
// missing files, read errors and grid misalignment all trigger regeneration.
var ErrCacheMiss = errors.New("mask cache miss")

// FeatureFetcher supplies the OSM infrastructure covering an area of
// interest. osm.Fetcher is the production implementation; both methods
// return osm.ErrNoFeatures when the area contains no such features.
type FeatureFetcher interface {
	FetchStreets(ctx context.Context, gi *utils.GeoInfo) (*common.Graph, error)
	FetchBuildings(ctx context.Context, gi *utils.GeoInfo) ([]string, error)
}

// MaskPipeline masks a raster dataset with OSM infrastructure. It has two
// states: the cached state loads the mask rasters persisted by an earlier
// run, the regenerate state rebuilds them from a fresh OSM download. Any
// cache-miss-class failure moves it from the first state to the second;
// fetch transport failures and validation errors propagate to the caller.
type MaskPipeline struct {
	WorkDir        string
	Fetcher        FeatureFetcher
	BufferPixels   float64
	AllTouched     bool
	AOIFeaturePath string
	Verbose        bool
	Collector      *metrics.Collector
}

func (p *MaskPipeline) aoiPath() string {
	return filepath.Join(p.WorkDir, "aoi_limited.shp")
}
func (p *MaskPipeline) streetsShpPath() string {
	return filepath.Join(p.WorkDir, "streets", "edges", "edges.shp")
}
func (p *MaskPipeline) streetsBufferShpPath() string {
	return filepath.Join(p.WorkDir, "streets", "edges", "buffer.shp")
}
func (p *MaskPipeline) StreetsRasterPath() string {
	return filepath.Join(p.WorkDir, "streets", "edges", "buffer.tif")
}
func (p *MaskPipeline) buildingsShpPath() string {
	return filepath.Join(p.WorkDir, "buildings", "buildings.shp")
}
func (p *MaskPipeline) BuildingsRasterPath() string {
	return filepath.Join(p.WorkDir, "buildings", "buildings.tif")
}

// Process masks the dataset and returns the filtered copy along with the
// mask that was applied. The input dataset is never mutated.
func (p *MaskPipeline) Process(ctx context.Context, ds *utils.Dataset) (*utils.Dataset, *utils.MaskArray, error) {
	gi, err := utils.ExtractGeoInfo(ds)
	if err != nil {
		return nil, nil, err
	}

	fetchGi := gi
	if p.AOIFeaturePath != "" {
		minLon, minLat, maxLon, maxLat, err := gdalprocess.FeatureEnvelope(p.AOIFeaturePath)
		if err != nil {
			return nil, nil, err
		}
		fetchGi, err = gi.Clip(minLon, minLat, maxLon, maxLat)
		if err != nil {
			return nil, nil, err
		}
	}

	mask, err := p.loadCached(ds)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			return nil, nil, err
		}
		if p.Verbose {
			log.Printf("mask cache unavailable, regenerating: %v", err)
		}
		mask, err = p.regenerate(ctx, ds, gi, fetchGi)
		if err != nil {
			return nil, nil, err
		}
	} else if p.Collector != nil {
		p.Collector.Info.CacheHit = true
	}

	if p.Collector != nil {
		p.Collector.Info.CellsMasked = MaskedCellCount(mask)
	}
	return Apply(ds, mask), mask, nil
}

// loadCached composites the cached streets and buildings rasters. Both must
// load and overlay the reference grid; every failure is a cache miss.
func (p *MaskPipeline) loadCached(ds *utils.Dataset) (*utils.MaskArray, error) {
	streets, err := gdalprocess.ReadMask(p.StreetsRasterPath(), ds)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCacheMiss, err)
	}
	buildings, err := gdalprocess.ReadMask(p.BuildingsRasterPath(), ds)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCacheMiss, err)
	}
	return Composite(streets, buildings), nil
}

func (p *MaskPipeline) regenerate(ctx context.Context, ds *utils.Dataset, gi, fetchGi *utils.GeoInfo) (*utils.MaskArray, error) {
	if err := gdalprocess.WriteAOIShapefile(p.aoiPath(), fetchGi); err != nil {
		return nil, err
	}

	fetchStart := time.Now()
	streets, err := p.regenerateStreets(ctx, ds, gi, fetchGi)
	if err != nil {
		return nil, err
	}
	buildings, err := p.regenerateBuildings(ctx, ds, gi, fetchGi)
	if err != nil {
		return nil, err
	}
	if p.Collector != nil {
		p.Collector.Info.Fetch.Duration = time.Since(fetchStart)
	}

	mask := Composite(streets, buildings)
	if mask == nil && p.Verbose {
		log.Printf("no infrastructure found in AOI, dataset left unmasked")
	}
	return mask, nil
}

func (p *MaskPipeline) regenerateStreets(ctx context.Context, ds *utils.Dataset, gi, fetchGi *utils.GeoInfo) (*utils.MaskArray, error) {
	graph, err := p.Fetcher.FetchStreets(ctx, fetchGi)
	if err != nil {
		if errors.Is(err, osm.ErrNoFeatures) {
			log.Printf("no streets in AOI: %v", err)
			return nil, nil
		}
		return nil, err
	}

	wkts := osm.StreetWKTs(graph)
	if p.Collector != nil {
		p.Collector.Info.Fetch.StreetEdges = len(wkts)
	}
	if err := gdalprocess.WriteShapefile(p.streetsShpPath(), wkts); err != nil {
		return nil, err
	}

	rasterSrc := p.streetsShpPath()
	if p.BufferPixels > 0 {
		distance := p.BufferPixels * gi.PixelWidth
		if err := gdalprocess.BufferShapefile(p.streetsShpPath(), p.streetsBufferShpPath(), distance); err != nil {
			return nil, err
		}
		rasterSrc = p.streetsBufferShpPath()
	}
	if err := gdalprocess.Rasterize(rasterSrc, p.StreetsRasterPath(), gi, p.AllTouched); err != nil {
		return nil, err
	}
	return gdalprocess.ReadMask(p.StreetsRasterPath(), ds)
}

func (p *MaskPipeline) regenerateBuildings(ctx context.Context, ds *utils.Dataset, gi, fetchGi *utils.GeoInfo) (*utils.MaskArray, error) {
	wkts, err := p.Fetcher.FetchBuildings(ctx, fetchGi)
	if err != nil {
		if errors.Is(err, osm.ErrNoFeatures) {
			log.Printf("no buildings in AOI: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if p.Collector != nil {
		p.Collector.Info.Fetch.BuildingFootprints = len(wkts)
	}
	if err := gdalprocess.WriteShapefile(p.buildingsShpPath(), wkts); err != nil {
		return nil, err
	}
	if err := gdalprocess.Rasterize(p.buildingsShpPath(), p.BuildingsRasterPath(), gi, p.AllTouched); err != nil {
		return nil, err
	}
	return gdalprocess.ReadMask(p.BuildingsRasterPath(), ds)
}
