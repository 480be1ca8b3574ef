package utils

import (
	"errors"
	"fmt"
	"math"
)

const WGS84WKT = `GEOGCS["WGS 84",DATUM["WGS_1984",SPHEROID["WGS 84",6378137,298.257223563,AUTHORITY["EPSG","7030"]],AUTHORITY["EPSG","6326"]],PRIMEM["Greenwich",0,AUTHORITY["EPSG","8901"]],UNIT["degree",0.01745329251994328,AUTHORITY["EPSG","9122"]],AUTHORITY["EPSG","4326"]]`

// ErrInvalidGeoInfo flags datasets whose coordinate arrays cannot support a
// bounding box: missing axes, non-monotonic values or a degenerate extent.
var ErrInvalidGeoInfo = errors.New("invalid geo info")

// Dataset is a single-band raster held in memory together with its cell
// centre coordinates. Data is row-major with the first row at MaxLat.
type Dataset struct {
	Data    []float32
	Width   int
	Height  int
	Lon     []float64
	Lat     []float64
	NoData  float64
	ProjWKT string
}

// MaskArray shares the grid of a Dataset. Cells not covered by any feature
// hold NaN, covered cells hold the burn value.
type MaskArray struct {
	Data   []float32
	Width  int
	Height int
	Lon    []float64
	Lat    []float64
}

type GeoInfo struct {
	MinLon      float64
	MaxLon      float64
	MinLat      float64
	MaxLat      float64
	PixelWidth  float64
	PixelHeight float64
	Width       int
	Height      int
}

func (d *Dataset) Copy() *Dataset {
	out := &Dataset{
		Data:    make([]float32, len(d.Data)),
		Width:   d.Width,
		Height:  d.Height,
		Lon:     make([]float64, len(d.Lon)),
		Lat:     make([]float64, len(d.Lat)),
		NoData:  d.NoData,
		ProjWKT: d.ProjWKT,
	}
	copy(out.Data, d.Data)
	copy(out.Lon, d.Lon)
	copy(out.Lat, d.Lat)
	return out
}

func NewMaskArray(ref *Dataset) *MaskArray {
	m := &MaskArray{
		Data:   make([]float32, ref.Width*ref.Height),
		Width:  ref.Width,
		Height: ref.Height,
		Lon:    ref.Lon,
		Lat:    ref.Lat,
	}
	nan := float32(math.NaN())
	for i := range m.Data {
		m.Data[i] = nan
	}
	return m
}

// ExtractGeoInfo derives the bounding box and pixel size of a dataset from
// its coordinate arrays. The bounds are cell centre bounds, matching the
// coordinate values, not the outer cell edges.
func ExtractGeoInfo(ds *Dataset) (*GeoInfo, error) {
	if len(ds.Lon) < 2 || len(ds.Lat) < 2 {
		return nil, fmt.Errorf("%w: dataset requires at least 2x2 coordinates, got %dx%d", ErrInvalidGeoInfo, len(ds.Lon), len(ds.Lat))
	}
	if len(ds.Lon) != ds.Width || len(ds.Lat) != ds.Height {
		return nil, fmt.Errorf("%w: coordinate arrays %dx%d do not match grid %dx%d", ErrInvalidGeoInfo, len(ds.Lon), len(ds.Lat), ds.Width, ds.Height)
	}
	if !monotonic(ds.Lon) || !monotonic(ds.Lat) {
		return nil, fmt.Errorf("%w: coordinate arrays must be strictly monotonic", ErrInvalidGeoInfo)
	}

	gi := &GeoInfo{
		MinLon:      math.Min(ds.Lon[0], ds.Lon[len(ds.Lon)-1]),
		MaxLon:      math.Max(ds.Lon[0], ds.Lon[len(ds.Lon)-1]),
		MinLat:      math.Min(ds.Lat[0], ds.Lat[len(ds.Lat)-1]),
		MaxLat:      math.Max(ds.Lat[0], ds.Lat[len(ds.Lat)-1]),
		PixelWidth:  math.Abs(ds.Lon[1] - ds.Lon[0]),
		PixelHeight: math.Abs(ds.Lat[1] - ds.Lat[0]),
		Width:       ds.Width,
		Height:      ds.Height,
	}
	if gi.MaxLon-gi.MinLon == 0 || gi.MaxLat-gi.MinLat == 0 {
		return nil, fmt.Errorf("%w: degenerate zero-area extent", ErrInvalidGeoInfo)
	}
	return gi, nil
}

// GeoTransform returns the GDAL affine transform of the grid, placing the
// origin on the outer edge of the top-left cell.
func (gi *GeoInfo) GeoTransform() []float64 {
	return []float64{
		gi.MinLon - gi.PixelWidth/2.0, gi.PixelWidth, 0,
		gi.MaxLat + gi.PixelHeight/2.0, 0, -gi.PixelHeight,
	}
}

// Clip shrinks the bounding box to its intersection with the supplied
// envelope. The grid and pixel size are unchanged.
func (gi *GeoInfo) Clip(minLon, minLat, maxLon, maxLat float64) (*GeoInfo, error) {
	out := *gi
	out.MinLon = math.Max(gi.MinLon, minLon)
	out.MaxLon = math.Min(gi.MaxLon, maxLon)
	out.MinLat = math.Max(gi.MinLat, minLat)
	out.MaxLat = math.Min(gi.MaxLat, maxLat)
	if out.MinLon >= out.MaxLon || out.MinLat >= out.MaxLat {
		return nil, fmt.Errorf("%w: AOI does not overlap dataset extent", ErrInvalidGeoInfo)
	}
	return &out, nil
}

func monotonic(vals []float64) bool {
	asc := vals[1] > vals[0]
	for i := 1; i < len(vals); i++ {
		if asc && vals[i] <= vals[i-1] {
			return false
		}
		if !asc && vals[i] >= vals[i-1] {
			return false
		}
	}
	return true
}
