package gdalprocess

import (
	"fmt"

	"github.com/GRIDgva/SwissDataCube/utils"
)

// AOIPolygonWKT builds the closed axis-aligned rectangle covering the geo
// info bounding box. Corner order is (minx,miny), (minx,maxy), (maxx,maxy),
// (maxx,miny), back to (minx,miny).
func AOIPolygonWKT(gi *utils.GeoInfo) string {
	return fmt.Sprintf("POLYGON ((%f %f,%f %f,%f %f,%f %f,%f %f))",
		gi.MinLon, gi.MinLat,
		gi.MinLon, gi.MaxLat,
		gi.MaxLon, gi.MaxLat,
		gi.MaxLon, gi.MinLat,
		gi.MinLon, gi.MinLat)
}
