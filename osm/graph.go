package osm

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mitroadmaps/gomapinfer/common"
	"github.com/serjvanilla/go-overpass"
)

// BuildStreetGraph converts OSM way geometry into an undirected street graph,
// clipping each way segment at the bounding rectangle. Nodes are deduplicated
// by position so shared intersections become shared graph nodes.
func BuildStreetGraph(result *overpass.Result, bounds common.Rectangle) *common.Graph {
	graph := &common.Graph{}
	nodesByPos := make(map[[2]float64]*common.Node)
	getNode := func(p common.Point) *common.Node {
		key := [2]float64{p.X, p.Y}
		if node, ok := nodesByPos[key]; ok {
			return node
		}
		node := graph.AddNode(p)
		nodesByPos[key] = node
		return node
	}

	for _, way := range sortedWays(result) {
		for i := 0; i+1 < len(way.Nodes); i++ {
			a, b := way.Nodes[i], way.Nodes[i+1]
			if a == nil || b == nil {
				continue
			}
			segment := common.Segment{
				Start: common.Point{X: a.Lon, Y: a.Lat},
				End:   common.Point{X: b.Lon, Y: b.Lat},
			}
			clipped, ok := clipSegment(segment, bounds)
			if !ok || clipped.Start == clipped.End {
				continue
			}
			src := getNode(clipped.Start)
			dst := getNode(clipped.End)
			if src == dst {
				continue
			}
			graph.AddBidirectionalEdge(src, dst)
		}
	}
	return graph
}

// StreetWKTs emits one LINESTRING per undirected graph edge. Bidirectional
// edge pairs collapse to a single geometry.
func StreetWKTs(graph *common.Graph) []string {
	var wkts []string
	for _, edge := range graph.Edges {
		if edge.Src.ID > edge.Dst.ID {
			continue
		}
		segment := edge.Segment()
		wkts = append(wkts, fmt.Sprintf("LINESTRING (%.7f %.7f,%.7f %.7f)",
			segment.Start.X, segment.Start.Y, segment.End.X, segment.End.Y))
	}
	return wkts
}

// BuildingPolygonWKTs extracts closed building ways intersecting the bounding
// rectangle as POLYGON WKTs. Open ways and point features are skipped;
// footprints are not clipped, the raster grid bounds them later.
func BuildingPolygonWKTs(result *overpass.Result, bounds common.Rectangle) []string {
	var wkts []string
	for _, way := range sortedWays(result) {
		if _, ok := way.Tags["building"]; !ok {
			continue
		}
		if len(way.Nodes) < 4 {
			continue
		}
		first, last := way.Nodes[0], way.Nodes[len(way.Nodes)-1]
		if first == nil || last == nil || first.ID != last.ID {
			continue
		}

		rect := common.EmptyRectangle
		ring := make([]string, 0, len(way.Nodes))
		valid := true
		for _, node := range way.Nodes {
			if node == nil {
				valid = false
				break
			}
			point := common.Point{X: node.Lon, Y: node.Lat}
			rect = rect.Extend(point)
			ring = append(ring, fmt.Sprintf("%.7f %.7f", point.X, point.Y))
		}
		if !valid || !rect.Intersects(bounds) {
			continue
		}
		wkts = append(wkts, fmt.Sprintf("POLYGON ((%s))", strings.Join(ring, ",")))
	}
	return wkts
}

func sortedWays(result *overpass.Result) []*overpass.Way {
	ways := make([]*overpass.Way, 0, len(result.Ways))
	for _, way := range result.Ways {
		if way != nil {
			ways = append(ways, way)
		}
	}
	sort.Slice(ways, func(i, j int) bool { return ways[i].ID < ways[j].ID })
	return ways
}

// clipSegment truncates a segment at the rectangle boundary (Liang-Barsky).
// The boolean is false when the segment lies entirely outside.
func clipSegment(segment common.Segment, rect common.Rectangle) (common.Segment, bool) {
	dx := segment.End.X - segment.Start.X
	dy := segment.End.Y - segment.Start.Y

	p := [4]float64{-dx, dx, -dy, dy}
	q := [4]float64{
		segment.Start.X - rect.Min.X,
		rect.Max.X - segment.Start.X,
		segment.Start.Y - rect.Min.Y,
		rect.Max.Y - segment.Start.Y,
	}

	t0, t1 := 0.0, 1.0
	for i := 0; i < 4; i++ {
		if p[i] == 0 {
			if q[i] < 0 {
				return common.Segment{}, false
			}
			continue
		}
		r := q[i] / p[i]
		if p[i] < 0 {
			if r > t1 {
				return common.Segment{}, false
			}
			if r > t0 {
				t0 = r
			}
		} else {
			if r < t0 {
				return common.Segment{}, false
			}
			if r < t1 {
				t1 = r
			}
		}
	}

	return common.Segment{
		Start: common.Point{X: segment.Start.X + t0*dx, Y: segment.Start.Y + t0*dy},
		End:   common.Point{X: segment.Start.X + t1*dx, Y: segment.Start.Y + t1*dy},
	}, true
}
