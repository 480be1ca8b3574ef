package osm

import (
	"math"
	"strings"
	"testing"

	"github.com/mitroadmaps/gomapinfer/common"
	"github.com/serjvanilla/go-overpass"
)

func node(id int64, lon, lat float64) *overpass.Node {
	n := &overpass.Node{Lat: lat, Lon: lon}
	n.ID = id
	return n
}

func way(id int64, tags map[string]string, nodes ...*overpass.Node) *overpass.Way {
	w := &overpass.Way{Nodes: nodes}
	w.ID = id
	w.Tags = tags
	return w
}

func resultWithWays(ways ...*overpass.Way) *overpass.Result {
	result := &overpass.Result{Ways: make(map[int64]*overpass.Way)}
	for _, w := range ways {
		result.Ways[w.ID] = w
	}
	return result
}

var testBounds = common.Rectangle{
	Min: common.Point{X: 7.0, Y: 46.0},
	Max: common.Point{X: 8.0, Y: 47.0},
}

func TestClipSegmentInside(t *testing.T) {
	seg := common.Segment{Start: common.Point{X: 7.1, Y: 46.1}, End: common.Point{X: 7.2, Y: 46.2}}
	out, ok := clipSegment(seg, testBounds)
	if !ok || out != seg {
		t.Errorf("interior segment must be unchanged, got %v (%v)", out, ok)
	}
}

func TestClipSegmentTruncatedAtBoundary(t *testing.T) {
	seg := common.Segment{Start: common.Point{X: 7.5, Y: 46.5}, End: common.Point{X: 9.0, Y: 46.5}}
	out, ok := clipSegment(seg, testBounds)
	if !ok {
		t.Fatalf("crossing segment must survive clipping")
	}
	if math.Abs(out.End.X-8.0) > 1e-9 || out.End.Y != 46.5 {
		t.Errorf("segment not truncated at the east boundary: %v", out)
	}
	if out.Start != seg.Start {
		t.Errorf("interior endpoint moved: %v", out)
	}
}

func TestClipSegmentOutside(t *testing.T) {
	seg := common.Segment{Start: common.Point{X: 9.0, Y: 48.0}, End: common.Point{X: 9.5, Y: 48.5}}
	if _, ok := clipSegment(seg, testBounds); ok {
		t.Errorf("segment outside the bounds must be dropped")
	}
}

func TestBuildStreetGraphSharesIntersections(t *testing.T) {
	shared := node(2, 7.2, 46.2)
	result := resultWithWays(
		way(10, map[string]string{"highway": "residential"}, node(1, 7.1, 46.1), shared),
		way(11, map[string]string{"highway": "residential"}, shared, node(3, 7.3, 46.3)),
	)

	graph := BuildStreetGraph(result, testBounds)
	if len(graph.Nodes) != 3 {
		t.Errorf("expected 3 graph nodes with a shared intersection, got %d", len(graph.Nodes))
	}

	wkts := StreetWKTs(graph)
	if len(wkts) != 2 {
		t.Errorf("expected 2 undirected edges, got %d: %v", len(wkts), wkts)
	}
	for _, wkt := range wkts {
		if !strings.HasPrefix(wkt, "LINESTRING (") {
			t.Errorf("unexpected WKT: %s", wkt)
		}
	}
}

func TestBuildStreetGraphTruncatesAtBounds(t *testing.T) {
	result := resultWithWays(
		way(10, map[string]string{"highway": "primary"}, node(1, 7.9, 46.5), node(2, 8.5, 46.5)),
	)

	graph := BuildStreetGraph(result, testBounds)
	if len(graph.Edges) == 0 {
		t.Fatalf("boundary-crossing way must keep its interior part")
	}
	for _, edge := range graph.Edges {
		for _, p := range []common.Point{edge.Src.Point, edge.Dst.Point} {
			if p.X > 8.0+1e-9 {
				t.Errorf("edge endpoint outside the AOI: %v", p)
			}
		}
	}
}

func TestBuildStreetGraphDropsOutsideWays(t *testing.T) {
	result := resultWithWays(
		way(10, map[string]string{"highway": "primary"}, node(1, 9.0, 48.0), node(2, 9.1, 48.1)),
	)
	graph := BuildStreetGraph(result, testBounds)
	if len(graph.Edges) != 0 {
		t.Errorf("ways outside the AOI must not produce edges")
	}
}

func TestBuildingPolygonWKTs(t *testing.T) {
	corner := node(1, 7.1, 46.1)
	closed := way(20, map[string]string{"building": "yes"},
		corner, node(2, 7.1, 46.2), node(3, 7.2, 46.2), node(4, 7.2, 46.1), corner)
	open := way(21, map[string]string{"building": "yes"},
		node(5, 7.3, 46.3), node(6, 7.3, 46.4), node(7, 7.4, 46.4), node(8, 7.4, 46.3))
	outside := way(22, map[string]string{"building": "yes"},
		node(9, 9.0, 48.0), node(10, 9.0, 48.1), node(11, 9.1, 48.1), node(9, 9.0, 48.0))

	wkts := BuildingPolygonWKTs(resultWithWays(closed, open, outside), testBounds)
	if len(wkts) != 1 {
		t.Fatalf("expected exactly the closed in-bounds footprint, got %d: %v", len(wkts), wkts)
	}
	if !strings.HasPrefix(wkts[0], "POLYGON ((") || !strings.HasSuffix(wkts[0], "))") {
		t.Errorf("unexpected WKT: %s", wkts[0])
	}
	if !strings.Contains(wkts[0], "7.1000000 46.1000000") {
		t.Errorf("polygon misses its first corner: %s", wkts[0])
	}
}
