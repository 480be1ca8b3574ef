package osm

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mitroadmaps/gomapinfer/common"
	"github.com/serjvanilla/go-overpass"
	"golang.org/x/net/context"

	"github.com/GRIDgva/SwissDataCube/utils"
)

// ErrNoFeatures is the recoverable outcome of a fetch whose area of interest
// simply contains no such features. The corresponding mask layer is absent
// downstream; it is not a failure.
var ErrNoFeatures = errors.New("no features in area of interest")

// Highway classes that make up the drivable road network. Footways, paths,
// cycleways and construction stay out of the mask.
const driveHighwayClasses = "motorway|motorway_link|trunk|trunk_link|primary|primary_link|" +
	"secondary|secondary_link|tertiary|tertiary_link|unclassified|residential|living_street"

type Fetcher struct {
	client  overpass.Client
	timeout time.Duration
}

func NewFetcher(endpoint string, timeout time.Duration) *Fetcher {
	httpClient := &http.Client{
		Timeout: timeout,
	}
	client := overpass.NewWithSettings(endpoint, 1, httpClient)
	return &Fetcher{
		client:  client,
		timeout: timeout,
	}
}

// FetchStreets queries the drivable road network intersecting the bounding
// box and returns it as a graph with edges truncated at the boundary.
func (f *Fetcher) FetchStreets(ctx context.Context, gi *utils.GeoInfo) (*common.Graph, error) {
	result, err := f.executeQuery(ctx, streetsQuery(gi, f.timeout))
	if err != nil {
		return nil, fmt.Errorf("street network query failed: %w", err)
	}

	graph := BuildStreetGraph(result, boundingRect(gi))
	if len(graph.Edges) == 0 {
		return nil, fmt.Errorf("streets: %w", ErrNoFeatures)
	}
	return graph, nil
}

// FetchBuildings queries building footprints intersecting the bounding box
// and returns them as closed polygon WKTs.
func (f *Fetcher) FetchBuildings(ctx context.Context, gi *utils.GeoInfo) ([]string, error) {
	result, err := f.executeQuery(ctx, buildingsQuery(gi, f.timeout))
	if err != nil {
		return nil, fmt.Errorf("building footprint query failed: %w", err)
	}

	wkts := BuildingPolygonWKTs(result, boundingRect(gi))
	if len(wkts) == 0 {
		return nil, fmt.Errorf("buildings: %w", ErrNoFeatures)
	}
	return wkts, nil
}

func (f *Fetcher) executeQuery(ctx context.Context, query string) (*overpass.Result, error) {
	// The overpass client has no context support; the HTTP client timeout
	// bounds the call instead.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := f.client.Query(query)
	if err != nil {
		return nil, fmt.Errorf("overpass query failed: %w", err)
	}
	return &result, nil
}

// streetsQuery selects drivable highway ways within (south,west,north,east).
func streetsQuery(gi *utils.GeoInfo, timeout time.Duration) string {
	return fmt.Sprintf(`
		[out:json][timeout:%d];
		(
			way["highway"~"^(%s)$"](%.7f,%.7f,%.7f,%.7f);
		);
		out body;
		>;
		out skel qt;
	`, int(timeout.Seconds()), driveHighwayClasses,
		gi.MinLat, gi.MinLon, gi.MaxLat, gi.MaxLon)
}

func buildingsQuery(gi *utils.GeoInfo, timeout time.Duration) string {
	return fmt.Sprintf(`
		[out:json][timeout:%d];
		(
			way["building"](%.7f,%.7f,%.7f,%.7f);
		);
		out body;
		>;
		out skel qt;
	`, int(timeout.Seconds()),
		gi.MinLat, gi.MinLon, gi.MaxLat, gi.MaxLon)
}

func boundingRect(gi *utils.GeoInfo) common.Rectangle {
	return common.Rectangle{
		Min: common.Point{X: gi.MinLon, Y: gi.MinLat},
		Max: common.Point{X: gi.MaxLon, Y: gi.MaxLat},
	}
}
