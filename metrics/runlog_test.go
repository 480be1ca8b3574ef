package metrics

import (
	"strings"
	"testing"
)

func TestRunInfoToJSON(t *testing.T) {
	collector := NewCollector(nil)
	collector.Info.Dataset = "scene.tif"
	collector.Info.CacheHit = true
	collector.Info.CellsMasked = 42
	collector.Info.Fetch.StreetEdges = 7

	out, err := collector.Info.ToJSON()
	if err != nil {
		t.Fatalf("run info encoding failed: %v", err)
	}
	for _, want := range []string{`"dataset":"scene.tif"`, `"cache_hit":true`, `"cells_masked":42`, `"street_edges":7`} {
		if !strings.Contains(out, want) {
			t.Errorf("encoded run info misses %s: %s", want, out)
		}
	}
}
