package metrics

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

type FetchInfo struct {
	Duration           time.Duration `json:"duration"`
	StreetEdges        int           `json:"street_edges"`
	BuildingFootprints int           `json:"building_footprints"`
}

type RunInfo struct {
	RunTime     string        `json:"run_time"`
	RunDuration time.Duration `json:"run_duration"`
	Dataset     string        `json:"dataset"`
	CacheHit    bool          `json:"cache_hit"`
	CellsMasked int           `json:"cells_masked"`
	Fetch       *FetchInfo    `json:"fetch"`
}

type Logger interface {
	Log(info *RunInfo)
}

type StdoutLogger struct{}

func NewStdoutLogger() *StdoutLogger {
	return &StdoutLogger{}
}

func (l *StdoutLogger) Log(info *RunInfo) {
	infoStr, err := info.ToJSON()
	if err == nil {
		log.Print(infoStr)
	} else {
		log.Printf("StdoutLogger: error: %v", err)
	}
}

type Collector struct {
	Info   *RunInfo
	logger Logger
}

func NewCollector(logger Logger) *Collector {
	return &Collector{
		Info: &RunInfo{
			RunTime: time.Now().Format(time.RFC3339),
			Fetch:   &FetchInfo{},
		},
		logger: logger,
	}
}

func (c *Collector) Log() {
	if c.logger != nil {
		c.logger.Log(c.Info)
	}
}

func (i *RunInfo) ToJSON() (string, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(i); err != nil {
		return "", fmt.Errorf("error encoding run info: %v", err)
	}
	return buf.String(), nil
}
