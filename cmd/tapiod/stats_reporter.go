package main

import (
	"encoding/json"
	"time"

	"github.com/tapio-net/tapio/pkg/core"
	"github.com/tapio-net/tapio/pkg/logging"
	"github.com/tapio-net/tapio/pkg/tap"
)

type statsSnapshot struct {
	Timestamp string     `json:"ts"`
	Device    string     `json:"device"`
	Stats     core.Stats `json:"stats"`
}

// runStatsReporter dumps the device counters as one JSON log line per
// interval, stopping once the device goes inactive.
func runStatsReporter(dev *tap.Device, interval string) {
	d, err := time.ParseDuration(interval)
	if err != nil || d <= 0 {
		d = 30 * time.Second
	}
	ticker := time.NewTicker(d)
	defer ticker.Stop()
	for {
		dumpStats(dev)
		<-ticker.C
		if !dev.Active() {
			return
		}
	}
}

func dumpStats(dev *tap.Device) {
	snap := statsSnapshot{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Device:    dev.Name(),
		Stats:     dev.Stats(),
	}
	b, err := json.Marshal(snap)
	if err != nil {
		logging.Errorf("stats: marshal: %v", err)
		return
	}
	logging.Infof("stats %s", b)
}
