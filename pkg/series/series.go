// Package series builds the per-sample time series of forwarding-table
// changes, one stage per telemetry source. Every stage reads its input log
// from the sample directory, resolves the rows through the shared lookup
// context, and writes one canonical trace file under the sample's
// time_series_of_forwarding_states_<timestamp> directory.
//
// Stages share one contract: a missing input log is recorded as "not
// updated" and is never an error; an already existing output is skipped
// unless Replace is set; every emitted record satisfies
// time >= event start - 1; output files are sorted by time ascending.
package series

import (
	"os"
	"path/filepath"

	"github.com/fibtrace-net/fibtrace/pkg/util"
)

// Params carries the per-sample context every stage needs.
type Params struct {
	// Dir is the scenario evaluation directory holding the sample's logs.
	Dir string
	// Timestamp is the execution timestamp namespacing the sample's files.
	Timestamp string
	// Pcap names the packet capture the BGP update rows were demuxed from.
	Pcap string
	// EventStart is the time the routing event was injected; records older
	// than EventStart-1 are discarded.
	EventStart float64
	// Replace recomputes outputs that already exist.
	Replace bool
}

// OutDir returns the sample's trace directory.
func (p Params) OutDir() string {
	return filepath.Join(p.Dir, "time_series_of_forwarding_states_"+p.Timestamp)
}

// outPath creates the trace directory and returns the path for one stage's
// output file.
func (p Params) outPath(stage string) (string, error) {
	dir := p.OutDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return filepath.Join(dir, stage+".csv"), nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// skipMissing logs and reports an absent input log.
func skipMissing(stage, path string) bool {
	if fileExists(path) {
		return false
	}
	util.WithStage(stage).Warnf("input log doesn't exist, skipping this sample: %s", path)
	return true
}
