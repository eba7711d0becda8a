// Package testutil provides shared fixtures for unit tests: a small
// three-router topology plus helpers that lay out sample directories the
// way the testbed controller does.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fibtrace-net/fibtrace/pkg/lookup"
	"github.com/fibtrace-net/fibtrace/pkg/scenario"
)

// Fixture constants shared by all sample-directory helpers.
const (
	// Timestamp namespaces the fixture sample's files.
	Timestamp = "20260301-120000"
	// Pcap names the fixture sample's packet capture.
	Pcap = "capture-01"
	// EventStart is the fixture sample's event injection time.
	EventStart = 100.0
	// HardwareFile names the fixture sample's hardware mapping.
	HardwareFile = "hardware_" + Timestamp + ".json"
)

// ScenarioYAML is a three-router topology: r1 and r3 reach each other via
// r2, and r1 forwards 100.0.1.0/24 via r2 before the event.
const ScenarioYAML = `name: test
routers:
  - id: 1
    name: r1
  - id: 2
    name: r2
  - id: 3
    name: r3
ospf:
  - {src: 1, dst: 2, next_hop: 2}
  - {src: 1, dst: 3, next_hop: 2}
  - {src: 2, dst: 1, next_hop: 1}
  - {src: 2, dst: 3, next_hop: 3}
  - {src: 3, dst: 1, next_hop: 2}
  - {src: 3, dst: 2, next_hop: 2}
initial_forwarding:
  - {router: 1, prefix: 100.0.1.0/24, next_hops: [2]}
`

// HardwareJSON maps the fixture routers onto the testbed: each router owns
// a /30 loopback network and one interface address.
const HardwareJSON = `{
  "1": {"name": "r1", "ipv4_net": "10.0.1.0/30", "ifaces": [{"name": "eth0", "ipv4": "192.168.1.1"}]},
  "2": {"name": "r2", "ipv4_net": "10.0.2.0/30", "ifaces": [{"name": "eth0", "ipv4": "192.168.2.1"}]},
  "3": {"name": "r3", "ipv4_net": "10.0.3.0/30", "ifaces": [{"name": "eth0", "ipv4": "192.168.3.1"}]}
}`

// SamplesCSV is the capture metadata row for the fixture sample.
const SamplesCSV = `execution_timestamp,execution_duration,event_start,pcap_filename,hardware_mapping_filename,num_prefixes,packets_dropped
` + Timestamp + `,30.0,100,` + Pcap + `,` + HardwareFile + `,1,0`

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// WriteLines writes newline-joined lines to path.
func WriteLines(t *testing.T, path string, lines ...string) {
	t.Helper()
	WriteFile(t, path, strings.Join(lines, "\n")+"\n")
}

// SampleDir lays out a scenario evaluation directory for the fixture
// sample under a temp root: scenario description, hardware mapping,
// capture metadata, and an empty raw log directory. Log files are added by
// the individual tests.
func SampleDir(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "clique", "delayed")
	WriteFile(t, filepath.Join(dir, "scenario.yml"), ScenarioYAML)
	WriteFile(t, filepath.Join(dir, HardwareFile), HardwareJSON)
	WriteFile(t, filepath.Join(dir, "samples.csv"), SamplesCSV)
	if err := os.MkdirAll(filepath.Join(dir, "logs_"+Timestamp), 0755); err != nil {
		t.Fatalf("creating log dir: %v", err)
	}
	return dir
}

// LoadScenario loads the fixture scenario.
func LoadScenario(t *testing.T) *scenario.Scenario {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yml")
	WriteFile(t, path, ScenarioYAML)
	scn, err := scenario.Load(path)
	if err != nil {
		t.Fatalf("loading fixture scenario: %v", err)
	}
	return scn
}

// Lookup builds the lookup context of the fixture topology.
func Lookup(t *testing.T) *lookup.Context {
	t.Helper()
	path := filepath.Join(t.TempDir(), HardwareFile)
	WriteFile(t, path, HardwareJSON)
	hm, err := scenario.LoadHardwareMapping(path)
	if err != nil {
		t.Fatalf("loading fixture hardware mapping: %v", err)
	}
	lut, err := lookup.New(LoadScenario(t), hm)
	if err != nil {
		t.Fatalf("building fixture lookup context: %v", err)
	}
	return lut
}

// Must panics on err and returns the value otherwise. Fixture
// construction only; a failure here means the test setup itself is broken.
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
