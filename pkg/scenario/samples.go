package scenario

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// SampleMeta is one row of a scenario's samples.csv: the capture metadata
// written by the testbed controller when one sample was taken.
type SampleMeta struct {
	// ExecutionTimestamp namespaces all files belonging to this sample.
	ExecutionTimestamp string
	// ExecutionDuration is the overall duration of the sample in seconds.
	ExecutionDuration float64
	// EventStart is the timestamp at which the routing event was injected.
	// Records earlier than EventStart-1 are discarded everywhere.
	EventStart float64
	// PcapFilename names the packet capture the BGP update rows came from.
	PcapFilename string
	// HardwareMappingFilename names the per-sample hardware-to-address map.
	HardwareMappingFilename string
	// NumPrefixes is the number of synthetic destination prefixes announced.
	NumPrefixes int
	// PacketsDropped counts capture drops reported by the testbed.
	PacketsDropped int
}

var sampleHeader = []string{
	"execution_timestamp", "execution_duration", "event_start",
	"pcap_filename", "hardware_mapping_filename", "num_prefixes",
}

// ReadSamples parses capture metadata rows. The packets_dropped column is
// optional; older captures did not record it.
func ReadSamples(r io.Reader) ([]SampleMeta, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	cols := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		cols[name] = i
	}
	for _, name := range sampleHeader {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing column %q in samples header", name)
		}
	}

	samples := make([]SampleMeta, 0, len(rows)-1)
	for _, row := range rows[1:] {
		field := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(row) {
				return ""
			}
			return row[i]
		}
		var m SampleMeta
		m.ExecutionTimestamp = field("execution_timestamp")
		if m.ExecutionDuration, err = strconv.ParseFloat(field("execution_duration"), 64); err != nil {
			return nil, fmt.Errorf("invalid execution_duration: %w", err)
		}
		if m.EventStart, err = strconv.ParseFloat(field("event_start"), 64); err != nil {
			return nil, fmt.Errorf("invalid event_start: %w", err)
		}
		m.PcapFilename = field("pcap_filename")
		m.HardwareMappingFilename = field("hardware_mapping_filename")
		if m.NumPrefixes, err = strconv.Atoi(field("num_prefixes")); err != nil {
			return nil, fmt.Errorf("invalid num_prefixes: %w", err)
		}
		if s := field("packets_dropped"); s != "" {
			if m.PacketsDropped, err = strconv.Atoi(s); err != nil {
				return nil, fmt.Errorf("invalid packets_dropped: %w", err)
			}
		}
		samples = append(samples, m)
	}
	return samples, nil
}

// ReadSamplesFile parses capture metadata rows from path.
func ReadSamplesFile(path string) ([]SampleMeta, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadSamples(f)
}
