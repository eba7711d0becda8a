// Package source normalizes the per-device log rows into candidate
// forwarding-change events and resolves them into canonical records.
//
// Each log kind implements the Row contract; Resolve applies the shared
// transformation (event-prefix policy, pre-event cut-off, next-hop
// derivation). A source whose next-hop rules differ from the default OSPF
// lookup additionally implements NextHopper.
package source

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/fibtrace-net/fibtrace/pkg/lookup"
	"github.com/fibtrace-net/fibtrace/pkg/records"
)

// Kind classifies a candidate event. Rows that neither add nor delete
// (URIB "Modify") report no kind and are dropped.
type Kind int

const (
	// KindAdd installs or changes the next-hop of a prefix.
	KindAdd Kind = iota
	// KindDelete withdraws a prefix.
	KindDelete
)

// Row is the per-source normalizer contract: the four accessors every log
// kind provides. Accessors with a boolean report absence instead of
// guessing.
type Row interface {
	Time() float64
	Router() records.RouterID
	Addr() (records.Addr, bool)
	Kind() (Kind, bool)
	OspfNextHop() (records.Addr, bool)
}

// NextHopper overrides the default next-hop derivation of Resolve. IPFIB
// rows use it because they carry no next-hop at all; simulation-model rows
// use it because their next-hop is already a router id.
type NextHopper interface {
	NextHop(lut *lookup.Context) (records.RouterID, error)
}

// Resolve turns a normalized row into a canonical record, or nil if the
// row must be ignored. Ignoring is not an error: rows without a kind,
// rows outside the monitored synthetic destination range, and rows older
// than eventStart-1 are expected noise. Failed lookups are fatal.
func Resolve(row Row, lut *lookup.Context, eventStart float64) (*records.FWRecord, error) {
	kind, ok := row.Kind()
	if !ok {
		return nil, nil
	}
	addr, ok := row.Addr()
	if !ok {
		return nil, &records.InconsistentDataError{
			Reason: "no address on a row that is either an add or a delete",
		}
	}
	if !addr.IsEventPrefix() {
		return nil, nil
	}
	prefix := records.NetworkOf(addr)

	if row.Time() < eventStart-1.0 {
		return nil, nil
	}

	nextHop, err := nextHop(row, kind, lut)
	if err != nil {
		return nil, err
	}

	return &records.FWRecord{
		Time:        row.Time(),
		Src:         row.Router(),
		SrcName:     lut.Name(row.Router()),
		Prefix:      prefix,
		NextHop:     nextHop,
		NextHopName: lut.Name(nextHop),
	}, nil
}

// nextHop derives the forwarding next-hop: a delete clears it, an add
// resolves the raw OSPF next-hop address to a router and then consults the
// OSPF next-hop table, unless the row overrides the derivation.
func nextHop(row Row, kind Kind, lut *lookup.Context) (records.RouterID, error) {
	if o, ok := row.(NextHopper); ok {
		return o.NextHop(lut)
	}
	switch kind {
	case KindDelete:
		return records.NoRouter, nil
	default:
		addr, ok := row.OspfNextHop()
		if !ok {
			return records.NoRouter, &records.InconsistentDataError{
				Reason: "no OSPF next-hop on a row of kind add",
			}
		}
		via, err := lut.RouterByAddr(addr)
		if err != nil {
			return records.NoRouter, err
		}
		return lut.OspfNextHop(row.Router(), via)
	}
}

// readLog reads a delimited log file and returns its rows along with a
// header index. Missing required columns are an error.
func readLog(path string, required []string) ([][]string, map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}
	cols := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		cols[name] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, nil, fmt.Errorf("%s: missing column %q", path, name)
		}
	}
	return rows[1:], cols, nil
}

func rowField(row []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}
