package source

import (
	"fmt"
	"strconv"

	"github.com/fibtrace-net/fibtrace/pkg/lookup"
	"github.com/fibtrace-net/fibtrace/pkg/records"
)

// IPFIBRow is one parsed line of an ipfib log: the data plane committing a
// forwarding-table change. IPFIB rows never carry a next-hop; the
// reconciler later substitutes the one recorded by the UFDM stream.
type IPFIBRow struct {
	RID        records.RouterID
	RouterName string
	T          float64
	Del        bool
	Pfx        records.Addr
	// NHCount is the hardware's next-hop count for the entry; adds with a
	// zero count and deletes with a non-zero count were already filtered
	// out by the log collector.
	NHCount int
}

func (r *IPFIBRow) Time() float64 {
	return r.T
}

func (r *IPFIBRow) Router() records.RouterID {
	return r.RID
}

func (r *IPFIBRow) Addr() (records.Addr, bool) {
	return r.Pfx, true
}

func (r *IPFIBRow) Kind() (Kind, bool) {
	if r.Del {
		return KindDelete, true
	}
	return KindAdd, true
}

func (r *IPFIBRow) OspfNextHop() (records.Addr, bool) {
	return records.Addr{}, false
}

// NextHop marks adds with the row's own router id as a placeholder. The
// placeholder only encodes add/delete parity; the reconciler replaces it
// with the true next-hop from the UFDM timeline.
func (r *IPFIBRow) NextHop(_ *lookup.Context) (records.RouterID, error) {
	if r.Del {
		return records.NoRouter, nil
	}
	return r.RID, nil
}

var ipfibHeader = []string{"rid", "router_name", "time", "kind", "prefix"}

// ParseIPFIBLog reads an ipfib log file.
func ParseIPFIBLog(path string) ([]IPFIBRow, error) {
	rows, cols, err := readLog(path, ipfibHeader)
	if err != nil {
		return nil, err
	}
	out := make([]IPFIBRow, 0, len(rows))
	for _, row := range rows {
		var r IPFIBRow
		if r.RID, err = records.ParseRouterID(rowField(row, cols, "rid")); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		r.RouterName = rowField(row, cols, "router_name")
		if r.T, err = strconv.ParseFloat(rowField(row, cols, "time"), 64); err != nil {
			return nil, fmt.Errorf("%s: invalid time: %w", path, err)
		}
		switch kind := rowField(row, cols, "kind"); kind {
		case "Add":
			r.Del = false
		case "Del":
			r.Del = true
		default:
			return nil, fmt.Errorf("%s: unknown ipfib kind %q", path, kind)
		}
		pfx, err := parsePrefixAddr(rowField(row, cols, "prefix"))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		r.Pfx = pfx
		if s := rowField(row, cols, "nh_count"); s != "" {
			if r.NHCount, err = strconv.Atoi(s); err != nil {
				return nil, fmt.Errorf("%s: invalid nh_count: %w", path, err)
			}
		}
		out = append(out, r)
	}
	return out, nil
}
