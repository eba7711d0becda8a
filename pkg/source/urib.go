package source

import (
	"fmt"
	"strconv"

	"github.com/fibtrace-net/fibtrace/pkg/records"
)

// URIBKind is the raw change kind reported by the unicast RIB log.
type URIBKind int

const (
	URIBAdd URIBKind = iota
	URIBDelete
	// URIBModify carries no next-hop transition and is dropped upstream.
	URIBModify
)

// URIBRow is one parsed line of a urib log: a best-route change in the
// control-plane route table. Adds carry the raw OSPF next-hop address;
// deletes carry none.
type URIBRow struct {
	RID        records.RouterID
	RouterName string
	T          float64
	K          URIBKind
	Pfx        records.Addr
	NH         records.Addr
	HasNH      bool
}

func (r *URIBRow) Time() float64 {
	return r.T
}

func (r *URIBRow) Router() records.RouterID {
	return r.RID
}

func (r *URIBRow) Addr() (records.Addr, bool) {
	return r.Pfx, true
}

func (r *URIBRow) Kind() (Kind, bool) {
	switch r.K {
	case URIBAdd:
		return KindAdd, true
	case URIBDelete:
		return KindDelete, true
	default:
		return 0, false
	}
}

func (r *URIBRow) OspfNextHop() (records.Addr, bool) {
	return r.NH, r.HasNH
}

var uribHeader = []string{"rid", "router_name", "time", "kind", "prefix", "next_hop"}

// ParseURIBLog reads a urib log file. The add_count and del_count columns
// of Modify rows are ignored here; Modify rows are dropped by Resolve.
func ParseURIBLog(path string) ([]URIBRow, error) {
	rows, cols, err := readLog(path, uribHeader)
	if err != nil {
		return nil, err
	}
	out := make([]URIBRow, 0, len(rows))
	for _, row := range rows {
		var r URIBRow
		if r.RID, err = records.ParseRouterID(rowField(row, cols, "rid")); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		r.RouterName = rowField(row, cols, "router_name")
		if r.T, err = strconv.ParseFloat(rowField(row, cols, "time"), 64); err != nil {
			return nil, fmt.Errorf("%s: invalid time: %w", path, err)
		}
		switch kind := rowField(row, cols, "kind"); kind {
		case "Add":
			r.K = URIBAdd
		case "Delete":
			r.K = URIBDelete
		case "Modify":
			r.K = URIBModify
		default:
			return nil, fmt.Errorf("%s: unknown urib kind %q", path, kind)
		}
		pfx, err := parsePrefixAddr(rowField(row, cols, "prefix"))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		r.Pfx = pfx
		if nh := rowField(row, cols, "next_hop"); nh != "" {
			if r.NH, err = records.ParseAddr(nh); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			r.HasNH = true
		}
		out = append(out, r)
	}
	return out, nil
}

// parsePrefixAddr extracts the network address of a logged prefix, which
// may or may not carry a mask suffix.
func parsePrefixAddr(s string) (records.Addr, error) {
	p, err := records.ParsePrefix(s)
	if err != nil {
		return records.Addr{}, err
	}
	return records.Addr(p), nil
}
