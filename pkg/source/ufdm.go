package source

import (
	"fmt"
	"strconv"

	"github.com/fibtrace-net/fibtrace/pkg/records"
)

// UFDMRow is one parsed line of a ufdm log: the control plane pushing a
// forwarding update down to the data plane. Adds carry the raw OSPF
// next-hop address; deletes carry none.
type UFDMRow struct {
	RID        records.RouterID
	RouterName string
	T          float64
	Del        bool
	Pfx        records.Addr
	NH         records.Addr
	HasNH      bool
}

func (r *UFDMRow) Time() float64 {
	return r.T
}

func (r *UFDMRow) Router() records.RouterID {
	return r.RID
}

func (r *UFDMRow) Addr() (records.Addr, bool) {
	return r.Pfx, true
}

func (r *UFDMRow) Kind() (Kind, bool) {
	if r.Del {
		return KindDelete, true
	}
	return KindAdd, true
}

func (r *UFDMRow) OspfNextHop() (records.Addr, bool) {
	return r.NH, r.HasNH
}

var ufdmHeader = []string{"rid", "router_name", "time", "kind", "prefix", "next_hop"}

// ParseUFDMLog reads a ufdm log file.
func ParseUFDMLog(path string) ([]UFDMRow, error) {
	rows, cols, err := readLog(path, ufdmHeader)
	if err != nil {
		return nil, err
	}
	out := make([]UFDMRow, 0, len(rows))
	for _, row := range rows {
		var r UFDMRow
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
			return nil, fmt.Errorf("%s: unknown ufdm kind %q", path, kind)
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
