package records

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// BGPUpdate is one parsed routing-protocol update message captured on a
// link, as produced by the packet-capture demultiplexer. Demultiplexing raw
// captures is out of scope; this type only reads the resulting rows.
//
// The file is semicolon-delimited; the reach and unreach columns hold
// comma-separated address lists.
type BGPUpdate struct {
	Time          float64
	Src, Dst      RouterID
	SrcName       string
	DstName       string
	Reach         []Addr
	Unreach       []Addr
	PathLength    int
	HasPathLength bool
	NextHop       Addr
	HasNextHop    bool
}

var bgpHeader = []string{"time", "src", "dst", "src_name", "dst_name", "reach", "unreach", "path_length", "next_hop"}

// ReadBGPUpdates parses update rows. Rows whose src or dst could not be
// attributed to a router are dropped, matching the capture pipeline's
// contract that only attributed messages are replayable.
func ReadBGPUpdates(r io.Reader) ([]BGPUpdate, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	cols, err := headerIndex(rows[0], bgpHeader)
	if err != nil {
		return nil, err
	}
	updates := make([]BGPUpdate, 0, len(rows)-1)
	for _, row := range rows[1:] {
		u, ok, err := parseBGPRow(row, cols)
		if err != nil {
			return nil, err
		}
		if ok {
			updates = append(updates, u)
		}
	}
	return updates, nil
}

// ReadBGPUpdatesFile parses update rows from path.
func ReadBGPUpdatesFile(path string) ([]BGPUpdate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadBGPUpdates(f)
}

func parseBGPRow(row []string, cols map[string]int) (BGPUpdate, bool, error) {
	var u BGPUpdate
	var err error

	field := func(name string) string {
		i := cols[name]
		if i >= len(row) {
			return ""
		}
		return row[i]
	}

	// unattributed messages cannot be replayed
	if field("src") == "" || field("dst") == "" {
		return u, false, nil
	}

	u.Time, err = strconv.ParseFloat(field("time"), 64)
	if err != nil {
		return u, false, fmt.Errorf("invalid time %q: %w", field("time"), err)
	}
	if u.Src, err = ParseRouterID(field("src")); err != nil {
		return u, false, err
	}
	if u.Dst, err = ParseRouterID(field("dst")); err != nil {
		return u, false, err
	}
	u.SrcName = field("src_name")
	u.DstName = field("dst_name")
	if u.Reach, err = parseAddrList(field("reach")); err != nil {
		return u, false, err
	}
	if u.Unreach, err = parseAddrList(field("unreach")); err != nil {
		return u, false, err
	}
	if s := field("path_length"); s != "" {
		u.PathLength, err = strconv.Atoi(s)
		if err != nil {
			return u, false, fmt.Errorf("invalid path_length %q: %w", s, err)
		}
		u.HasPathLength = true
	}
	if s := field("next_hop"); s != "" {
		u.NextHop, err = ParseAddr(s)
		if err != nil {
			return u, false, err
		}
		u.HasNextHop = true
	}
	return u, true, nil
}

func parseAddrList(s string) ([]Addr, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]Addr, 0, len(parts))
	for _, p := range parts {
		a, err := ParseAddr(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
