package records

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
)

// fwHeader is the canonical column layout of a forwarding time series file.
var fwHeader = []string{"time", "src", "src_name", "prefix", "seq", "next_hop", "next_hop_name"}

func formatTime(t float64) string {
	return strconv.FormatFloat(t, 'f', -1, 64)
}

// WriteFW writes records in the canonical tabular format, header included.
func WriteFW(w io.Writer, recs []FWRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(fwHeader); err != nil {
		return err
	}
	for _, r := range recs {
		row := []string{
			formatTime(r.Time),
			r.Src.String(),
			r.SrcName,
			r.Prefix.String(),
			r.Seq,
			r.NextHop.String(),
			r.NextHopName,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadFW parses records from the canonical tabular format.
func ReadFW(r io.Reader) ([]FWRecord, error) {
	cr := csv.NewReader(r)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	cols, err := headerIndex(rows[0], fwHeader)
	if err != nil {
		return nil, err
	}
	recs := make([]FWRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec, err := parseFWRow(row, cols)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// WriteFWFile writes records to path in the canonical tabular format.
func WriteFWFile(path string, recs []FWRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteFW(f, recs)
}

// ReadFWFile parses the canonical tabular format from path.
func ReadFWFile(path string) ([]FWRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadFW(f)
}

// SortByTime sorts records by ascending timestamp. The sort is stable so
// same-timestamp records keep their input order.
func SortByTime(recs []FWRecord) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Time < recs[j].Time
	})
}

func headerIndex(header, want []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	for _, name := range want {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing column %q in header %v", name, header)
		}
	}
	return cols, nil
}

func parseFWRow(row []string, cols map[string]int) (FWRecord, error) {
	var rec FWRecord
	var err error

	field := func(name string) string {
		i := cols[name]
		if i >= len(row) {
			return ""
		}
		return row[i]
	}

	rec.Time, err = strconv.ParseFloat(field("time"), 64)
	if err != nil {
		return rec, fmt.Errorf("invalid time %q: %w", field("time"), err)
	}
	rec.Src, err = ParseRouterID(field("src"))
	if err != nil {
		return rec, err
	}
	rec.SrcName = field("src_name")
	rec.Prefix, err = ParsePrefix(field("prefix"))
	if err != nil {
		return rec, err
	}
	rec.Seq = field("seq")
	rec.NextHop, err = ParseRouterID(field("next_hop"))
	if err != nil {
		return rec, err
	}
	rec.NextHopName = field("next_hop_name")
	return rec, nil
}
