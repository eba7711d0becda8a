package series

import (
	"path/filepath"

	"github.com/fibtrace-net/fibtrace/pkg/lookup"
	"github.com/fibtrace-net/fibtrace/pkg/records"
	"github.com/fibtrace-net/fibtrace/pkg/source"
	"github.com/fibtrace-net/fibtrace/pkg/util"
)

// UFDM extracts the deduplicated time series of control-to-data-plane
// updates from the sample's ufdm log. Per key, only records whose next-hop
// differs from the previously retained one survive. The input log is
// time-sorted, so the output keeps its order.
func UFDM(p Params, lut *lookup.Context) (bool, error) {
	in := filepath.Join(p.Dir, "ufdm_log_"+p.Timestamp+".csv")
	if skipMissing("ufdm", in) {
		return false, nil
	}
	out, err := p.outPath("ufdm")
	if err != nil {
		return false, err
	}
	if fileExists(out) && !p.Replace {
		return false, nil
	}

	rows, err := source.ParseUFDMLog(in)
	if err != nil {
		return false, err
	}

	last := make(map[records.Key]records.RouterID)
	var trace []records.FWRecord

	for i := range rows {
		rec, err := source.Resolve(&rows[i], lut, p.EventStart)
		if err != nil {
			return false, err
		}
		if rec == nil {
			continue
		}
		key := rec.Key()
		if nh, ok := last[key]; ok && nh == rec.NextHop {
			continue
		}
		last[key] = rec.NextHop
		trace = append(trace, *rec)
	}

	if err := records.WriteFWFile(out, trace); err != nil {
		return false, err
	}
	util.WithStage("ufdm").Infof("stored forwarding updates from UFDM (%s)", out)
	return true, nil
}
