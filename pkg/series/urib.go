package series

import (
	"path/filepath"

	"github.com/fibtrace-net/fibtrace/pkg/lookup"
	"github.com/fibtrace-net/fibtrace/pkg/records"
	"github.com/fibtrace-net/fibtrace/pkg/scenario"
	"github.com/fibtrace-net/fibtrace/pkg/source"
	"github.com/fibtrace-net/fibtrace/pkg/util"
)

// minDelta is the debounce threshold of the URIB sequencer. The RIB logs
// transient intermediate states when it processes a batch of updates;
// entries closer together than this are treated as one unstable read.
const minDelta = 1e-4

// URIB extracts the debounced time series of best-route changes from the
// sample's urib log. Each per-key timeline is seeded at time zero with the
// pre-event forwarding state from the scenario; seeds are omitted from the
// output.
func URIB(p Params, lut *lookup.Context, scn *scenario.Scenario) (bool, error) {
	in := filepath.Join(p.Dir, "urib_log_"+p.Timestamp+".csv")
	if skipMissing("urib", in) {
		return false, nil
	}
	out, err := p.outPath("urib")
	if err != nil {
		return false, err
	}
	if fileExists(out) && !p.Replace {
		return false, nil
	}

	rows, err := source.ParseURIBLog(in)
	if err != nil {
		return false, err
	}

	sequence := make(map[records.Key][]records.FWRecord)

	for i := range rows {
		rec, err := source.Resolve(&rows[i], lut, p.EventStart)
		if err != nil {
			return false, err
		}
		if rec == nil {
			continue
		}
		key := rec.Key()

		// seed the timeline with the pre-event forwarding state
		if _, ok := sequence[key]; !ok {
			nh, err := scn.InitialNextHop(key)
			if err != nil {
				return false, err
			}
			sequence[key] = []records.FWRecord{{
				Time:        0,
				Src:         rec.Src,
				SrcName:     rec.SrcName,
				Prefix:      rec.Prefix,
				NextHop:     nh,
				NextHopName: lut.Name(nh),
			}}
		}

		seq := sequence[key]
		last := seq[len(seq)-1]

		// drop records that don't change the next-hop
		if last.NextHop == rec.NextHop {
			continue
		}

		if last.Time+minDelta < rec.Time {
			sequence[key] = append(seq, *rec)
		} else if rec.HasNextHop() {
			// near-duplicate timestamps: the newer add corrects an
			// unstable intermediate read; a near-duplicate delete is noise
			sequence[key] = append(seq[:len(seq)-1], *rec)
		}
	}

	// flatten, dropping the synthetic seed of every timeline
	var trace []records.FWRecord
	for _, seq := range sequence {
		trace = append(trace, seq[1:]...)
	}
	records.SortByTime(trace)

	if err := records.WriteFWFile(out, trace); err != nil {
		return false, err
	}
	util.WithStage("urib").Infof("stored forwarding updates from URIB (%s)", out)
	return true, nil
}
