package series

import (
	"github.com/fibtrace-net/fibtrace/pkg/lookup"
	"github.com/fibtrace-net/fibtrace/pkg/model"
	"github.com/fibtrace-net/fibtrace/pkg/records"
	"github.com/fibtrace-net/fibtrace/pkg/source"
	"github.com/fibtrace-net/fibtrace/pkg/util"
)

// simRow adapts one simulation-model trace entry to the normalizer
// contract. The model already resolved the next-hop to a router id, so the
// default OSPF derivation is overridden.
type simRow struct {
	u model.TraceUpdate
}

func (r *simRow) Time() float64 {
	return r.u.Time
}

func (r *simRow) Router() records.RouterID {
	return r.u.Router
}

func (r *simRow) Addr() (records.Addr, bool) {
	return r.u.Prefix, true
}

func (r *simRow) Kind() (source.Kind, bool) {
	if r.u.NewNextHop == records.NoRouter {
		return source.KindDelete, true
	}
	return source.KindAdd, true
}

func (r *simRow) OspfNextHop() (records.Addr, bool) {
	return records.Addr{}, false
}

func (r *simRow) NextHop(_ *lookup.Context) (records.RouterID, error) {
	return r.u.NewNextHop, nil
}

// SimModel extracts the forwarding time series predicted by the network
// model itself. The stage only runs for models that can produce a full
// trace; for all others it reports "not updated".
func SimModel(p Params, lut *lookup.Context, m model.Model) (bool, error) {
	tracer, ok := m.(model.Tracer)
	if !ok {
		util.WithStage("sim_model").Trace("model provides no simulated trace, skipping")
		return false, nil
	}
	out, err := p.outPath("sim_model")
	if err != nil {
		return false, err
	}
	if fileExists(out) && !p.Replace {
		return false, nil
	}

	var trace []records.FWRecord
	for _, u := range tracer.Trace() {
		rec, err := source.Resolve(&simRow{u: u}, lut, p.EventStart)
		if err != nil {
			return false, err
		}
		if rec == nil {
			continue
		}
		trace = append(trace, *rec)
	}

	records.SortByTime(trace)
	if err := records.WriteFWFile(out, trace); err != nil {
		return false, err
	}
	util.WithStage("sim_model").Infof("stored forwarding updates from the network model (%s)", out)
	return true, nil
}
