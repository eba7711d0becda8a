package series

import (
	"path/filepath"

	"github.com/fibtrace-net/fibtrace/pkg/lookup"
	"github.com/fibtrace-net/fibtrace/pkg/model"
	"github.com/fibtrace-net/fibtrace/pkg/records"
	"github.com/fibtrace-net/fibtrace/pkg/util"
)

// BGPMessages extracts the time series of forwarding changes implied by
// the captured routing-protocol messages, replaying each one through the
// network model. The capture pipeline leaves a .skip sentinel next to the
// update file when it hit errors; such samples are skipped quietly.
func BGPMessages(p Params, lut *lookup.Context, m model.Model) (bool, error) {
	sentinel := filepath.Join(p.Dir, "bgp_updates_"+p.Pcap+".skip")
	if fileExists(sentinel) {
		util.WithStage("bgp_messages").Tracef(
			"skipping BGP messages due to errors in the capture pipeline: %s", sentinel)
		return false, nil
	}
	in := filepath.Join(p.Dir, "bgp_updates_"+p.Pcap+".csv")
	if skipMissing("bgp_messages", in) {
		return false, nil
	}
	out, err := p.outPath("bgp_messages")
	if err != nil {
		return false, err
	}
	if fileExists(out) && !p.Replace {
		return false, nil
	}

	updates, err := records.ReadBGPUpdatesFile(in)
	if err != nil {
		return false, err
	}

	var trace []records.FWRecord
	for i := range updates {
		u := updates[i]
		if u.Time < p.EventStart-1.0 {
			continue
		}
		// only the monitored synthetic destinations are replayed
		u.Reach = filterEventPrefixes(u.Reach)
		u.Unreach = filterEventPrefixes(u.Unreach)
		if len(u.Reach) == 0 && len(u.Unreach) == 0 {
			continue
		}

		deltas, err := m.Apply(&u)
		if err != nil {
			return false, err
		}
		for _, d := range deltas {
			if len(d.NextHops) > 1 {
				return false, &records.MultipleNextHopsError{
					Router:   d.Router,
					NextHops: d.NextHops,
				}
			}
			nh := records.NoRouter
			if len(d.NextHops) == 1 {
				nh = d.NextHops[0]
			}
			trace = append(trace, records.FWRecord{
				Time:        u.Time,
				Src:         d.Router,
				SrcName:     lut.Name(d.Router),
				Prefix:      records.NetworkOf(d.Prefix),
				NextHop:     nh,
				NextHopName: lut.Name(nh),
			})
		}
	}

	records.SortByTime(trace)
	if err := records.WriteFWFile(out, trace); err != nil {
		return false, err
	}
	util.WithStage("bgp_messages").Infof("stored forwarding updates from BGP messages (%s)", out)
	return true, nil
}

func filterEventPrefixes(addrs []records.Addr) []records.Addr {
	out := addrs[:0]
	for _, a := range addrs {
		if a.IsEventPrefix() {
			out = append(out, a)
		}
	}
	return out
}
