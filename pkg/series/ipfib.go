package series

import (
	"path/filepath"
	"sort"

	"github.com/fibtrace-net/fibtrace/pkg/lookup"
	"github.com/fibtrace-net/fibtrace/pkg/records"
	"github.com/fibtrace-net/fibtrace/pkg/source"
	"github.com/fibtrace-net/fibtrace/pkg/util"
)

// Dropped accounts for the keys the reconciler had to give up on. It is
// returned as an explicit value so callers and tests can assert on it.
type Dropped struct {
	// Count is the number of dropped prefixes.
	Count int
	// Sample holds up to maxDroppedSample of the dropped prefixes.
	Sample []records.Prefix
}

// maxDroppedSample bounds the prefixes kept in a Dropped report.
const maxDroppedSample = 10

// IPFIB reconciles the sample's raw ipfib log with the UFDM trace built by
// the UFDM stage. IPFIB events authoritatively timestamp *when* the data
// plane changed but carry no next-hop; the UFDM timeline records *what* it
// changed to. The reconciler merges both per key and repairs clock-skew
// mis-ordering between the two logging points locally.
func IPFIB(p Params, lut *lookup.Context) (bool, Dropped, error) {
	var dropped Dropped

	in := filepath.Join(p.Dir, "ipfib_log_"+p.Timestamp+".csv")
	if skipMissing("ipfib", in) {
		return false, dropped, nil
	}
	ufdmPath := filepath.Join(p.OutDir(), "ufdm.csv")
	if !fileExists(ufdmPath) {
		util.WithStage("ipfib").Warnf(
			"UFDM forwarding time series doesn't exist, skipping this sample: %s", ufdmPath)
		return false, dropped, nil
	}
	out, err := p.outPath("ipfib")
	if err != nil {
		return false, dropped, err
	}
	if fileExists(out) && !p.Replace {
		return false, dropped, nil
	}

	ufdmTrace, err := records.ReadFWFile(ufdmPath)
	if err != nil {
		return false, dropped, err
	}
	ufdm := make(map[records.Key][]records.FWRecord)
	for _, rec := range ufdmTrace {
		ufdm[rec.Key()] = append(ufdm[rec.Key()], rec)
	}

	rows, err := source.ParseIPFIBLog(in)
	if err != nil {
		return false, dropped, err
	}
	ipfib := make(map[records.Key][]records.FWRecord)
	for i := range rows {
		rec, err := source.Resolve(&rows[i], lut, p.EventStart)
		if err != nil {
			return false, dropped, err
		}
		if rec == nil {
			continue
		}
		ipfib[rec.Key()] = append(ipfib[rec.Key()], *rec)
	}

	ignored := make(map[records.Prefix]bool)
	var result []records.FWRecord

	for key, events := range ipfib {
		if ignored[key.Prefix] {
			continue
		}
		trace, ok := Reconcile(events, ufdm[key])
		if !ok {
			ignored[key.Prefix] = true
			continue
		}
		result = append(result, trace...)
	}

	if len(ignored) > 0 {
		dropped.Count = len(ignored)
		for pfx := range ignored {
			if len(dropped.Sample) >= maxDroppedSample {
				break
			}
			dropped.Sample = append(dropped.Sample, pfx)
		}
		util.WithStage("ipfib").Errorf(
			"ignoring %d prefixes that could not be reconciled, first %d: %v",
			dropped.Count, len(dropped.Sample), dropped.Sample)
	}

	records.SortByTime(result)

	// a prefix may be dropped after another key already contributed records
	kept := result[:0]
	for _, rec := range result {
		if !ignored[rec.Prefix] {
			kept = append(kept, rec)
		}
	}

	if err := records.WriteFWFile(out, kept); err != nil {
		return false, dropped, err
	}
	util.WithStage("ipfib").Infof("stored forwarding updates from IPFIB (%s)", out)
	return true, dropped, nil
}

// origin tags a merged event with the log it came from.
type origin int

const (
	originIPFIB origin = iota
	originUFDM
)

type mergedEvent struct {
	origin origin
	rec    records.FWRecord
}

// Reconcile merges the IPFIB events of one key (timestamps authoritative,
// next-hops placeholders) with the UFDM timeline of the same key
// (next-hops authoritative) into one trace carrying IPFIB timestamps and
// UFDM next-hops. Reports false if the key cannot be reconciled.
//
// The merged list is scanned left to right with a single pending next-hop
// slot that every UFDM event overwrites. Each IPFIB event must consume the
// slot: an empty slot makes the key unresolvable, and a parity mismatch
// (an add needs a present next-hop, a delete an absent one) indicates that
// clock skew between the two logging points inverted the pair, so the two
// events swap positions and the scan restarts. Swapping repairs one
// inversion at a time; the restart budget of len(events)^2 comfortably
// covers the at most n(n-1)/2 inversions of a list and guarantees
// termination.
func Reconcile(ipfib, ufdm []records.FWRecord) ([]records.FWRecord, bool) {
	events := make([]mergedEvent, 0, len(ipfib)+len(ufdm))
	for _, r := range ipfib {
		events = append(events, mergedEvent{origin: originIPFIB, rec: r})
	}
	for _, r := range ufdm {
		events = append(events, mergedEvent{origin: originUFDM, rec: r})
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].rec.Time < events[j].rec.Time
	})

	maxRestarts := len(events) * len(events)
	for restart := 0; restart <= maxRestarts; restart++ {
		trace, swap, ok := scanMerged(events)
		if !ok {
			return nil, false
		}
		if swap == nil {
			return trace, true
		}
		util.WithStage("ipfib").Tracef("swapping events %d and %d", swap[0], swap[1])
		events[swap[0]], events[swap[1]] = events[swap[1]], events[swap[0]]
	}
	return nil, false
}

// scanMerged runs one scan over the merged list. On success it returns the
// completed trace; a non-nil swap requests two events be exchanged before
// rescanning; ok=false marks the key unresolvable.
func scanMerged(events []mergedEvent) (trace []records.FWRecord, swap *[2]int, ok bool) {
	type pending struct {
		nh     records.RouterID
		nhName string
		idx    int
	}
	var slot *pending

	for i, e := range events {
		switch e.origin {
		case originUFDM:
			slot = &pending{nh: e.rec.NextHop, nhName: e.rec.NextHopName, idx: i}
		case originIPFIB:
			if slot == nil {
				return nil, nil, false
			}
			// parity: an add must consume a present next-hop, a delete an
			// absent one; otherwise the two events are mis-ordered
			if e.rec.HasNextHop() != (slot.nh != records.NoRouter) {
				return nil, &[2]int{i, slot.idx}, true
			}
			trace = append(trace, records.FWRecord{
				Time:        e.rec.Time,
				Src:         e.rec.Src,
				SrcName:     e.rec.SrcName,
				Prefix:      e.rec.Prefix,
				NextHop:     slot.nh,
				NextHopName: slot.nhName,
			})
			slot = nil
		}
	}
	return trace, nil, true
}
