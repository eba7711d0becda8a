// Package model defines the network-model seam of the extraction pipeline.
//
// The BGP-derived source needs a forwarding delta for every captured
// routing-protocol message. Computing that delta is the job of a network
// model, which in a full deployment is an external simulator; this package
// only fixes the interface and ships a deterministic replay implementation
// that applies messages actually observed on the wire. Simulating BGP
// propagation (timing, message generation) stays out of scope.
package model

import (
	"github.com/fibtrace-net/fibtrace/pkg/records"
)

// Delta is one forwarding-table change caused by replaying a message:
// Router's next-hops towards Prefix became NextHops. An empty NextHops
// means the prefix became unreachable.
type Delta struct {
	Router   records.RouterID
	Prefix   records.Addr
	NextHops []records.RouterID
}

// Model replays one captured routing-protocol update and reports the
// resulting forwarding deltas. Updates that change nothing yield no delta.
type Model interface {
	Apply(u *records.BGPUpdate) ([]Delta, error)
}

// TraceUpdate is one entry of a full simulation-model time series.
type TraceUpdate struct {
	Time       float64
	Router     records.RouterID
	Prefix     records.Addr
	NewNextHop records.RouterID
}

// Tracer is implemented by models that can produce a complete simulated
// time series of forwarding changes. The simulation-model stage is skipped
// for models that cannot.
type Tracer interface {
	Trace() []TraceUpdate
}
