package records

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the fatal failure classes of the extraction
// pipeline. Stage code matches on these with errors.Is; the typed errors
// below carry the context. A missing input log is not an error, the stage
// skips the sample instead.
var (
	ErrUnresolvableAddress = errors.New("address not in lookup context")
	ErrNoOspfNextHop       = errors.New("no OSPF next-hop for router pair")
	ErrInconsistentData    = errors.New("inconsistent data")
	ErrMultipleNextHops    = errors.New("multiple simultaneous next-hops")
)

// UnresolvableAddressError reports an address that no router in the
// hardware mapping owns. Fatal for the sample.
type UnresolvableAddressError struct {
	Addr Addr
}

func (e *UnresolvableAddressError) Error() string {
	return fmt.Sprintf("cannot map address %s to a router id", e.Addr)
}

func (e *UnresolvableAddressError) Unwrap() error {
	return ErrUnresolvableAddress
}

// NoOspfNextHopError reports a router pair with no entry in the OSPF
// next-hop table. Fatal for the sample.
type NoOspfNextHopError struct {
	Src, Dst RouterID
}

func (e *NoOspfNextHopError) Error() string {
	return fmt.Sprintf("router %s cannot reach %s in the OSPF next-hop table", e.Src, e.Dst)
}

func (e *NoOspfNextHopError) Unwrap() error {
	return ErrNoOspfNextHop
}

// InconsistentDataError reports a schema-required field that a source row
// failed to carry. Fatal for the sample.
type InconsistentDataError struct {
	Reason string
}

func (e *InconsistentDataError) Error() string {
	return "inconsistent data: " + e.Reason
}

func (e *InconsistentDataError) Unwrap() error {
	return ErrInconsistentData
}

// MultipleNextHopsError reports simultaneous next-hops where exactly one is
// assumed (the testbed runs without ECMP). Fatal for the sample.
type MultipleNextHopsError struct {
	Router   RouterID
	NextHops []RouterID
}

func (e *MultipleNextHopsError) Error() string {
	hops := make([]string, len(e.NextHops))
	for i, nh := range e.NextHops {
		hops[i] = nh.String()
	}
	return fmt.Sprintf("multiple next-hops configured for router %s: [%s]",
		e.Router, strings.Join(hops, ", "))
}

func (e *MultipleNextHopsError) Unwrap() error {
	return ErrMultipleNextHops
}
