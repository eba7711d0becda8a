// Package records defines the canonical forwarding-change record model and
// its tabular wire format. An FWRecord captures one change of the forwarding
// next-hop of a router for a destination prefix; per-sample stages emit
// time-sorted sequences of them.
package records

import (
	"fmt"
	"strconv"

	"github.com/fibtrace-net/fibtrace/pkg/util"
)

// RouterID is an opaque, stable handle for a router within one scenario.
// IDs are assigned by the scenario description.
type RouterID int

// NoRouter marks an absent router, used for withdrawn next-hops.
const NoRouter RouterID = -1

// String formats the ID for the tabular output; NoRouter is the empty field.
func (r RouterID) String() string {
	if r == NoRouter {
		return ""
	}
	return strconv.Itoa(int(r))
}

// ParseRouterID parses a router handle; the empty string means NoRouter.
func ParseRouterID(s string) (RouterID, error) {
	if s == "" {
		return NoRouter, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return NoRouter, fmt.Errorf("invalid router id: %q", s)
	}
	return RouterID(n), nil
}

// Addr is a raw IPv4 address as it appears in a device log.
type Addr [4]byte

// ParseAddr parses a dotted-quad IPv4 address.
func ParseAddr(s string) (Addr, error) {
	octets, err := util.ParseIPv4(s)
	if err != nil {
		return Addr{}, err
	}
	return Addr(octets), nil
}

func (a Addr) String() string {
	return util.FormatIPv4(a)
}

// eventPrefixMin is the first octet of the synthetic destination range used
// by the testbed. Addresses below this are infrastructure noise and are
// never monitored.
const eventPrefixMin = 100

// IsEventPrefix reports whether the address belongs to a monitored
// synthetic destination aggregate.
func (a Addr) IsEventPrefix() bool {
	return a[0] >= eventPrefixMin
}

// aggregateBits is the size of the synthetic destination aggregates
// announced by the testbed.
const aggregateBits = 24

// Prefix is a normalized IPv4 destination aggregate with host bits cleared.
type Prefix [4]byte

// NetworkOf normalizes a raw address into its destination aggregate.
func NetworkOf(a Addr) Prefix {
	return Prefix(util.MaskIPv4([4]byte(a), aggregateBits))
}

// ParsePrefix parses a normalized prefix from either a dotted-quad address
// or CIDR notation. Host bits are cleared.
func ParsePrefix(s string) (Prefix, error) {
	ip, maskLen := util.SplitIPMask(s)
	octets, err := util.ParseIPv4(ip)
	if err != nil {
		return Prefix{}, err
	}
	if maskLen == 0 {
		maskLen = aggregateBits
	}
	return Prefix(util.MaskIPv4(octets, maskLen)), nil
}

func (p Prefix) String() string {
	return util.FormatIPv4([4]byte(p))
}

// Key identifies one independently reconciled timeline: a (router,
// destination-prefix) pair.
type Key struct {
	Router RouterID
	Prefix Prefix
}

// FWRecord is the canonical unit of output: the forwarding next-hop of Src
// for Prefix changed to NextHop at Time. Seq is a reserved column kept for
// format compatibility; it is always empty.
type FWRecord struct {
	Time        float64
	Src         RouterID
	SrcName     string
	Prefix      Prefix
	Seq         string
	NextHop     RouterID
	NextHopName string
}

// HasNextHop reports whether the record carries a next-hop (an Add); a
// record without one marks the prefix as withdrawn.
func (r FWRecord) HasNextHop() bool {
	return r.NextHop != NoRouter
}

// Key returns the reconciliation key of the record.
func (r FWRecord) Key() Key {
	return Key{Router: r.Src, Prefix: r.Prefix}
}
