package model

import (
	"fmt"

	"github.com/fibtrace-net/fibtrace/pkg/lookup"
	"github.com/fibtrace-net/fibtrace/pkg/records"
	"github.com/fibtrace-net/fibtrace/pkg/scenario"
)

// route is one BGP route learned from a neighbor.
type route struct {
	pathLen int
	nextHop records.RouterID
}

// RIBModel replays captured update messages against per-router,
// per-neighbor route tables seeded from the scenario's initial routes. The
// best route is the one with the shortest path, ties broken by the lower
// neighbor id, which matches the deterministic tie-breaking of the testbed
// configuration. The resulting forwarding next-hop is resolved through the
// OSPF next-hop table of the lookup context.
type RIBModel struct {
	lut *lookup.Context
	// rib[router][prefix][neighbor] is the route that neighbor announced.
	rib map[records.RouterID]map[records.Addr]map[records.RouterID]route
	// fw[router][prefix] is the currently chosen forwarding next-hop.
	fw map[records.RouterID]map[records.Addr]records.RouterID
}

// NewRIB builds a replay model seeded from the scenario's initial routes.
func NewRIB(scn *scenario.Scenario, lut *lookup.Context) (*RIBModel, error) {
	m := &RIBModel{
		lut: lut,
		rib: make(map[records.RouterID]map[records.Addr]map[records.RouterID]route),
		fw:  make(map[records.RouterID]map[records.Addr]records.RouterID),
	}
	for _, rd := range scn.InitialRoutes {
		pfx, err := records.ParsePrefix(rd.Prefix)
		if err != nil {
			return nil, fmt.Errorf("initial route for router %s: %w", rd.Router, err)
		}
		nhAddr, err := records.ParseAddr(rd.NextHop)
		if err != nil {
			return nil, fmt.Errorf("initial route for router %s: %w", rd.Router, err)
		}
		fwNH, err := m.forwardingNextHop(rd.Router, nhAddr)
		if err != nil {
			return nil, err
		}
		m.insert(rd.Router, records.Addr(pfx), rd.Neighbor, route{
			pathLen: rd.PathLength,
			nextHop: fwNH,
		})
		m.setNextHop(rd.Router, records.Addr(pfx), m.best(rd.Router, records.Addr(pfx)))
	}
	return m, nil
}

// Apply replays one captured update at its receiving router and reports
// the forwarding deltas it caused.
func (m *RIBModel) Apply(u *records.BGPUpdate) ([]Delta, error) {
	var deltas []Delta

	apply := func(pfx records.Addr, r *route) {
		old, hadOld := m.currentNextHop(u.Dst, pfx)
		if r == nil {
			m.remove(u.Dst, pfx, u.Src)
		} else {
			m.insert(u.Dst, pfx, u.Src, *r)
		}
		nh := m.best(u.Dst, pfx)
		m.setNextHop(u.Dst, pfx, nh)
		// unchanged forwarding state yields no delta
		if (hadOld && old == nh) || (!hadOld && nh == records.NoRouter) {
			return
		}
		d := Delta{Router: u.Dst, Prefix: pfx}
		if nh != records.NoRouter {
			d.NextHops = []records.RouterID{nh}
		}
		deltas = append(deltas, d)
	}

	for _, pfx := range u.Unreach {
		apply(pfx, nil)
	}

	if len(u.Reach) > 0 {
		if !u.HasNextHop {
			return nil, &records.InconsistentDataError{
				Reason: "no next-hop on an update message that announces prefixes",
			}
		}
		if !u.HasPathLength {
			return nil, &records.InconsistentDataError{
				Reason: "no path length on an update message that announces prefixes",
			}
		}
		fwNH, err := m.forwardingNextHop(u.Dst, u.NextHop)
		if err != nil {
			return nil, err
		}
		r := route{pathLen: u.PathLength, nextHop: fwNH}
		for _, pfx := range u.Reach {
			apply(pfx, &r)
		}
	}

	return deltas, nil
}

// forwardingNextHop resolves a protocol next-hop address into the router
// the traffic actually leaves towards: address owner first, then the OSPF
// next-hop of the receiving router towards that owner.
func (m *RIBModel) forwardingNextHop(at records.RouterID, nh records.Addr) (records.RouterID, error) {
	owner, err := m.lut.RouterByAddr(nh)
	if err != nil {
		return records.NoRouter, err
	}
	if owner == at {
		return owner, nil
	}
	return m.lut.OspfNextHop(at, owner)
}

func (m *RIBModel) insert(router records.RouterID, pfx records.Addr, neighbor records.RouterID, r route) {
	if m.rib[router] == nil {
		m.rib[router] = make(map[records.Addr]map[records.RouterID]route)
	}
	if m.rib[router][pfx] == nil {
		m.rib[router][pfx] = make(map[records.RouterID]route)
	}
	m.rib[router][pfx][neighbor] = r
}

func (m *RIBModel) remove(router records.RouterID, pfx records.Addr, neighbor records.RouterID) {
	delete(m.rib[router][pfx], neighbor)
}

// best selects the route with the shortest path, ties broken by the lower
// neighbor id, and returns its forwarding next-hop.
func (m *RIBModel) best(router records.RouterID, pfx records.Addr) records.RouterID {
	bestNH := records.NoRouter
	bestLen := 0
	bestNeighbor := records.NoRouter
	for neighbor, r := range m.rib[router][pfx] {
		if bestNH == records.NoRouter ||
			r.pathLen < bestLen ||
			(r.pathLen == bestLen && neighbor < bestNeighbor) {
			bestNH = r.nextHop
			bestLen = r.pathLen
			bestNeighbor = neighbor
		}
	}
	return bestNH
}

func (m *RIBModel) currentNextHop(router records.RouterID, pfx records.Addr) (records.RouterID, bool) {
	nh, ok := m.fw[router][pfx]
	return nh, ok
}

func (m *RIBModel) setNextHop(router records.RouterID, pfx records.Addr, nh records.RouterID) {
	if m.fw[router] == nil {
		m.fw[router] = make(map[records.Addr]records.RouterID)
	}
	m.fw[router][pfx] = nh
}
