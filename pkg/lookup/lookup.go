// Package lookup builds the per-sample lookup context: address to router,
// router pair to OSPF next-hop, and router to display name. The context is
// built once per sample and read-only afterwards, so it can be shared
// freely between stages and across parallel samples.
package lookup

import (
	"fmt"

	"github.com/fibtrace-net/fibtrace/pkg/records"
	"github.com/fibtrace-net/fibtrace/pkg/scenario"
	"github.com/fibtrace-net/fibtrace/pkg/util"
)

// Context resolves addresses, names, and OSPF next-hops for one sample.
type Context struct {
	addrs  map[records.Addr]records.RouterID
	ospfNH map[[2]records.RouterID]records.RouterID
	names  map[records.RouterID]string
}

// New builds a lookup context from the static scenario description and the
// sample's hardware mapping. Every address of a router's loopback network
// (network and broadcast included) and every interface address maps to the
// router.
func New(scn *scenario.Scenario, hm scenario.HardwareMapping) (*Context, error) {
	c := &Context{
		addrs:  make(map[records.Addr]records.RouterID),
		ospfNH: make(map[[2]records.RouterID]records.RouterID, len(scn.OSPF)),
		names:  make(map[records.RouterID]string, len(scn.Routers)),
	}

	for _, r := range scn.Routers {
		c.names[r.ID] = r.Name
	}
	for _, e := range scn.OSPF {
		c.ospfNH[[2]records.RouterID{e.Src, e.Dst}] = e.NextHop
	}

	for rid, router := range hm {
		addrs, err := util.SubnetAddrs(router.IPv4Net)
		if err != nil {
			return nil, fmt.Errorf("hardware mapping for router %s: %w", rid, err)
		}
		for _, a := range addrs {
			c.addrs[records.Addr(a)] = rid
		}
		for _, iface := range router.Ifaces {
			a, err := records.ParseAddr(iface.IPv4)
			if err != nil {
				return nil, fmt.Errorf("interface %s of router %s: %w", iface.Name, rid, err)
			}
			c.addrs[a] = rid
		}
	}

	return c, nil
}

// RouterByAddr maps an address onto the router that owns it.
func (c *Context) RouterByAddr(a records.Addr) (records.RouterID, error) {
	rid, ok := c.addrs[a]
	if !ok {
		return records.NoRouter, &records.UnresolvableAddressError{Addr: a}
	}
	return rid, nil
}

// Name returns the display name for a router, or "" if unknown.
func (c *Context) Name(r records.RouterID) string {
	return c.names[r]
}

// OspfNextHop returns the OSPF next-hop of src towards dst.
func (c *Context) OspfNextHop(src, dst records.RouterID) (records.RouterID, error) {
	nh, ok := c.ospfNH[[2]records.RouterID{src, dst}]
	if !ok {
		return records.NoRouter, &records.NoOspfNextHopError{Src: src, Dst: dst}
	}
	return nh, nil
}
