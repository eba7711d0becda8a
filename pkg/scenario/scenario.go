// Package scenario loads the static per-scenario description: the router
// inventory, the OSPF next-hop table, the pre-event forwarding state, the
// initial BGP routes for the replay model, and the per-sample capture
// metadata.
package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fibtrace-net/fibtrace/pkg/records"
)

// RouterDef declares one router of the scenario topology.
type RouterDef struct {
	ID       records.RouterID `yaml:"id"`
	Name     string           `yaml:"name"`
	External bool             `yaml:"external,omitempty"`
}

// OSPFEntry is one row of the scenario's OSPF next-hop table: traffic at
// Src destined towards Dst leaves via NextHop.
type OSPFEntry struct {
	Src     records.RouterID `yaml:"src"`
	Dst     records.RouterID `yaml:"dst"`
	NextHop records.RouterID `yaml:"next_hop"`
}

// ForwardingEntry is the pre-event forwarding state for one key. The
// testbed runs without ECMP, so more than one next-hop is an error that is
// only reported when the entry is actually consulted.
type ForwardingEntry struct {
	Router   records.RouterID   `yaml:"router"`
	Prefix   string             `yaml:"prefix"`
	NextHops []records.RouterID `yaml:"next_hops"`
}

// RouteDef seeds the replay model with one pre-event BGP route.
type RouteDef struct {
	Router     records.RouterID `yaml:"router"`
	Prefix     string           `yaml:"prefix"`
	Neighbor   records.RouterID `yaml:"neighbor"`
	PathLength int              `yaml:"path_length"`
	NextHop    string           `yaml:"next_hop"`
}

// Scenario is the static description of one experiment topology, loaded
// once and read-only afterwards.
type Scenario struct {
	Name              string            `yaml:"name"`
	Routers           []RouterDef       `yaml:"routers"`
	OSPF              []OSPFEntry       `yaml:"ospf"`
	InitialForwarding []ForwardingEntry `yaml:"initial_forwarding"`
	InitialRoutes     []RouteDef        `yaml:"initial_routes,omitempty"`

	initialFW map[records.Key][]records.RouterID
}

// Load reads and validates a scenario description from a YAML file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing scenario %s: %w", path, err)
	}
	if err := s.init(); err != nil {
		return nil, fmt.Errorf("validating scenario %s: %w", path, err)
	}
	return &s, nil
}

func (s *Scenario) init() error {
	known := make(map[records.RouterID]bool, len(s.Routers))
	for _, r := range s.Routers {
		if r.ID == records.NoRouter {
			return fmt.Errorf("router %q has no id", r.Name)
		}
		if known[r.ID] {
			return fmt.Errorf("duplicate router id %s", r.ID)
		}
		known[r.ID] = true
	}
	for _, e := range s.OSPF {
		if !known[e.Src] || !known[e.Dst] || !known[e.NextHop] {
			return fmt.Errorf("ospf entry (%s -> %s via %s) references unknown router",
				e.Src, e.Dst, e.NextHop)
		}
	}

	s.initialFW = make(map[records.Key][]records.RouterID, len(s.InitialForwarding))
	for _, e := range s.InitialForwarding {
		if !known[e.Router] {
			return fmt.Errorf("initial forwarding entry references unknown router %s", e.Router)
		}
		prefix, err := records.ParsePrefix(e.Prefix)
		if err != nil {
			return fmt.Errorf("initial forwarding entry for router %s: %w", e.Router, err)
		}
		key := records.Key{Router: e.Router, Prefix: prefix}
		s.initialFW[key] = append(s.initialFW[key], e.NextHops...)
	}
	return nil
}

// InitialNextHop returns the pre-event forwarding next-hop for a key, or
// NoRouter if the prefix was not forwarded. More than one next-hop is a
// fatal MultipleNextHopsError: the pipeline does not model ECMP.
func (s *Scenario) InitialNextHop(key records.Key) (records.RouterID, error) {
	nhs := s.initialFW[key]
	switch len(nhs) {
	case 0:
		return records.NoRouter, nil
	case 1:
		return nhs[0], nil
	default:
		return records.NoRouter, &records.MultipleNextHopsError{Router: key.Router, NextHops: nhs}
	}
}

// RouterName returns the display name for a router id, or "" if unknown.
func (s *Scenario) RouterName(id records.RouterID) string {
	for _, r := range s.Routers {
		if r.ID == id {
			return r.Name
		}
	}
	return ""
}
