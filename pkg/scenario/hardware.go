package scenario

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fibtrace-net/fibtrace/pkg/records"
)

// HardwareIface is one physical interface of a testbed router.
type HardwareIface struct {
	Name string `json:"name"`
	IPv4 string `json:"ipv4"`
}

// HardwareRouter maps one router of the scenario onto the testbed: its
// loopback network (every member address belongs to the router) and its
// interface addresses.
type HardwareRouter struct {
	Name    string          `json:"name"`
	IPv4Net string          `json:"ipv4_net"`
	Ifaces  []HardwareIface `json:"ifaces"`
}

// HardwareMapping is the per-sample hardware-to-address map, keyed by
// router id.
type HardwareMapping map[records.RouterID]HardwareRouter

// LoadHardwareMapping reads a hardware mapping from a JSON file.
func LoadHardwareMapping(path string) (HardwareMapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string]HardwareRouter
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing hardware mapping %s: %w", path, err)
	}
	hm := make(HardwareMapping, len(raw))
	for id, router := range raw {
		rid, err := records.ParseRouterID(id)
		if err != nil {
			return nil, fmt.Errorf("hardware mapping %s: %w", path, err)
		}
		hm[rid] = router
	}
	return hm, nil
}
