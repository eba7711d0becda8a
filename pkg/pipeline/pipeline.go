// Package pipeline drives the per-sample extraction: it discovers scenario
// directories under a data root, reads each scenario's capture metadata,
// builds the lookup context once per sample, and runs the source stages in
// fixed order. Samples are independent by construction — the lookup
// context is rebuilt per sample and no mutable state is shared outside a
// sample's own output directory — so scenarios are processed by a parallel
// worker pool.
package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/fibtrace-net/fibtrace/pkg/lookup"
	"github.com/fibtrace-net/fibtrace/pkg/model"
	"github.com/fibtrace-net/fibtrace/pkg/scenario"
	"github.com/fibtrace-net/fibtrace/pkg/series"
	"github.com/fibtrace-net/fibtrace/pkg/util"
)

// Options configures one extraction run.
type Options struct {
	// DataRoot is the directory holding <topology>/<scenario> directories.
	DataRoot string
	// Scenario restricts the run to scenario names containing the string.
	Scenario string
	// SampleID restricts the run to samples whose execution timestamp
	// contains the string.
	SampleID string
	// Replace recomputes stage outputs that already exist.
	Replace bool
	// Workers bounds the number of scenario directories processed in
	// parallel; zero means one.
	Workers int
}

// Result describes one processed sample.
type Result struct {
	// Scenario is "<topology>_<scenario>".
	Scenario string
	// Timestamp is the sample's execution timestamp.
	Timestamp string
	// EventStart is the sample's event injection time.
	EventStart float64
	// NumPrefixes is the number of synthetic destinations of the sample.
	NumPrefixes int
	// Updated reports whether any stage produced new output.
	Updated bool
}

// Run processes every scenario directory under the data root and returns
// the per-sample results. Per-sample failures are logged and skipped;
// only infrastructure failures (unreadable data root) abort the run.
func Run(ctx context.Context, opts Options) ([]Result, error) {
	dirs, err := discover(opts.DataRoot, opts.Scenario)
	if err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	var mu sync.Mutex
	var results []Result

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, dir := range dirs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rs, err := ProcessDirectory(dir, opts)
			if err != nil {
				return err
			}
			mu.Lock()
			results = append(results, rs...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Scenario != results[j].Scenario {
			return results[i].Scenario < results[j].Scenario
		}
		return results[i].Timestamp < results[j].Timestamp
	})
	return results, nil
}

// discover lists <root>/<topology>/<scenario> directories, optionally
// filtered by scenario name.
func discover(root, filter string) ([]string, error) {
	topos, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, topo := range topos {
		if !topo.IsDir() {
			continue
		}
		scenarios, err := os.ReadDir(filepath.Join(root, topo.Name()))
		if err != nil {
			return nil, err
		}
		for _, scn := range scenarios {
			if !scn.IsDir() {
				continue
			}
			if filter != "" && !strings.Contains(scn.Name(), filter) {
				continue
			}
			dirs = append(dirs, filepath.Join(root, topo.Name(), scn.Name()))
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// ProcessDirectory processes all captured samples of one scenario
// directory. Directories without captured data or without a loadable
// scenario description are skipped quietly; per-sample errors are logged
// with the sample identity and never abort sibling samples.
func ProcessDirectory(dir string, opts Options) ([]Result, error) {
	samplesPath := filepath.Join(dir, "samples.csv")
	if _, err := os.Stat(samplesPath); err != nil {
		util.Tracef("skipping %s as it has no captured data yet", dir)
		return nil, nil
	}

	scn, err := scenario.Load(filepath.Join(dir, "scenario.yml"))
	if err != nil {
		util.Tracef("could not build scenario for %s: %v", dir, err)
		return nil, nil
	}

	samples, err := scenario.ReadSamplesFile(samplesPath)
	if err != nil {
		return nil, err
	}

	scenarioName := filepath.Base(filepath.Dir(dir)) + "_" + filepath.Base(dir)

	var results []Result
	for _, meta := range samples {
		// the raw log folder must exist, otherwise nothing was collected
		logDir := filepath.Join(dir, "logs_"+meta.ExecutionTimestamp)
		if _, err := os.Stat(logDir); err != nil {
			util.WithSample(meta.ExecutionTimestamp).Trace("skipping as no logs were collected")
			continue
		}
		if !strings.Contains(meta.ExecutionTimestamp, opts.SampleID) {
			util.WithSample(meta.ExecutionTimestamp).Trace("skipping due to filter on sample id")
			continue
		}

		updated, err := processSample(dir, scn, meta, opts.Replace)
		if err != nil {
			util.WithSample(meta.ExecutionTimestamp).
				Errorf("error processing sample in %s: %v", dir, err)
			continue
		}
		results = append(results, Result{
			Scenario:    scenarioName,
			Timestamp:   meta.ExecutionTimestamp,
			EventStart:  meta.EventStart,
			NumPrefixes: meta.NumPrefixes,
			Updated:     updated,
		})
	}
	return results, nil
}

// processSample runs all stages for one sample in fixed order. Stage
// failures are logged per stage and count as "not updated"; only sample
// setup failures (hardware mapping, lookup context) are fatal for the
// sample.
func processSample(dir string, scn *scenario.Scenario, meta scenario.SampleMeta, replace bool) (bool, error) {
	hm, err := scenario.LoadHardwareMapping(filepath.Join(dir, meta.HardwareMappingFilename))
	if err != nil {
		return false, err
	}
	lut, err := lookup.New(scn, hm)
	if err != nil {
		return false, err
	}
	m, err := model.NewRIB(scn, lut)
	if err != nil {
		return false, err
	}

	p := series.Params{
		Dir:        dir,
		Timestamp:  meta.ExecutionTimestamp,
		Pcap:       meta.PcapFilename,
		EventStart: meta.EventStart,
		Replace:    replace,
	}

	updated := false

	u, err := series.BGPMessages(p, lut, m)
	updated = warn(u, err, "BGP messages", dir) || updated

	u, err = series.URIB(p, lut, scn)
	updated = warn(u, err, "URIB log", dir) || updated

	u, err = series.UFDM(p, lut)
	updated = warn(u, err, "UFDM log", dir) || updated

	// the reconciler consumes the UFDM stage's output, hence the order
	u, _, err = series.IPFIB(p, lut)
	updated = warn(u, err, "IPFIB log", dir) || updated

	u, err = series.SimModel(p, lut, m)
	updated = warn(u, err, "network model", dir) || updated

	return updated, nil
}

// warn logs a stage failure and converts it to "not updated" so one broken
// stage never hides the output of its siblings.
func warn(updated bool, err error, stage, dir string) bool {
	if err != nil {
		util.Warnf("error processing %s of experiment %s: %v", stage, dir, err)
		return false
	}
	return updated
}
