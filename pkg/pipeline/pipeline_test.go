package pipeline_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fibtrace-net/fibtrace/internal/testutil"
	"github.com/fibtrace-net/fibtrace/pkg/pipeline"
)

// populateSample writes the raw logs of a complete fixture sample.
func populateSample(t *testing.T, dir string) {
	t.Helper()
	testutil.WriteLines(t, filepath.Join(dir, "bgp_updates_"+testutil.Pcap+".csv"),
		"time;src;dst;src_name;dst_name;reach;unreach;path_length;next_hop",
		"100.5;1;2;r1;r2;100.0.1.0;;3;10.0.1.1",
		"101.0;1;2;r1;r2;;100.0.1.0;;",
	)
	testutil.WriteLines(t, filepath.Join(dir, "urib_log_"+testutil.Timestamp+".csv"),
		"rid,router_name,time,kind,prefix,next_hop",
		"2,r2,100.6,Add,100.0.1.0/24,10.0.1.1",
		"2,r2,101.1,Delete,100.0.1.0/24,",
	)
	testutil.WriteLines(t, filepath.Join(dir, "ufdm_log_"+testutil.Timestamp+".csv"),
		"rid,router_name,time,kind,prefix,next_hop",
		"2,r2,100.7,Add,100.0.1.0/24,10.0.1.1",
		"2,r2,101.2,Del,100.0.1.0/24,",
	)
	testutil.WriteLines(t, filepath.Join(dir, "ipfib_log_"+testutil.Timestamp+".csv"),
		"rid,router_name,time,kind,prefix,nh_count",
		"2,r2,100.8,Add,100.0.1.0/24,1",
		"2,r2,101.3,Del,100.0.1.0/24,0",
	)
}

func TestRun(t *testing.T) {
	dir := testutil.SampleDir(t)
	populateSample(t, dir)
	root := filepath.Dir(filepath.Dir(dir))

	opts := pipeline.Options{DataRoot: root, Workers: 2}
	results, err := pipeline.Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results: %+v", len(results), results)
	}

	r := results[0]
	if r.Scenario != "clique_delayed" || r.Timestamp != testutil.Timestamp {
		t.Errorf("result = %+v", r)
	}
	if r.EventStart != testutil.EventStart || r.NumPrefixes != 1 {
		t.Errorf("result metadata = %+v", r)
	}
	if !r.Updated {
		t.Error("first run should update the sample")
	}

	outDir := filepath.Join(dir, "time_series_of_forwarding_states_"+testutil.Timestamp)
	for _, stage := range []string{"bgp_messages", "urib", "ufdm", "ipfib"} {
		if _, err := os.Stat(filepath.Join(outDir, stage+".csv")); err != nil {
			t.Errorf("missing %s output: %v", stage, err)
		}
	}

	// second run finds all outputs in place
	results, err = pipeline.Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if len(results) != 1 || results[0].Updated {
		t.Errorf("second run results = %+v", results)
	}

	// replace recomputes everything
	opts.Replace = true
	results, err = pipeline.Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("replace Run: %v", err)
	}
	if len(results) != 1 || !results[0].Updated {
		t.Errorf("replace run results = %+v", results)
	}
}

func TestRun_ScenarioFilter(t *testing.T) {
	dir := testutil.SampleDir(t)
	populateSample(t, dir)
	root := filepath.Dir(filepath.Dir(dir))

	results, err := pipeline.Run(context.Background(), pipeline.Options{
		DataRoot: root,
		Scenario: "no-such-scenario",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}

func TestRun_SampleIDFilter(t *testing.T) {
	dir := testutil.SampleDir(t)
	populateSample(t, dir)
	root := filepath.Dir(filepath.Dir(dir))

	results, err := pipeline.Run(context.Background(), pipeline.Options{
		DataRoot: root,
		SampleID: "different-timestamp",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}

func TestProcessDirectory_SkipsWithoutCapturedData(t *testing.T) {
	// a scenario directory that was never evaluated
	dir := filepath.Join(t.TempDir(), "clique", "fresh")
	testutil.WriteFile(t, filepath.Join(dir, "scenario.yml"), testutil.ScenarioYAML)

	results, err := pipeline.ProcessDirectory(dir, pipeline.Options{})
	if err != nil {
		t.Fatalf("ProcessDirectory: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}

func TestProcessDirectory_SkipsWithoutLogDir(t *testing.T) {
	dir := testutil.SampleDir(t)
	populateSample(t, dir)
	if err := os.RemoveAll(filepath.Join(dir, "logs_"+testutil.Timestamp)); err != nil {
		t.Fatalf("removing log dir: %v", err)
	}

	results, err := pipeline.ProcessDirectory(dir, pipeline.Options{})
	if err != nil {
		t.Fatalf("ProcessDirectory: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}

func TestRun_MissingDataRoot(t *testing.T) {
	_, err := pipeline.Run(context.Background(), pipeline.Options{
		DataRoot: filepath.Join(t.TempDir(), "nope"),
	})
	if err == nil {
		t.Error("expected error for unreadable data root")
	}
}
