package series_test

import (
	"path/filepath"
	"testing"

	"github.com/fibtrace-net/fibtrace/internal/testutil"
	"github.com/fibtrace-net/fibtrace/pkg/records"
	"github.com/fibtrace-net/fibtrace/pkg/series"
)

func fixtureParams(dir string) series.Params {
	return series.Params{
		Dir:        dir,
		Timestamp:  testutil.Timestamp,
		Pcap:       testutil.Pcap,
		EventStart: testutil.EventStart,
	}
}

func readStage(t *testing.T, p series.Params, stage string) []records.FWRecord {
	t.Helper()
	return testutil.Must(records.ReadFWFile(filepath.Join(p.OutDir(), stage+".csv")))
}

func TestURIB(t *testing.T) {
	dir := testutil.SampleDir(t)
	p := fixtureParams(dir)

	// r2's timeline: the seed (not forwarded before the event) is followed
	// by an add via r1, a same-next-hop duplicate, an add via r3, a
	// near-duplicate delete (noise), a real delete, and a near-duplicate
	// add that corrects the delete
	testutil.WriteLines(t, filepath.Join(dir, "urib_log_"+testutil.Timestamp+".csv"),
		"rid,router_name,time,kind,prefix,next_hop",
		"2,r2,100.2,Add,100.0.1.0/24,10.0.1.1",
		"2,r2,100.3,Add,100.0.1.0/24,10.0.1.2",
		"2,r2,100.5,Add,100.0.1.0/24,10.0.3.1",
		"2,r2,100.50005,Delete,100.0.1.0/24,",
		"2,r2,100.6,Delete,100.0.1.0/24,",
		"2,r2,100.60005,Add,100.0.1.0/24,10.0.1.1",
	)

	updated, err := series.URIB(p, testutil.Lookup(t), testutil.LoadScenario(t))
	if err != nil {
		t.Fatalf("URIB: %v", err)
	}
	if !updated {
		t.Fatal("expected stage to produce output")
	}

	got := readStage(t, p, "urib")
	wantNH := []records.RouterID{1, 3, 1}
	wantTime := []float64{100.2, 100.5, 100.60005}
	if len(got) != len(wantNH) {
		t.Fatalf("got %d records, want %d: %+v", len(got), len(wantNH), got)
	}
	for i, rec := range got {
		if rec.Time != wantTime[i] || rec.NextHop != wantNH[i] {
			t.Errorf("record %d = %+v, want time %v nh %v", i, rec, wantTime[i], wantNH[i])
		}
		if rec.Src != 2 || rec.SrcName != "r2" {
			t.Errorf("record %d source = %+v", i, rec)
		}
	}
}

func TestURIB_SeedSuppressesPreEventState(t *testing.T) {
	dir := testutil.SampleDir(t)
	p := fixtureParams(dir)

	// r1 already forwarded 100.0.1.0/24 via r2 before the event; a re-add
	// resolving to the same next-hop is not a change
	testutil.WriteLines(t, filepath.Join(dir, "urib_log_"+testutil.Timestamp+".csv"),
		"rid,router_name,time,kind,prefix,next_hop",
		"1,r1,100.2,Add,100.0.1.0/24,10.0.2.1",
	)

	updated, err := series.URIB(p, testutil.Lookup(t), testutil.LoadScenario(t))
	if err != nil {
		t.Fatalf("URIB: %v", err)
	}
	if !updated {
		t.Fatal("expected stage to produce output")
	}
	if got := readStage(t, p, "urib"); len(got) != 0 {
		t.Errorf("got %d records, want none: %+v", len(got), got)
	}
}

func TestURIB_DropsModifyAndPreEventRows(t *testing.T) {
	dir := testutil.SampleDir(t)
	p := fixtureParams(dir)

	testutil.WriteLines(t, filepath.Join(dir, "urib_log_"+testutil.Timestamp+".csv"),
		"rid,router_name,time,kind,prefix,next_hop,add_count,del_count",
		"2,r2,50.0,Add,100.0.1.0/24,10.0.1.1,,",
		"2,r2,100.2,Modify,100.0.1.0/24,,1,1",
		"2,r2,100.4,Add,100.0.1.0/24,10.0.1.1,,",
	)

	updated, err := series.URIB(p, testutil.Lookup(t), testutil.LoadScenario(t))
	if err != nil {
		t.Fatalf("URIB: %v", err)
	}
	if !updated {
		t.Fatal("expected stage to produce output")
	}
	got := readStage(t, p, "urib")
	if len(got) != 1 || got[0].Time != 100.4 {
		t.Errorf("got %+v, want only the in-window add", got)
	}
}

func TestURIB_MissingInput(t *testing.T) {
	dir := testutil.SampleDir(t)
	p := fixtureParams(dir)

	updated, err := series.URIB(p, testutil.Lookup(t), testutil.LoadScenario(t))
	if err != nil {
		t.Fatalf("URIB: %v", err)
	}
	if updated {
		t.Error("missing input must not count as an update")
	}
}

func TestURIB_ExistingOutput(t *testing.T) {
	dir := testutil.SampleDir(t)
	p := fixtureParams(dir)

	testutil.WriteLines(t, filepath.Join(dir, "urib_log_"+testutil.Timestamp+".csv"),
		"rid,router_name,time,kind,prefix,next_hop",
		"2,r2,100.2,Add,100.0.1.0/24,10.0.1.1",
	)
	lut := testutil.Lookup(t)
	scn := testutil.LoadScenario(t)

	if updated := testutil.Must(series.URIB(p, lut, scn)); !updated {
		t.Fatal("first run should produce output")
	}
	if updated := testutil.Must(series.URIB(p, lut, scn)); updated {
		t.Error("second run should skip the existing output")
	}

	p.Replace = true
	if updated := testutil.Must(series.URIB(p, lut, scn)); !updated {
		t.Error("replace run should recompute the output")
	}
}
