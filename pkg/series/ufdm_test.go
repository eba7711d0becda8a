package series_test

import (
	"path/filepath"
	"testing"

	"github.com/fibtrace-net/fibtrace/internal/testutil"
	"github.com/fibtrace-net/fibtrace/pkg/records"
	"github.com/fibtrace-net/fibtrace/pkg/series"
)

func TestUFDM(t *testing.T) {
	dir := testutil.SampleDir(t)
	p := fixtureParams(dir)

	// two interleaved keys; the repeated r2 add resolves to the same
	// next-hop and is dropped
	testutil.WriteLines(t, filepath.Join(dir, "ufdm_log_"+testutil.Timestamp+".csv"),
		"rid,router_name,time,kind,prefix,next_hop",
		"2,r2,100.2,Add,100.0.1.0/24,10.0.1.1",
		"3,r3,100.25,Add,100.0.1.0/24,10.0.2.1",
		"2,r2,100.3,Add,100.0.1.0/24,10.0.1.2",
		"2,r2,100.4,Add,100.0.1.0/24,10.0.3.1",
		"2,r2,100.5,Del,100.0.1.0/24,",
	)

	updated, err := series.UFDM(p, testutil.Lookup(t))
	if err != nil {
		t.Fatalf("UFDM: %v", err)
	}
	if !updated {
		t.Fatal("expected stage to produce output")
	}

	got := readStage(t, p, "ufdm")
	want := []struct {
		time float64
		src  records.RouterID
		nh   records.RouterID
	}{
		{100.2, 2, 1},
		{100.25, 3, 2},
		{100.4, 2, 3},
		{100.5, 2, records.NoRouter},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d records, want %d: %+v", len(got), len(want), got)
	}
	for i, rec := range got {
		if rec.Time != want[i].time || rec.Src != want[i].src || rec.NextHop != want[i].nh {
			t.Errorf("record %d = %+v, want %+v", i, rec, want[i])
		}
	}
}

func TestUFDM_MissingInput(t *testing.T) {
	dir := testutil.SampleDir(t)
	p := fixtureParams(dir)

	updated, err := series.UFDM(p, testutil.Lookup(t))
	if err != nil {
		t.Fatalf("UFDM: %v", err)
	}
	if updated {
		t.Error("missing input must not count as an update")
	}
}
