package source_test

import (
	"errors"
	"testing"

	"github.com/fibtrace-net/fibtrace/internal/testutil"
	"github.com/fibtrace-net/fibtrace/pkg/lookup"
	"github.com/fibtrace-net/fibtrace/pkg/records"
	"github.com/fibtrace-net/fibtrace/pkg/source"
)

// stubRow is a hand-built normalized row for exercising the resolution
// rules without a log file.
type stubRow struct {
	time    float64
	router  records.RouterID
	addr    string
	hasKind bool
	kind    source.Kind
	nh      string
}

func (r *stubRow) Time() float64 {
	return r.time
}

func (r *stubRow) Router() records.RouterID {
	return r.router
}

func (r *stubRow) Addr() (records.Addr, bool) {
	if r.addr == "" {
		return records.Addr{}, false
	}
	a, _ := records.ParseAddr(r.addr)
	return a, true
}

func (r *stubRow) Kind() (source.Kind, bool) {
	return r.kind, r.hasKind
}

func (r *stubRow) OspfNextHop() (records.Addr, bool) {
	if r.nh == "" {
		return records.Addr{}, false
	}
	a, _ := records.ParseAddr(r.nh)
	return a, true
}

// overrideRow additionally fixes its own next-hop.
type overrideRow struct {
	stubRow
	override records.RouterID
}

func (r *overrideRow) NextHop(_ *lookup.Context) (records.RouterID, error) {
	return r.override, nil
}

const eventStart = 100.0

func TestResolve_Ignored(t *testing.T) {
	lut := testutil.Lookup(t)

	tests := []struct {
		name string
		row  stubRow
	}{
		{"no kind", stubRow{time: 100, router: 1, addr: "100.0.1.5"}},
		{"infrastructure prefix", stubRow{time: 100, router: 1, addr: "10.0.2.1", hasKind: true, kind: source.KindDelete}},
		{"before event window", stubRow{time: 98.9, router: 1, addr: "100.0.1.5", hasKind: true, kind: source.KindDelete}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := source.Resolve(&tt.row, lut, eventStart)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if rec != nil {
				t.Errorf("expected row to be ignored, got %+v", rec)
			}
		})
	}
}

func TestResolve_WindowLowerBound(t *testing.T) {
	lut := testutil.Lookup(t)
	// exactly eventStart-1 is kept
	row := stubRow{time: 99, router: 1, addr: "100.0.1.5", hasKind: true, kind: source.KindDelete}
	rec, err := source.Resolve(&row, lut, eventStart)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if rec == nil {
		t.Fatal("row at the window boundary was dropped")
	}
}

func TestResolve_Add(t *testing.T) {
	lut := testutil.Lookup(t)
	// r1 adds 100.0.1.5 via 10.0.3.1 (owned by r3); OSPF routes r1->r3 via r2
	row := stubRow{time: 100.5, router: 1, addr: "100.0.1.5", hasKind: true, kind: source.KindAdd, nh: "10.0.3.1"}
	rec, err := source.Resolve(&row, lut, eventStart)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := records.FWRecord{
		Time:        100.5,
		Src:         1,
		SrcName:     "r1",
		Prefix:      testutil.Must(records.ParsePrefix("100.0.1.0/24")),
		NextHop:     2,
		NextHopName: "r2",
	}
	if *rec != want {
		t.Errorf("Resolve = %+v, want %+v", *rec, want)
	}
}

func TestResolve_Delete(t *testing.T) {
	lut := testutil.Lookup(t)
	row := stubRow{time: 100.5, router: 1, addr: "100.0.1.5", hasKind: true, kind: source.KindDelete}
	rec, err := source.Resolve(&row, lut, eventStart)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if rec.HasNextHop() {
		t.Errorf("delete should clear the next-hop: %+v", rec)
	}
	if rec.NextHopName != "" {
		t.Errorf("NextHopName = %q, want empty", rec.NextHopName)
	}
}

func TestResolve_Errors(t *testing.T) {
	lut := testutil.Lookup(t)

	t.Run("kind without address", func(t *testing.T) {
		row := stubRow{time: 100, router: 1, hasKind: true, kind: source.KindAdd}
		_, err := source.Resolve(&row, lut, eventStart)
		if !errors.Is(err, records.ErrInconsistentData) {
			t.Errorf("err = %v, want ErrInconsistentData", err)
		}
	})

	t.Run("add without next-hop", func(t *testing.T) {
		row := stubRow{time: 100, router: 1, addr: "100.0.1.5", hasKind: true, kind: source.KindAdd}
		_, err := source.Resolve(&row, lut, eventStart)
		if !errors.Is(err, records.ErrInconsistentData) {
			t.Errorf("err = %v, want ErrInconsistentData", err)
		}
	})

	t.Run("unresolvable next-hop", func(t *testing.T) {
		row := stubRow{time: 100, router: 1, addr: "100.0.1.5", hasKind: true, kind: source.KindAdd, nh: "172.16.0.1"}
		_, err := source.Resolve(&row, lut, eventStart)
		if !errors.Is(err, records.ErrUnresolvableAddress) {
			t.Errorf("err = %v, want ErrUnresolvableAddress", err)
		}
	})
}

func TestResolve_NextHopOverride(t *testing.T) {
	lut := testutil.Lookup(t)
	row := overrideRow{
		stubRow:  stubRow{time: 100, router: 1, addr: "100.0.1.5", hasKind: true, kind: source.KindAdd},
		override: 3,
	}
	rec, err := source.Resolve(&row, lut, eventStart)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if rec.NextHop != 3 || rec.NextHopName != "r3" {
		t.Errorf("override not applied: %+v", rec)
	}
}
