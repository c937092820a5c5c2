package render

import (
	"bytes"
	"strings"
	"testing"

	"storymap/internal/model"
	"storymap/internal/store"
)

func view() store.View {
	st := store.New()
	st.Load(store.Batch{
		Project:  store.Record{"id": "p1", "name": "Webshop"},
		Journeys: []store.Record{{"id": "j1", "name": "Browse", "order": 10}, {"id": "j2", "name": "Pay", "order": 20}},
		Features: []store.Record{
			{"id": "f1", "name": "Search", "journeyId": "j1", "order": 20},
			{"id": "f2", "name": "Filters", "journeyId": "j1", "order": 10},
		},
		Stories: []store.Record{
			{"id": "s1", "name": "Full text query", "featureId": "f1", "releaseId": "r1", "order": 10},
			{"id": "s2", "name": "Index rebuild", "featureId": "f1", "type": "TechRequirement", "order": 20},
		},
		Releases: []store.Record{
			{"id": "r2", "name": "Later"},
			{"id": "r1", "name": "MVP", "targetDate": "2026-02-01"},
		},
	})
	return st.Snapshot()
}

func TestGrid_ProjectsOrderedView(t *testing.T) {
	var buf bytes.Buffer
	if err := Grid(&buf, view(), Options{CardWidth: 24}); err != nil {
		t.Fatalf("Grid: %v", err)
	}
	out := buf.String()

	for _, want := range []string{"Webshop", "Browse", "Pay", "Search", "Filters", "Full text query", "[T] Index rebuild", "MVP (2026-02-01)", "Later", backlogLabel} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Index(out, "Filters") > strings.Index(out, "Search") {
		t.Fatalf("expected Filters (order 10) left of Search (order 20):\n%s", out)
	}
	if strings.Index(out, "MVP") > strings.Index(out, "Later") {
		t.Fatalf("expected dated release row before undated:\n%s", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no escape codes without color")
	}
}

func TestClip(t *testing.T) {
	if got := clip("Checkout as guest", 8); got != "Checkou…" {
		t.Fatalf("unexpected clip %q", got)
	}
	if got := clip("Pay", 8); got != "Pay" {
		t.Fatalf("unexpected clip %q", got)
	}
}

func TestReleaseRows_UnscheduledLast(t *testing.T) {
	rows := releaseRows([]model.Entity{{ID: "r1", Name: "A"}})
	if len(rows) != 2 || rows[1].id != "" || rows[1].label != backlogLabel {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}
