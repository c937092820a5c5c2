package mutate

import (
	"errors"
	"testing"

	"storymap/internal/model"
	"storymap/internal/store"
	"storymap/internal/surface"
)

func newMap(t *testing.T) *store.Store {
	t.Helper()
	st := store.New()
	st.Load(store.Batch{
		Journeys: []store.Record{
			{"id": "jA", "name": "Discover", "order": 10},
			{"id": "jB", "name": "Purchase", "order": 20},
			{"id": "jC", "name": "Support", "order": 30},
		},
		Features: []store.Record{
			{"id": "f1", "journeyId": "jA", "order": 10},
			{"id": "f2", "journeyId": "jA", "order": 20},
			{"id": "f3", "journeyId": "jA", "order": 30},
			{"id": "fB", "journeyId": "jB", "order": 10},
		},
		Stories: []store.Record{
			{"id": "s1", "featureId": "f1", "releaseId": "r1", "order": 10},
			{"id": "s2", "featureId": "f1", "releaseId": "r1", "order": 20},
			{"id": "s3", "featureId": "f2", "order": 10},
		},
		Releases: []store.Record{
			{"id": "r1", "name": "MVP"},
			{"id": "r2", "name": "Later"},
		},
	})
	return st
}

func orderedIDs(st *store.Store, kind model.Kind, g store.Group) []string {
	var out []string
	for _, e := range st.Siblings(kind, g) {
		out = append(out, e.ID)
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestResolve_SelfDrop_Noop(t *testing.T) {
	st := newMap(t)
	m, err := Resolve(st, Drop{Surface: surface.Features, DraggedID: "f2", Target: Target{CardID: "f2"}})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if m.Kind != MoveNoop {
		t.Fatalf("expected noop; got %s", m.Kind)
	}
}

func TestResolve_SameParent_MovingUpLandsBeforeTarget(t *testing.T) {
	st := newMap(t)
	m, err := Resolve(st, Drop{Surface: surface.Features, DraggedID: "f3", Target: Target{CardID: "f2"}})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if m.Kind != MoveReorder {
		t.Fatalf("expected reorder; got %s", m.Kind)
	}
	if m.Plan.Order != 15 {
		t.Fatalf("expected order 15; got %v", m.Plan.Order)
	}
	if m.FieldName() != model.FieldOrder {
		t.Fatalf("expected field %q; got %q", model.FieldOrder, m.FieldName())
	}
}

func TestResolve_SameParent_MovingDownLandsAfterTarget(t *testing.T) {
	st := newMap(t)
	m, err := Resolve(st, Drop{Surface: surface.Features, DraggedID: "f1", Target: Target{CardID: "f2"}})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if m.Plan.Order != 25 {
		t.Fatalf("expected order 25 (between f2 and f3); got %v", m.Plan.Order)
	}
}

func TestResolve_JourneyToFront_HalvesFirst(t *testing.T) {
	st := newMap(t)
	m, err := Resolve(st, Drop{Surface: surface.Journeys, DraggedID: "jB", Target: Target{CardID: "jA"}})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if m.Plan.Order != 5 {
		t.Fatalf("expected order 5; got %v", m.Plan.Order)
	}
}

func TestResolve_ContainerOfOtherJourney_Appends(t *testing.T) {
	st := newMap(t)
	m, err := Resolve(st, Drop{Surface: surface.Features, DraggedID: "f3", Target: Target{Container: &Container{JourneyID: "jB"}}})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if m.Kind != MoveReparent {
		t.Fatalf("expected reparent; got %s", m.Kind)
	}
	if m.Plan.Order != 20 {
		t.Fatalf("expected order 20; got %v", m.Plan.Order)
	}
	if got, want := m.FieldName(), "order_index_journey"; got != want {
		t.Fatalf("expected field %q; got %q", want, got)
	}
}

func TestResolve_EmptyContainer_FirstSlot(t *testing.T) {
	st := newMap(t)
	m, err := Resolve(st, Drop{Surface: surface.Features, DraggedID: "f1", Target: Target{Container: &Container{JourneyID: "jC"}}})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if m.Kind != MoveEmpty {
		t.Fatalf("expected empty-container move; got %s", m.Kind)
	}
	if m.Plan.Order != 10 {
		t.Fatalf("expected order 10; got %v", m.Plan.Order)
	}
}

func TestResolve_OwnContainer_AlreadyLast_Noop(t *testing.T) {
	st := newMap(t)
	m, err := Resolve(st, Drop{Surface: surface.Features, DraggedID: "f3", Target: Target{Container: &Container{JourneyID: "jA"}}})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if m.Kind != MoveNoop {
		t.Fatalf("expected noop; got %s", m.Kind)
	}
}

func TestResolve_StoryOntoCardInOtherFeature(t *testing.T) {
	st := newMap(t)
	// s3 lives in f2 with no release; s1 is first in f1 x r1.
	m, err := Resolve(st, Drop{Surface: surface.Stories, DraggedID: "s3", Target: Target{CardID: "s1"}})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got, want := m.FieldName(), "order_index_feature_release"; got != want {
		t.Fatalf("expected field %q; got %q", want, got)
	}
	if m.Plan.Order != 5 {
		t.Fatalf("expected order 5 (before s1); got %v", m.Plan.Order)
	}
}

func TestResolve_StoryToOtherRelease_SameFeature(t *testing.T) {
	st := newMap(t)
	m, err := Resolve(st, Drop{Surface: surface.Stories, DraggedID: "s2", Target: Target{Container: &Container{FeatureID: "f1", ReleaseID: "r2"}}})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got, want := m.FieldName(), "order_index_release"; got != want {
		t.Fatalf("expected field %q; got %q", want, got)
	}
}

func TestResolve_Unresolvable(t *testing.T) {
	st := newMap(t)

	tests := []struct {
		name string
		drop Drop
		want error
	}{
		{
			name: "missing dragged",
			drop: Drop{Surface: surface.Features, DraggedID: "nope", Target: Target{CardID: "f1"}},
		},
		{
			name: "missing target card",
			drop: Drop{Surface: surface.Features, DraggedID: "f1", Target: Target{CardID: "nope"}},
		},
		{
			name: "missing container journey",
			drop: Drop{Surface: surface.Features, DraggedID: "f1", Target: Target{Container: &Container{JourneyID: "nope"}}},
		},
		{
			name: "missing container release",
			drop: Drop{Surface: surface.Stories, DraggedID: "s1", Target: Target{Container: &Container{FeatureID: "f1", ReleaseID: "nope"}}},
		},
		{
			name: "card on another surface",
			drop: Drop{Surface: surface.Features, DraggedID: "f1", Target: Target{CardID: "s1"}},
			want: ErrKindMismatch,
		},
		{
			name: "no target",
			drop: Drop{Surface: surface.Features, DraggedID: "f1"},
			want: ErrNoTarget,
		},
		{
			name: "unknown surface",
			drop: Drop{Surface: "releases", DraggedID: "r1", Target: Target{CardID: "r2"}},
			want: ErrUnknownSurface,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Resolve(st, tc.drop)
			if err == nil {
				t.Fatalf("expected error")
			}
			if tc.want != nil {
				if !errors.Is(err, tc.want) {
					t.Fatalf("expected %v; got %v", tc.want, err)
				}
				return
			}
			var nf store.NotFoundError
			if !errors.As(err, &nf) {
				t.Fatalf("expected NotFoundError; got %v", err)
			}
		})
	}
}

func TestResolve_DoesNotMutate(t *testing.T) {
	st := newMap(t)
	before := st.Snapshot()
	if _, err := Resolve(st, Drop{Surface: surface.Features, DraggedID: "f3", Target: Target{Container: &Container{JourneyID: "jB"}}}); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	after := st.Snapshot()
	for i := range before.Features {
		if before.Features[i] != after.Features[i] {
			t.Fatalf("resolve mutated the store: %v -> %v", before.Features[i], after.Features[i])
		}
	}
}
