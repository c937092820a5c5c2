package store

import (
	"errors"
	"testing"

	"storymap/internal/model"
)

func seeded(t *testing.T) *Store {
	t.Helper()
	s := New()
	s.Load(Batch{
		Journeys: []Record{
			{"id": "j1", "name": "Onboard", "order": 20},
			{"id": "j2", "name": "Browse", "order": 10},
		},
		Features: []Record{
			{"id": "f1", "journeyId": "j1", "order": 10},
			{"id": "f2", "journeyId": "j1", "order": 10},
			{"id": "f3", "journeyId": "j2", "order": 5},
		},
		Stories: []Record{
			{"id": "s1", "featureId": "f1", "releaseId": "r1", "order": 10},
			{"id": "s2", "featureId": "f1", "order": 20},
			{"id": "s3", "featureId": "f1", "releaseId": "r1", "order": 5},
		},
		Releases: []Record{{"id": "r1", "name": "MVP"}},
	})
	return s
}

func TestList_OrdersAscendingWithStableTies(t *testing.T) {
	s := seeded(t)

	js := s.List(model.KindJourney)
	if len(js) != 2 || js[0].ID != "j2" || js[1].ID != "j1" {
		t.Fatalf("expected journeys [j2 j1]; got %v", js)
	}

	fs := s.List(model.KindFeature)
	got := []string{fs[0].ID, fs[1].ID, fs[2].ID}
	want := []string{"f3", "f1", "f2"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected features %v; got %v", want, got)
		}
	}
}

func TestSiblings_DerivedFromReferences(t *testing.T) {
	s := seeded(t)

	sibs := s.Siblings(model.KindStory, Group{FeatureID: "f1", ReleaseID: "r1"})
	if len(sibs) != 2 || sibs[0].ID != "s3" || sibs[1].ID != "s1" {
		t.Fatalf("expected [s3 s1]; got %v", sibs)
	}

	if err := s.SetField(model.KindStory, "s3", model.FieldRelease, ""); err != nil {
		t.Fatalf("SetField: %v", err)
	}
	sibs = s.Siblings(model.KindStory, Group{FeatureID: "f1", ReleaseID: "r1"})
	if len(sibs) != 1 || sibs[0].ID != "s1" {
		t.Fatalf("expected [s1] after reparent; got %v", sibs)
	}
	backlog := s.Siblings(model.KindStory, Group{FeatureID: "f1"})
	if len(backlog) != 2 || backlog[0].ID != "s3" || backlog[1].ID != "s2" {
		t.Fatalf("expected [s3 s2] without release; got %v", backlog)
	}
}

func TestSetOrder_InPlace(t *testing.T) {
	s := seeded(t)
	if err := s.SetOrder(model.KindJourney, "j1", 1); err != nil {
		t.Fatalf("SetOrder: %v", err)
	}
	js := s.List(model.KindJourney)
	if js[0].ID != "j1" || js[0].Order != 1 {
		t.Fatalf("expected j1 first with order 1; got %v", js)
	}
}

func TestApply_AllOrNothing(t *testing.T) {
	s := seeded(t)
	err := s.Apply(model.KindFeature,
		Edit{ID: "f1", Field: model.FieldOrder, Value: 99.0},
		Edit{ID: "nope", Field: model.FieldOrder, Value: 1.0},
	)
	var nf NotFoundError
	if !errors.As(err, &nf) || nf.ID != "nope" {
		t.Fatalf("expected NotFoundError for nope; got %v", err)
	}
	if f, _ := s.Get(model.KindFeature, "f1"); f.Order != 10 {
		t.Fatalf("expected f1 untouched; got order %v", f.Order)
	}
}

func TestSetField_Validation(t *testing.T) {
	s := seeded(t)

	tests := []struct {
		name  string
		kind  model.Kind
		id    string
		field string
		value any
		want  error
	}{
		{name: "unknown field", kind: model.KindFeature, id: "f1", field: "color", value: "red", want: ErrUnknownField},
		{name: "journey on story", kind: model.KindStory, id: "s1", field: model.FieldJourney, value: "j1", want: ErrUnknownField},
		{name: "order on release", kind: model.KindRelease, id: "r1", field: model.FieldOrder, value: 1.0, want: ErrUnknownField},
		{name: "name wants string", kind: model.KindJourney, id: "j1", field: model.FieldName, value: 3, want: ErrFieldValue},
		{name: "order wants float", kind: model.KindJourney, id: "j1", field: model.FieldOrder, value: "1", want: ErrFieldValue},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := s.SetField(tc.kind, tc.id, tc.field, tc.value); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v; got %v", tc.want, err)
			}
		})
	}
}

func TestGet_Missing(t *testing.T) {
	s := seeded(t)
	if _, ok := s.Get(model.KindStory, "missing"); ok {
		t.Fatalf("expected missing story")
	}
	if _, ok := s.Get(model.KindProject, "j1"); ok {
		t.Fatalf("expected project kind to have no table")
	}
}

func TestSnapshot_OrderedLists(t *testing.T) {
	s := seeded(t)
	v := s.Snapshot()
	if len(v.Journeys) != 2 || len(v.Features) != 3 || len(v.Stories) != 3 || len(v.Releases) != 1 {
		t.Fatalf("unexpected snapshot sizes: %+v", v)
	}
	if v.Stories[0].ID != "s3" {
		t.Fatalf("expected s3 first; got %v", v.Stories)
	}
}
