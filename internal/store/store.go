package store

import (
	"sort"
	"strings"
	"sync"

	"storymap/internal/model"
)

// Store is the normalized entity store: the single source of truth for order
// values and parent references. Collaborators receive a *Store explicitly.
//
// Reads may come from anywhere; mutation is reserved for the change emitter.
type Store struct {
	mu      sync.RWMutex
	project model.Project
	tables  map[model.Kind]*table
}

type table struct {
	rows map[string]*row
	next int
}

type row struct {
	e   model.Entity
	seq int
}

func newTable() *table {
	return &table{rows: map[string]*row{}}
}

func (t *table) put(e model.Entity) {
	if r, ok := t.rows[e.ID]; ok {
		// Duplicate id in one load: the later record wins but keeps the first slot.
		r.e = e
		return
	}
	t.rows[e.ID] = &row{e: e, seq: t.next}
	t.next++
}

func (t *table) sorted() []model.Entity {
	rows := make([]*row, 0, len(t.rows))
	for _, r := range t.rows {
		rows = append(rows, r)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].e.Order != rows[j].e.Order {
			return rows[i].e.Order < rows[j].e.Order
		}
		return rows[i].seq < rows[j].seq
	})
	out := make([]model.Entity, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.e)
	}
	return out
}

var entityKinds = []model.Kind{
	model.KindJourney,
	model.KindFeature,
	model.KindStory,
	model.KindRelease,
	model.KindPersona,
}

func New() *Store {
	s := &Store{tables: map[model.Kind]*table{}}
	for _, k := range entityKinds {
		s.tables[k] = newTable()
	}
	return s
}

// Get returns a copy of the entity.
func (s *Store) Get(kind model.Kind, id string) (model.Entity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[kind]
	if !ok {
		return model.Entity{}, false
	}
	r, ok := t.rows[strings.TrimSpace(id)]
	if !ok {
		return model.Entity{}, false
	}
	return r.e, true
}

// List returns all entities of kind ordered by ascending order, ties broken by load order.
func (s *Store) List(kind model.Kind) []model.Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[kind]
	if !ok {
		return nil
	}
	return t.sorted()
}

func (s *Store) Project() model.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.project
}

// Group identifies a sibling group. Journeys share the zero Group; features are
// grouped by journey; stories by feature and release.
type Group struct {
	JourneyID string
	FeatureID string
	ReleaseID string
}

func GroupOf(e model.Entity) Group {
	switch e.Kind {
	case model.KindFeature:
		return Group{JourneyID: e.JourneyID}
	case model.KindStory:
		return Group{FeatureID: e.FeatureID, ReleaseID: e.ReleaseID}
	default:
		return Group{}
	}
}

// Siblings returns the entities of kind in group g, in display order.
// Groups are always derived from the parent references; nothing is cached.
func (s *Store) Siblings(kind model.Kind, g Group) []model.Entity {
	all := s.List(kind)
	out := make([]model.Entity, 0, len(all))
	for _, e := range all {
		if GroupOf(e) == g {
			out = append(out, e)
		}
	}
	return out
}

// View is the fully ordered read projection consumed by renderers.
type View struct {
	Project  model.Project  `json:"project"`
	Journeys []model.Entity `json:"journeys"`
	Features []model.Entity `json:"features"`
	Stories  []model.Entity `json:"stories"`
	Releases []model.Entity `json:"releases"`
	Personas []model.Entity `json:"personas"`
}

func (s *Store) Snapshot() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return View{
		Project:  s.project,
		Journeys: s.tables[model.KindJourney].sorted(),
		Features: s.tables[model.KindFeature].sorted(),
		Stories:  s.tables[model.KindStory].sorted(),
		Releases: s.tables[model.KindRelease].sorted(),
		Personas: s.tables[model.KindPersona].sorted(),
	}
}
