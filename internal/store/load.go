package store

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"storymap/internal/model"
)

// Record is one raw host record as delivered by a bulk load.
type Record map[string]any

// Batch is a full bulk load: every entity type at once.
type Batch struct {
	Project  Record   `json:"project,omitempty"`
	Journeys []Record `json:"journeys"`
	Features []Record `json:"features"`
	Stories  []Record `json:"stories"`
	Releases []Record `json:"releases"`
	Personas []Record `json:"personas"`
}

// Host field aliases, first match wins.
var (
	idKeys      = []string{"id", "Id", "ID"}
	nameKeys    = []string{"name", "Name", "title", "Title"}
	orderKeys   = []string{"order", "order_index", "orderIndex", "Order", "Order_Index"}
	journeyKeys = []string{"journeyId", "journey_id", "journey", "Journey"}
	featureKeys = []string{"featureId", "feature_id", "feature", "Feature"}
	releaseKeys = []string{"releaseId", "release_id", "release", "Release"}
	typeKeys    = []string{"type", "Type", "storyType", "story_type"}
	dateKeys    = []string{"targetDate", "target_date", "TargetDate", "date"}
)

// Load replaces the contents of every entity type with the normalized batch.
// Malformed records are defaulted, never rejected.
func (s *Store) Load(b Batch) {
	tables := map[model.Kind]*table{}
	for _, k := range entityKinds {
		tables[k] = newTable()
	}
	load := func(kind model.Kind, recs []Record) {
		for i, rec := range recs {
			tables[kind].put(normalize(kind, i, rec))
		}
	}
	load(model.KindJourney, b.Journeys)
	load(model.KindFeature, b.Features)
	load(model.KindStory, b.Stories)
	load(model.KindRelease, b.Releases)
	load(model.KindPersona, b.Personas)

	p := model.Project{}
	if b.Project != nil {
		e := normalize(model.KindProject, 0, b.Project)
		p = model.Project{ID: e.ID, Name: e.Name}
	}

	s.mu.Lock()
	s.tables = tables
	s.project = p
	s.mu.Unlock()
}

func normalize(kind model.Kind, idx int, rec Record) model.Entity {
	e := model.Entity{Kind: kind}

	e.ID, _ = lookupString(rec, idKeys)
	if e.ID == "" {
		e.ID = fmt.Sprintf("%s-%d", kind, idx+1)
	}
	if v, ok := lookup(rec, nameKeys); ok {
		if name, ok := v.(string); ok {
			e.Name = strings.TrimSpace(name)
		}
	}
	if e.Name == "" {
		e.Name = fmt.Sprintf("%s %d", kind.Label(), idx+1)
	}
	if kind.Ordered() {
		e.Order, _ = lookupFloat(rec, orderKeys)
	}

	switch kind {
	case model.KindFeature:
		e.JourneyID, _ = lookupRef(rec, journeyKeys)
	case model.KindStory:
		e.FeatureID, _ = lookupRef(rec, featureKeys)
		e.ReleaseID, _ = lookupRef(rec, releaseKeys)
		typ, _ := lookupString(rec, typeKeys)
		e.StoryType = ParseStoryType(typ)
	case model.KindRelease:
		if v, ok := lookup(rec, dateKeys); ok {
			e.TargetDate = asDate(v)
		}
	}
	return e
}

// ParseStoryType maps host spellings onto the two story types. Anything
// unrecognized is a plain story.
func ParseStoryType(s string) model.StoryType {
	k := strings.ToLower(s)
	k = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(k)
	switch k {
	case "techrequirement", "techreq", "tech":
		return model.StoryTypeTechRequirement
	default:
		return model.StoryTypeStory
	}
}

func lookup(rec Record, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := rec[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func lookupString(rec Record, keys []string) (string, bool) {
	v, ok := lookup(rec, keys)
	if !ok {
		return "", false
	}
	return asString(v)
}

func lookupFloat(rec Record, keys []string) (float64, bool) {
	v, ok := lookup(rec, keys)
	if !ok {
		return 0, false
	}
	return asFloat(v)
}

// lookupRef resolves a parent reference that may be a plain id or a nested
// object carrying one ({"id": "j1", "name": ...}).
func lookupRef(rec Record, keys []string) (string, bool) {
	v, ok := lookup(rec, keys)
	if !ok {
		return "", false
	}
	switch t := v.(type) {
	case map[string]any:
		return lookupString(Record(t), idKeys)
	case Record:
		return lookupString(t, idKeys)
	default:
		return asString(v)
	}
}

func asString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		return s, s != ""
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	default:
		return "", false
	}
}

func asFloat(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		x, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = x
	case string:
		x, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = x
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func asDate(v any) *time.Time {
	switch t := v.(type) {
	case time.Time:
		return &t
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range []string{"2006-01-02", time.RFC3339} {
			if d, err := time.Parse(layout, s); err == nil {
				return &d
			}
		}
	}
	return nil
}
