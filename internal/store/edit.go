package store

import (
	"fmt"
	"math"
	"strings"

	"storymap/internal/model"
)

// Edit is one attribute update on one entity.
type Edit struct {
	ID    string
	Field string
	Value any
}

// SetOrder updates an entity's order in place. Uniqueness within the sibling
// group is not checked here; the order allocator guarantees it.
func (s *Store) SetOrder(kind model.Kind, id string, order float64) error {
	return s.Apply(kind, Edit{ID: id, Field: model.FieldOrder, Value: order})
}

// SetField updates a single attribute (name, order or a parent reference).
func (s *Store) SetField(kind model.Kind, id, field string, value any) error {
	return s.Apply(kind, Edit{ID: id, Field: field, Value: value})
}

// Apply validates every edit and then applies all of them under one lock.
// Either all edits land or none do.
func (s *Store) Apply(kind model.Kind, edits ...Edit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tables[kind]
	if !ok {
		return fmt.Errorf("unknown kind %q", kind)
	}

	next := map[string]model.Entity{}
	for _, ed := range edits {
		id := strings.TrimSpace(ed.ID)
		e, ok := next[id]
		if !ok {
			r, found := t.rows[id]
			if !found {
				return NotFoundError{Kind: string(kind), ID: id}
			}
			e = r.e
		}
		if err := setField(&e, ed.Field, ed.Value); err != nil {
			return fmt.Errorf("%s %s: %w", kind, id, err)
		}
		next[id] = e
	}
	for id, e := range next {
		t.rows[id].e = e
	}
	return nil
}

func setField(e *model.Entity, field string, value any) error {
	switch field {
	case model.FieldName:
		v, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: %s wants string, got %T", ErrFieldValue, field, value)
		}
		e.Name = v
	case model.FieldOrder:
		v, ok := value.(float64)
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s wants finite float64, got %v", ErrFieldValue, field, value)
		}
		if !e.Kind.Ordered() {
			return fmt.Errorf("%w: %s has no order", ErrUnknownField, e.Kind)
		}
		e.Order = v
	case model.FieldJourney:
		if e.Kind != model.KindFeature {
			return fmt.Errorf("%w: %s on %s", ErrUnknownField, field, e.Kind)
		}
		v, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: %s wants string, got %T", ErrFieldValue, field, value)
		}
		e.JourneyID = v
	case model.FieldFeature:
		if e.Kind != model.KindStory {
			return fmt.Errorf("%w: %s on %s", ErrUnknownField, field, e.Kind)
		}
		v, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: %s wants string, got %T", ErrFieldValue, field, value)
		}
		e.FeatureID = v
	case model.FieldRelease:
		if e.Kind != model.KindStory {
			return fmt.Errorf("%w: %s on %s", ErrUnknownField, field, e.Kind)
		}
		v, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: %s wants string, got %T", ErrFieldValue, field, value)
		}
		e.ReleaseID = v
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return nil
}
