package mutate

import (
	"fmt"
	"strings"

	"storymap/internal/model"
	"storymap/internal/order"
	"storymap/internal/store"
	"storymap/internal/surface"
)

// Container is a drop placeholder naming a destination sibling group:
// nothing for journeys, a journey for features, a feature and optional release for stories.
type Container struct {
	JourneyID string `json:"journeyId,omitempty"`
	FeatureID string `json:"featureId,omitempty"`
	ReleaseID string `json:"releaseId,omitempty"`
}

// Target is either an existing card or a container placeholder.
type Target struct {
	CardID    string     `json:"cardId,omitempty"`
	Container *Container `json:"container,omitempty"`
}

type Drop struct {
	Surface   surface.Name `json:"surface"`
	DraggedID string       `json:"draggedId"`
	Target    Target       `json:"target"`
}

type MoveKind string

const (
	MoveNoop     MoveKind = "noop"
	MoveReorder  MoveKind = "reorder"
	MoveReparent MoveKind = "reparent"
	MoveEmpty    MoveKind = "empty"
)

// Move is a classified drop, fully computed against the store but not yet applied.
type Move struct {
	Kind   MoveKind
	Entity model.Entity
	From   store.Group
	To     store.Group
	Plan   order.Plan

	// Parents lists the parent reference fields that change, in journey, feature, release order.
	Parents []string
}

// FieldName is the change record field name: order_index alone, or joined with
// every changed parent reference.
func (m Move) FieldName() string {
	return strings.Join(append([]string{model.FieldOrder}, m.Parents...), "_")
}

func KindFor(s surface.Name) (model.Kind, bool) {
	switch s {
	case surface.Journeys:
		return model.KindJourney, true
	case surface.Features:
		return model.KindFeature, true
	case surface.Stories:
		return model.KindStory, true
	default:
		return "", false
	}
}

// Resolve classifies a drop and computes the resulting order and parent changes.
// It reads the store only.
func Resolve(st *store.Store, d Drop) (Move, error) {
	kind, ok := KindFor(d.Surface)
	if !ok {
		return Move{}, fmt.Errorf("%w: %q", ErrUnknownSurface, d.Surface)
	}
	draggedID := strings.TrimSpace(d.DraggedID)
	targetID := strings.TrimSpace(d.Target.CardID)

	if draggedID != "" && draggedID == targetID {
		return Move{Kind: MoveNoop}, nil
	}

	dragged, ok := st.Get(kind, draggedID)
	if !ok {
		return Move{}, store.NotFoundError{Kind: string(kind), ID: draggedID}
	}
	from := store.GroupOf(dragged)

	var (
		to     store.Group
		onCard bool
	)
	switch {
	case targetID != "":
		target, ok := st.Get(kind, targetID)
		if !ok {
			if onOtherSurface(st, kind, targetID) {
				return Move{}, fmt.Errorf("%w: %s", ErrKindMismatch, targetID)
			}
			return Move{}, store.NotFoundError{Kind: string(kind), ID: targetID}
		}
		to = store.GroupOf(target)
		onCard = true
	case d.Target.Container != nil:
		g, err := containerGroup(st, kind, *d.Target.Container)
		if err != nil {
			return Move{}, err
		}
		to = g
	default:
		return Move{}, ErrNoTarget
	}

	sibs := st.Siblings(kind, to)
	same := from == to

	// insertAt is an index into the group with the dragged card removed.
	// Dropping on a card takes the card's current slot: moving down lands after
	// it, moving up (or arriving from another group) lands before it.
	// Dropping on a container appends.
	var insertAt int
	if onCard {
		for i, e := range sibs {
			if e.ID == targetID {
				insertAt = i
				break
			}
		}
	} else {
		insertAt = len(sibs)
		if same {
			insertAt = len(sibs) - 1
		}
	}

	plan, err := order.PlanMove(sibs, dragged, insertAt)
	if err != nil {
		return Move{}, err
	}

	m := Move{Entity: dragged, From: from, To: to, Plan: plan}
	switch {
	case same && plan.Unchanged:
		m.Kind = MoveNoop
	case same:
		m.Kind = MoveReorder
	case len(sibs) == 0:
		m.Kind = MoveEmpty
	default:
		m.Kind = MoveReparent
	}
	if !same {
		m.Parents = changedParents(kind, from, to)
	}
	return m, nil
}

func changedParents(kind model.Kind, from, to store.Group) []string {
	var out []string
	switch kind {
	case model.KindFeature:
		if from.JourneyID != to.JourneyID {
			out = append(out, model.FieldJourney)
		}
	case model.KindStory:
		if from.FeatureID != to.FeatureID {
			out = append(out, model.FieldFeature)
		}
		if from.ReleaseID != to.ReleaseID {
			out = append(out, model.FieldRelease)
		}
	}
	return out
}

// containerGroup resolves a placeholder into a sibling group, checking that
// every reference it names exists.
func containerGroup(st *store.Store, kind model.Kind, c Container) (store.Group, error) {
	switch kind {
	case model.KindJourney:
		return store.Group{}, nil
	case model.KindFeature:
		id := strings.TrimSpace(c.JourneyID)
		if _, ok := st.Get(model.KindJourney, id); !ok {
			return store.Group{}, store.NotFoundError{Kind: string(model.KindJourney), ID: id}
		}
		return store.Group{JourneyID: id}, nil
	case model.KindStory:
		fid := strings.TrimSpace(c.FeatureID)
		if _, ok := st.Get(model.KindFeature, fid); !ok {
			return store.Group{}, store.NotFoundError{Kind: string(model.KindFeature), ID: fid}
		}
		rid := strings.TrimSpace(c.ReleaseID)
		if rid != "" {
			if _, ok := st.Get(model.KindRelease, rid); !ok {
				return store.Group{}, store.NotFoundError{Kind: string(model.KindRelease), ID: rid}
			}
		}
		return store.Group{FeatureID: fid, ReleaseID: rid}, nil
	}
	return store.Group{}, fmt.Errorf("%w: %s", ErrUnknownSurface, kind)
}

func onOtherSurface(st *store.Store, kind model.Kind, id string) bool {
	for _, k := range []model.Kind{model.KindJourney, model.KindFeature, model.KindStory} {
		if k == kind {
			continue
		}
		if _, ok := st.Get(k, id); ok {
			return true
		}
	}
	return false
}
