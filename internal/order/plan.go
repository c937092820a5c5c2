package order

import (
	"errors"
	"strings"

	"storymap/internal/model"
)

// Plan describes the order updates needed to place one entity in a sibling group.
type Plan struct {
	MovedID  string
	OldOrder float64
	Order    float64

	// Siblings holds order rewrites for entities other than the moved one.
	// It is only populated when the group had to be re-indexed.
	Siblings     []model.OrderUpdate
	UsedFallback bool

	// Unchanged is set when the moved entity already sits at the requested position.
	Unchanged bool
}

// PlanMove plans the order of moved when inserted into sibs at insertAt.
//
// Inputs:
// - sibs: the destination sibling group; it may or may not contain moved
// - moved: the entity being placed (its current Order is the old value)
// - insertAt: index in the destination list *after removing moved*
//
// Behavior:
//   - Prefer changing only the moved entity's order (fast path), using its final neighbors.
//   - If the neighbors leave no room (float64 precision) or the group already holds
//     duplicate orders, re-index the whole group in final order.
func PlanMove(sibs []model.Entity, moved model.Entity, insertAt int) (Plan, error) {
	movedID := strings.TrimSpace(moved.ID)
	if movedID == "" {
		return Plan{}, errors.New("missing moved id")
	}

	cur := append([]model.Entity{}, sibs...)
	Sort(cur)

	movedIdx := -1
	rest := make([]model.Entity, 0, len(cur))
	for i := range cur {
		if cur[i].ID == movedID {
			movedIdx = i
			continue
		}
		rest = append(rest, cur[i])
	}

	if insertAt < 0 {
		insertAt = 0
	}
	if insertAt > len(rest) {
		insertAt = len(rest)
	}

	p := Plan{MovedID: movedID, OldOrder: moved.Order, Order: moved.Order}
	if movedIdx >= 0 && movedIdx == insertAt {
		p.Unchanged = true
		return p, nil
	}

	final := make([]model.Entity, 0, len(rest)+1)
	final = append(final, rest[:insertAt]...)
	final = append(final, moved)
	final = append(final, rest[insertAt:]...)

	if Distinct(rest) {
		if v, err := between(rest, insertAt); err == nil && !collides(rest, v) {
			p.Order = v
			return p, nil
		} else if err != nil && !errors.Is(err, ErrNoSpace) {
			return Plan{}, err
		}
	}

	// Fallback: lay the whole group out again in final order.
	p.UsedFallback = true
	for _, u := range Reindex(final) {
		if u.EntityID == movedID {
			continue
		}
		p.Siblings = append(p.Siblings, u)
	}
	p.Order = InitialAt(insertAt)
	return p, nil
}

// between computes the order for a slot in rest using the immediate neighbors.
func between(rest []model.Entity, insertAt int) (float64, error) {
	hasLower := insertAt > 0
	hasUpper := insertAt < len(rest)
	switch {
	case !hasLower && !hasUpper:
		return Initial(), nil
	case !hasLower:
		return Before(rest[insertAt].Order)
	case !hasUpper:
		return After(rest[insertAt-1].Order)
	default:
		return Between(rest[insertAt-1].Order, rest[insertAt].Order)
	}
}

func collides(rest []model.Entity, v float64) bool {
	for _, it := range rest {
		if it.Order == v {
			return true
		}
	}
	return false
}
