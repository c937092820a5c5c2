package order

import (
	"errors"
	"math"
	"sort"

	"storymap/internal/model"
)

// Step is the canonical spacing between siblings. New lists are laid out
// at multiples of Step and appends land Step past the last sibling.
const Step = 10.0

// ErrNoSpace is returned when no order value fits strictly between the bounds
// (the bounds are equal, inverted, or adjacent at float64 precision).
var ErrNoSpace = errors.New("no space between orders")

func usable(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Between returns the midpoint of a and b. It requires a < b and fails with
// ErrNoSpace when the midpoint collapses onto one of the endpoints.
func Between(a, b float64) (float64, error) {
	if !(a < b) {
		return 0, ErrNoSpace
	}
	mid := (a + b) / 2
	if !usable(mid) || !(a < mid && mid < b) {
		return 0, ErrNoSpace
	}
	return mid, nil
}

// Before returns an order that sorts before f. An existing sibling moved to the
// front takes half of f; when halving would not go lower (f <= 0) it takes f-1.
func Before(f float64) (float64, error) {
	if h := f / 2; usable(h) && h < f {
		return h, nil
	}
	if r := f - 1; usable(r) && r < f {
		return r, nil
	}
	return 0, ErrNoSpace
}

// After returns an order Step past l.
func After(l float64) (float64, error) {
	r := l + Step
	if !usable(r) || !(r > l) {
		return 0, ErrNoSpace
	}
	return r, nil
}

// Initial is the first canonical slot of an empty sibling group.
func Initial() float64 { return Step }

// InitialAt is the canonical order for position i of a freshly laid out list.
func InitialAt(i int) float64 { return float64(i) * Step }

// Sort sorts entities in place by ascending order. Equal orders keep their input order.
func Sort(items []model.Entity) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Order < items[j].Order
	})
}

// Reindex lays items out at index*Step in the given (final display) order and
// returns only the entities whose order changes.
func Reindex(items []model.Entity) []model.OrderUpdate {
	out := []model.OrderUpdate{}
	for i, it := range items {
		next := InitialAt(i)
		if it.Order == next {
			continue
		}
		out = append(out, model.OrderUpdate{EntityID: it.ID, OldValue: it.Order, NewValue: next})
	}
	return out
}

// Distinct reports whether no two items share an order value.
func Distinct(items []model.Entity) bool {
	seen := make(map[float64]bool, len(items))
	for _, it := range items {
		if seen[it.Order] {
			return false
		}
		seen[it.Order] = true
	}
	return true
}
