package mutate

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"storymap/internal/model"
	"storymap/internal/store"
)

// Listener receives one change record per completed move or rename.
// Delivery is fire-and-forget: there is no acknowledgement.
type Listener interface {
	OnChange(model.Change)
}

type ListenerFunc func(model.Change)

func (f ListenerFunc) OnChange(c model.Change) { f(c) }

type subscription struct {
	id int
	l  Listener
}

// Emitter is the only writer of the store. It applies each move or rename
// optimistically and then notifies listeners with exactly one record.
type Emitter struct {
	st  *store.Store
	log *slog.Logger

	mu     sync.RWMutex
	subs   []subscription
	nextID int
}

type EmitterOption func(*Emitter)

func WithLogger(l *slog.Logger) EmitterOption {
	return func(e *Emitter) {
		if l != nil {
			e.log = l
		}
	}
}

func WithListener(l Listener) EmitterOption {
	return func(e *Emitter) {
		if l != nil {
			e.subscribe(l)
		}
	}
}

func NewEmitter(st *store.Store, opts ...EmitterOption) *Emitter {
	e := &Emitter{
		st:  st,
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Subscribe registers l and returns a func that removes it.
func (e *Emitter) Subscribe(l Listener) (unsubscribe func()) {
	id := e.subscribe(l)
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, s := range e.subs {
			if s.id == id {
				e.subs = append(e.subs[:i:i], e.subs[i+1:]...)
				return
			}
		}
	}
}

func (e *Emitter) subscribe(l Listener) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextID++
	e.subs = append(e.subs, subscription{id: e.nextID, l: l})
	return e.nextID
}

type Result struct {
	Entity  model.Entity
	Changed bool
	Change  model.Change
}

// ApplyMove writes a resolved move to the store (parent references, order and
// any sibling re-index in one atomic edit) and emits its change record.
func (e *Emitter) ApplyMove(m Move) (Result, error) {
	if m.Kind == MoveNoop || m.Plan.Unchanged {
		return Result{Entity: m.Entity}, nil
	}
	kind := m.Entity.Kind
	id := m.Entity.ID

	edits := make([]store.Edit, 0, len(m.Parents)+1+len(m.Plan.Siblings))
	for _, f := range m.Parents {
		edits = append(edits, store.Edit{ID: id, Field: f, Value: parentValue(f, m.To)})
	}
	edits = append(edits, store.Edit{ID: id, Field: model.FieldOrder, Value: m.Plan.Order})
	for _, u := range m.Plan.Siblings {
		edits = append(edits, store.Edit{ID: u.EntityID, Field: model.FieldOrder, Value: u.NewValue})
	}
	if err := e.st.Apply(kind, edits...); err != nil {
		return Result{}, fmt.Errorf("apply move: %w", err)
	}

	after, _ := e.st.Get(kind, id)
	c := model.Change{
		EntityType: kind,
		EntityID:   id,
		FieldName:  m.FieldName(),
		NewValue:   m.Plan.Order,
		OldValue:   m.Plan.OldOrder,
		AllData:    projection(after, m.Parents),
		Reindexed:  m.Plan.Siblings,
	}
	for _, f := range m.Parents {
		v := parentValue(f, m.To)
		switch f {
		case model.FieldJourney, model.FieldFeature:
			c.NewParentID = &v
		case model.FieldRelease:
			c.NewReleaseID = &v
		}
	}
	if m.Plan.UsedFallback {
		e.log.Debug("sibling group re-indexed",
			slog.String("kind", string(kind)),
			slog.String("id", id),
			slog.Int("rewritten", len(m.Plan.Siblings)))
	}
	e.notify(c)
	return Result{Entity: after, Changed: true, Change: c}, nil
}

type Rename struct {
	Kind    model.Kind `json:"entityType"`
	ID      string     `json:"entityId"`
	NewText string     `json:"newText"`
}

// Rename updates an entity's name. Blank or unchanged text is a no-op.
// Order and parent references are untouched.
func (e *Emitter) Rename(r Rename) (Result, error) {
	switch r.Kind {
	case model.KindJourney, model.KindFeature, model.KindStory, model.KindRelease, model.KindPersona:
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrNotRenameable, r.Kind)
	}
	id := strings.TrimSpace(r.ID)
	cur, ok := e.st.Get(r.Kind, id)
	if !ok {
		return Result{}, store.NotFoundError{Kind: string(r.Kind), ID: id}
	}
	text := strings.TrimSpace(r.NewText)
	if text == "" || text == cur.Name {
		return Result{Entity: cur}, nil
	}
	if err := e.st.SetField(r.Kind, id, model.FieldName, text); err != nil {
		return Result{}, fmt.Errorf("rename: %w", err)
	}
	after, _ := e.st.Get(r.Kind, id)
	c := model.Change{
		EntityType: r.Kind,
		EntityID:   id,
		FieldName:  model.FieldName,
		NewValue:   after.Name,
		OldValue:   cur.Name,
		AllData:    projection(after, nil),
	}
	e.notify(c)
	return Result{Entity: after, Changed: true, Change: c}, nil
}

func (e *Emitter) notify(c model.Change) {
	e.mu.RLock()
	subs := append([]subscription(nil), e.subs...)
	e.mu.RUnlock()
	for _, s := range subs {
		e.deliver(s.l, c)
	}
}

func (e *Emitter) deliver(l Listener, c model.Change) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("change listener panicked",
				slog.String("entity", c.EntityID),
				slog.String("field", c.FieldName),
				slog.Any("panic", r))
		}
	}()
	l.OnChange(c)
}

func parentValue(field string, g store.Group) string {
	switch field {
	case model.FieldJourney:
		return g.JourneyID
	case model.FieldFeature:
		return g.FeatureID
	case model.FieldRelease:
		return g.ReleaseID
	default:
		return ""
	}
}

// projection is the post-update shape handed to the listener: id, name, order,
// and the new value of each changed parent reference.
func projection(e model.Entity, parents []string) map[string]any {
	out := map[string]any{
		"id":   e.ID,
		"name": e.Name,
	}
	if e.Kind.Ordered() {
		out[model.FieldOrder] = e.Order
	}
	for _, f := range parents {
		switch f {
		case model.FieldJourney:
			out[f] = e.JourneyID
		case model.FieldFeature:
			out[f] = e.FeatureID
		case model.FieldRelease:
			out[f] = e.ReleaseID
		}
	}
	return out
}
