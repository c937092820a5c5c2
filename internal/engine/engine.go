// Package engine wires the entity store, drop guards, resolver and emitter
// into the single entry point a host bridge talks to.
package engine

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"storymap/internal/model"
	"storymap/internal/mutate"
	"storymap/internal/store"
	"storymap/internal/surface"
)

type Status string

const (
	StatusApplied Status = "applied"
	StatusNoop    Status = "noop"
	StatusAborted Status = "aborted"
	StatusIgnored Status = "ignored"
)

// Outcome reports what happened to one drop or rename. The core surfaces no
// errors to users: a request either applies, or it does nothing and Reason says why.
type Outcome struct {
	Status Status        `json:"status"`
	Change *model.Change `json:"change,omitempty"`
	Reason error         `json:"-"`
}

type Engine struct {
	st     *store.Store
	em     *mutate.Emitter
	guards map[surface.Name]*surface.Guard
	log    *slog.Logger
}

type options struct {
	logger      *slog.Logger
	minInterval time.Duration
	now         func() time.Time
	listeners   []mutate.Listener
}

type Option func(*options)

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithDebounce sets the minimum interval between accepted drops on one surface.
func WithDebounce(d time.Duration) Option {
	return func(o *options) { o.minInterval = d }
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithListener(l mutate.Listener) Option {
	return func(o *options) { o.listeners = append(o.listeners, l) }
}

func New(opts ...Option) *Engine {
	o := options{minInterval: surface.DefaultMinInterval, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	st := store.New()
	emOpts := []mutate.EmitterOption{mutate.WithLogger(o.logger)}
	for _, l := range o.listeners {
		emOpts = append(emOpts, mutate.WithListener(l))
	}

	e := &Engine{
		st:     st,
		em:     mutate.NewEmitter(st, emOpts...),
		guards: map[surface.Name]*surface.Guard{},
		log:    o.logger,
	}
	for _, n := range []surface.Name{surface.Journeys, surface.Features, surface.Stories} {
		e.guards[n] = surface.NewGuard(n, surface.WithMinInterval(o.minInterval), surface.WithClock(o.now))
	}
	return e
}

// Load replaces the whole map with a fresh host batch.
func (e *Engine) Load(b store.Batch) {
	e.st.Load(b)
	v := e.st.Snapshot()
	e.log.Info("story map loaded",
		slog.String("project", e.st.Project().ID),
		slog.Int("journeys", len(v.Journeys)),
		slog.Int("features", len(v.Features)),
		slog.Int("stories", len(v.Stories)),
		slog.Int("releases", len(v.Releases)),
		slog.Int("personas", len(v.Personas)))
}

// Get reads one entity from the store.
func (e *Engine) Get(kind model.Kind, id string) (model.Entity, bool) { return e.st.Get(kind, id) }

// View returns the ordered entity lists for rendering.
func (e *Engine) View() store.View { return e.st.Snapshot() }

func (e *Engine) Subscribe(l mutate.Listener) (unsubscribe func()) {
	return e.em.Subscribe(l)
}

// Drop processes one drop gesture. The surface stays Computing until listeners
// have been notified, so a drop fired from inside a listener is ignored.
// Only an applied drop starts the surface's debounce interval.
func (e *Engine) Drop(d mutate.Drop) (out Outcome) {
	g, ok := e.guards[d.Surface]
	if !ok {
		e.log.Warn("drop on unknown surface", slog.String("surface", string(d.Surface)))
		return Outcome{Status: StatusAborted, Reason: mutate.ErrUnknownSurface}
	}
	done, err := g.Begin()
	if err != nil {
		e.log.Debug("drop ignored",
			slog.String("surface", string(g.Name())),
			slog.String("state", g.State().String()),
			slog.String("dragged", d.DraggedID),
			slog.String("reason", err.Error()))
		return Outcome{Status: StatusIgnored, Reason: err}
	}
	defer func() { done(out.Status == StatusApplied) }()

	m, err := mutate.Resolve(e.st, d)
	if err != nil {
		e.logAbort("drop aborted", d.DraggedID, err)
		return Outcome{Status: StatusAborted, Reason: err}
	}
	if m.Kind == mutate.MoveNoop {
		return Outcome{Status: StatusNoop}
	}
	res, err := e.em.ApplyMove(m)
	if err != nil {
		e.logAbort("drop aborted", d.DraggedID, err)
		return Outcome{Status: StatusAborted, Reason: err}
	}
	if !res.Changed {
		return Outcome{Status: StatusNoop}
	}
	e.log.Debug("drop applied",
		slog.String("surface", string(d.Surface)),
		slog.String("dragged", d.DraggedID),
		slog.String("move", string(m.Kind)),
		slog.String("field", res.Change.FieldName))
	c := res.Change
	return Outcome{Status: StatusApplied, Change: &c}
}

// Rename processes one inline-edit commit.
func (e *Engine) Rename(r mutate.Rename) Outcome {
	res, err := e.em.Rename(r)
	if err != nil {
		e.logAbort("rename aborted", r.ID, err)
		return Outcome{Status: StatusAborted, Reason: err}
	}
	if !res.Changed {
		return Outcome{Status: StatusNoop}
	}
	c := res.Change
	return Outcome{Status: StatusApplied, Change: &c}
}

func (e *Engine) logAbort(msg, id string, err error) {
	var nf store.NotFoundError
	if errors.As(err, &nf) {
		e.log.Debug(msg, slog.String("id", id), slog.String("missing", nf.ID), slog.String("kind", nf.Kind))
		return
	}
	e.log.Warn(msg, slog.String("id", id), slog.String("error", err.Error()))
}
