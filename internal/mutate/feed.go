package mutate

import (
	"sync/atomic"

	"storymap/internal/model"
)

// Feed is a Listener that hands change records to a buffered channel for a
// bridge running elsewhere. When the buffer is full the record is dropped;
// the emitter never blocks on a slow consumer.
type Feed struct {
	ch      chan model.Change
	dropped atomic.Int64
}

func NewFeed(buffer int) *Feed {
	if buffer <= 0 {
		buffer = 64
	}
	return &Feed{ch: make(chan model.Change, buffer)}
}

func (f *Feed) OnChange(c model.Change) {
	select {
	case f.ch <- c:
	default:
		f.dropped.Add(1)
	}
}

func (f *Feed) C() <-chan model.Change { return f.ch }

// Dropped is the number of records discarded because the buffer was full.
func (f *Feed) Dropped() int64 { return f.dropped.Load() }
