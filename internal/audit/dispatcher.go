package audit

import (
	"context"
	"sync"
	"sync/atomic"
)

// Config controls dispatcher buffering behavior.
type Config struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// Stats is a point-in-time view of a dispatcher's queue.
type Stats struct {
	Delivered uint64
	Dropped   uint64
	Queued    int
}

// Dispatcher relays guard decisions to a Sink on its own goroutine.
// A full queue either drops the event (DropIfFull) or holds the guard until
// there is room.
type Dispatcher struct {
	sink       Sink
	queue      chan Event
	stop       chan struct{}
	finished   chan struct{}
	dropIfFull bool

	delivered atomic.Uint64
	dropped   atomic.Uint64
	stopping  atomic.Bool
	stopOnce  sync.Once
}

// NewDispatcher returns nil when cfg is disabled. Every method accepts a
// nil receiver.
func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	if sink == nil {
		sink = NoOpSink{}
	}
	size := cfg.BufferSize
	if size <= 0 {
		size = 1
	}

	d := &Dispatcher{
		sink:       sink,
		queue:      make(chan Event, size),
		stop:       make(chan struct{}),
		finished:   make(chan struct{}),
		dropIfFull: cfg.DropIfFull,
	}
	go d.loop()
	return d
}

func (d *Dispatcher) loop() {
	defer close(d.finished)
	for {
		select {
		case ev := <-d.queue:
			d.forward(ev)
		case <-d.stop:
			d.drain()
			return
		}
	}
}

// drain forwards whatever is still queued once stop is closed.
func (d *Dispatcher) drain() {
	for {
		select {
		case ev := <-d.queue:
			d.forward(ev)
		default:
			return
		}
	}
}

func (d *Dispatcher) forward(ev Event) {
	d.sink.Emit(context.Background(), ev)
	d.delivered.Add(1)
}

// Emit queues ev. A blocking dispatcher gives up when ctx ends, which counts
// as a drop. Events emitted after Close are ignored.
func (d *Dispatcher) Emit(ctx context.Context, ev Event) {
	if d == nil || d.stopping.Load() {
		return
	}
	if d.dropIfFull {
		select {
		case d.queue <- ev:
		case <-d.stop:
		default:
			d.dropped.Add(1)
		}
		return
	}

	var done <-chan struct{}
	if ctx != nil {
		done = ctx.Done()
	}
	select {
	case d.queue <- ev:
	case <-done:
		d.dropped.Add(1)
	case <-d.stop:
	}
}

// Close stops intake and returns after the queue has reached the sink.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.stopOnce.Do(func() {
		d.stopping.Store(true)
		close(d.stop)
		<-d.finished
	})
}

// Stats reports delivery counters and the current queue depth.
func (d *Dispatcher) Stats() Stats {
	if d == nil {
		return Stats{}
	}
	return Stats{
		Delivered: d.delivered.Load(),
		Dropped:   d.dropped.Load(),
		Queued:    len(d.queue),
	}
}

func (d *Dispatcher) Dropped() uint64 { return d.Stats().Dropped }

func (d *Dispatcher) Delivered() uint64 { return d.Stats().Delivered }
