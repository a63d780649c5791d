// Package spark is a fine-grained reactive engine: writable signals, lazily
// cached computeds and eager effects wired together by automatic dependency
// tracking over a doubly linked edge graph.
//
// Every primitive belongs to a Runtime. A Runtime is single threaded; all of
// its operations must happen on one goroutine (see package local for a
// goroutine-scoped registry).
package spark

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
)

type ErrorHandler func(err error)

// SuspenseHandler receives promise-like values thrown out of effect bodies.
type SuspenseHandler func(s Suspense)

// MountHook receives the first run of an effect created with OnLoad. The
// hook owner must call run once, later.
type MountHook func(run func())

type Runtime struct {
	version    int64
	active     *node
	pauseStack []*node

	batchDepth int
	queue      []*node
	queueHead  int

	edges   []edge
	free    edgeID
	scratch []edgeRef

	nextID uint64

	onError   ErrorHandler
	onSuspend SuspenseHandler
	mount     MountHook
	logger    *slog.Logger

	stats counters
}

type RuntimeOption func(*Runtime)

// WithErrorHandler replaces the default handler, which logs the error.
func WithErrorHandler(fn ErrorHandler) RuntimeOption {
	return func(rt *Runtime) {
		rt.onError = fn
	}
}

func WithSuspenseHandler(fn SuspenseHandler) RuntimeOption {
	return func(rt *Runtime) {
		rt.onSuspend = fn
	}
}

func WithMountHook(fn MountHook) RuntimeOption {
	return func(rt *Runtime) {
		rt.mount = fn
	}
}

func WithLogger(logger *slog.Logger) RuntimeOption {
	return func(rt *Runtime) {
		rt.logger = logger
	}
}

func NewRuntime(opts ...RuntimeOption) *Runtime {
	rt := &Runtime{
		// slot 0 is the "no edge" sentinel
		edges: make([]edge, 1, 64),
	}
	for _, opt := range opts {
		opt(rt)
	}
	if rt.logger == nil {
		rt.logger = slog.Default()
	}
	if rt.onError == nil {
		rt.onError = rt.logError
	}
	return rt
}

func (rt *Runtime) logError(err error) {
	var effectErr *EffectError
	if errors.As(err, &effectErr) {
		rt.logger.Error("spark: effect failed", "node", effectErr.ID, "name", effectErr.Name, "err", effectErr.Err)
		return
	}
	rt.logger.Error("spark: effect failed", "err", err)
}

// Version returns the global write clock. It advances once per signal write
// that changed a value.
func (rt *Runtime) Version() int64 {
	return rt.version
}

func (rt *Runtime) StartBatch() {
	rt.batchDepth++
}

func (rt *Runtime) EndBatch() {
	if rt.batchDepth == 0 {
		panic(fmt.Errorf("end batch without start: %w", ErrUnbalanced))
	}
	rt.batchDepth--
	if rt.batchDepth == 0 {
		rt.drain()
	}
}

// Batch runs fn with effect re-runs deferred until the outermost batch
// returns. Computeds are still invalidated immediately.
func (rt *Runtime) Batch(fn func()) {
	rt.StartBatch()
	defer rt.EndBatch()
	fn()
}

// Batch is the value-returning form of Runtime.Batch.
func Batch[T any](rt *Runtime, fn func() T) (v T) {
	rt.Batch(func() {
		v = fn()
	})
	return v
}

// Untrack runs fn without recording any dependency for the current
// subscriber.
func (rt *Runtime) Untrack(fn func()) {
	prev := rt.active
	rt.active = nil
	defer func() {
		rt.active = prev
	}()
	fn()
}

func Untrack[T any](rt *Runtime, fn func() T) (v T) {
	rt.Untrack(func() {
		v = fn()
	})
	return v
}

func (rt *Runtime) PauseTracking() {
	rt.pauseStack = append(rt.pauseStack, rt.active)
	rt.active = nil
}

func (rt *Runtime) ResumeTracking() {
	lastIdx := len(rt.pauseStack) - 1
	if lastIdx < 0 {
		panic(fmt.Errorf("resume tracking without pause: %w", ErrUnbalanced))
	}
	rt.active = rt.pauseStack[lastIdx]
	rt.pauseStack = rt.pauseStack[:lastIdx]
}

// observe links dep to the running subscriber, if any.
func (rt *Runtime) observe(dep *node) {
	if rt.active != nil {
		rt.subscribe(rt.active, dep)
	}
}

func (rt *Runtime) withSubscriber(sub *node, fn func()) {
	prev := rt.active
	rt.active = sub
	defer func() {
		rt.active = prev
	}()
	fn()
}

// schedule runs an invalidated effect now, or queues it once while a batch
// is open.
func (rt *Runtime) schedule(n *node) {
	if n.disposed {
		return
	}
	if rt.batchDepth > 0 {
		if !n.queued {
			n.queued = true
			rt.queue = append(rt.queue, n)
		}
		return
	}
	n.run()
}

func (rt *Runtime) drain() {
	for rt.queueHead < len(rt.queue) {
		n := rt.queue[rt.queueHead]
		rt.queue[rt.queueHead] = nil
		rt.queueHead++
		n.queued = false
		if !n.disposed {
			n.run()
		}
	}
	rt.queue = rt.queue[:0]
	rt.queueHead = 0
}

func (rt *Runtime) report(n *node, err error) {
	rt.stats.errors.Add(1)
	rt.onError(&EffectError{ID: n.id, Name: n.name, Err: err})
}

// suspend hands a promise-like value to the suspense handler, or rethrows
// the original panic value when nobody is listening.
func (rt *Runtime) suspend(raw any, s Suspense) {
	if rt.onSuspend == nil {
		panic(raw)
	}
	rt.stats.suspensions.Add(1)
	rt.onSuspend(s)
}

type counters struct {
	writes      atomic.Int64
	recomputes  atomic.Int64
	effectRuns  atomic.Int64
	errors      atomic.Int64
	suspensions atomic.Int64
	edges       atomic.Int64
}

// Stats is a point in time copy of a runtime's counters. It is safe to take
// from any goroutine.
type Stats struct {
	Writes      int64
	Recomputes  int64
	EffectRuns  int64
	Errors      int64
	Suspensions int64
	Edges       int64
}

func (rt *Runtime) Stats() Stats {
	return Stats{
		Writes:      rt.stats.writes.Load(),
		Recomputes:  rt.stats.recomputes.Load(),
		EffectRuns:  rt.stats.effectRuns.Load(),
		Errors:      rt.stats.errors.Load(),
		Suspensions: rt.stats.suspensions.Load(),
		Edges:       rt.stats.edges.Load(),
	}
}
