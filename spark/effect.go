package spark

import "runtime/debug"

// Cleanup is returned by an effect body and runs before the next run or on
// dispose.
type Cleanup func()

type EffectFunc func() (Cleanup, error)

// Dispose stops an effect. Calling it more than once is a no-op.
type Dispose func()

type effectRunner struct {
	rt        *Runtime
	node      node
	fn        EffectFunc
	cleanupFn Cleanup
}

// Effect runs fn now and again every time a cell it read changes. Errors
// and panics from fn go to the runtime's error handler and the effect stays
// subscribed for the next change.
func Effect(rt *Runtime, fn EffectFunc, opts ...NodeOption) Dispose {
	mustRuntime(rt)
	mustFunc(fn == nil, "effect")
	e := &effectRunner{
		rt: rt,
		fn: fn,
	}
	cfg := rt.initNode(&e.node, kindEffect, opts)
	e.node.run = e.run

	if cfg.onLoad && rt.mount != nil {
		rt.mount(e.run)
	} else {
		e.run()
	}
	return e.dispose
}

func (e *effectRunner) run() {
	if e.node.disposed {
		return
	}
	rt := e.rt

	e.callCleanup()
	rt.cleanup(&e.node)
	rt.stats.effectRuns.Add(1)

	cleanup, err := e.invoke()
	if e.node.disposed {
		// disposed from inside its own body
		rt.cleanup(&e.node)
		if cleanup != nil {
			if cerr := safeCall(cleanup); cerr != nil {
				rt.report(&e.node, cerr)
			}
		}
	} else {
		e.cleanupFn = cleanup
	}

	if err != nil {
		if s, ok := asSuspense(err); ok {
			rt.suspend(err, s)
			return
		}
		rt.report(&e.node, err)
	}
}

func (e *effectRunner) invoke() (cleanup Cleanup, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if s, ok := asSuspense(r); ok {
			e.rt.suspend(r, s)
			return
		}
		err = &PanicError{Value: r, Stack: debug.Stack()}
	}()

	e.rt.withSubscriber(&e.node, func() {
		cleanup, err = e.fn()
	})
	return cleanup, err
}

func (e *effectRunner) callCleanup() {
	fn := e.cleanupFn
	if fn == nil {
		return
	}
	e.cleanupFn = nil
	if err := safeCall(fn); err != nil {
		e.rt.report(&e.node, err)
	}
}

func (e *effectRunner) dispose() {
	if e.node.disposed {
		return
	}
	e.node.disposed = true
	e.callCleanup()
	e.rt.cleanup(&e.node)
}

func safeCall(fn Cleanup) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	fn()
	return nil
}
