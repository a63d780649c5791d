package spark

import (
	"errors"
	"fmt"
)

var (
	ErrNilRuntime = errors.New("spark: nil runtime")
	ErrNilFunc    = errors.New("spark: nil function")
	ErrUnbalanced = errors.New("spark: unbalanced start/end call")
	ErrCorrupt    = errors.New("spark: corrupt graph")
)

// Suspense is a promise-like value an effect body throws (panics with, or
// returns wrapped in its error) to signal it is waiting on something. It is
// not an error and is never reported as one.
type Suspense interface {
	Ready() <-chan struct{}
}

// EffectError wraps a failure reported from an effect body or its cleanup.
type EffectError struct {
	ID   uint64
	Name string
	Err  error
}

func (e *EffectError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("effect %d (%s): %v", e.ID, e.Name, e.Err)
	}
	return fmt.Sprintf("effect %d: %v", e.ID, e.Err)
}

func (e *EffectError) Unwrap() error {
	return e.Err
}

// PanicError carries a recovered panic value.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

func asSuspense(v any) (Suspense, bool) {
	switch v := v.(type) {
	case Suspense:
		return v, true
	case error:
		var s Suspense
		if errors.As(v, &s) {
			return s, true
		}
	}
	return nil, false
}

func mustRuntime(rt *Runtime) {
	if rt == nil {
		panic(ErrNilRuntime)
	}
}

func mustFunc(isNil bool, op string) {
	if isNil {
		panic(fmt.Errorf("%s: %w", op, ErrNilFunc))
	}
}
