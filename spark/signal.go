package spark

type WritableSignal[T comparable] struct {
	rt    *Runtime
	node  node
	value T
}

// Signal creates a writable cell. Writes are compared with == against the
// current value; equal writes are dropped.
func Signal[T comparable](rt *Runtime, initialValue T, opts ...NodeOption) *WritableSignal[T] {
	mustRuntime(rt)
	s := &WritableSignal[T]{
		rt:    rt,
		value: initialValue,
	}
	rt.initNode(&s.node, kindSignal, opts)
	return s
}

func (s *WritableSignal[T]) Value() T {
	s.rt.observe(&s.node)
	return s.value
}

// Peek reads the value without subscribing the running effect or computed.
func (s *WritableSignal[T]) Peek() T {
	return s.value
}

func (s *WritableSignal[T]) SetValue(v T) {
	if s.value == v {
		return
	}
	s.value = v

	rt := s.rt
	rt.version++
	rt.stats.writes.Add(1)
	s.node.version = rt.version
	rt.notify(&s.node)
}

// Update writes fn applied to the current value.
func (s *WritableSignal[T]) Update(fn func(oldValue T) T) {
	s.SetValue(fn(s.value))
}
