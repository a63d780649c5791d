package spark

type Computed[T any] struct {
	rt     *Runtime
	node   node
	getter func() T
	value  T
}

// Derive creates a read-only cell computed from getter on demand. The value
// is cached until one of the cells read by getter changes.
func Derive[T any](rt *Runtime, getter func() T, opts ...NodeOption) *Computed[T] {
	mustRuntime(rt)
	mustFunc(getter == nil, "derive")
	c := &Computed[T]{
		rt:     rt,
		getter: getter,
	}
	rt.initNode(&c.node, kindComputed, opts)
	c.node.version = dirty
	c.node.run = c.recompute
	return c
}

func (c *Computed[T]) Value() T {
	c.refresh()
	c.rt.observe(&c.node)
	return c.value
}

func (c *Computed[T]) Peek() T {
	c.refresh()
	return c.value
}

func (c *Computed[T]) refresh() {
	if c.rt.stale(&c.node) {
		c.recompute()
	}
}

// recompute leaves the node dirty if getter panics; the panic reaches the
// reader.
func (c *Computed[T]) recompute() {
	rt := c.rt
	rt.cleanup(&c.node)
	c.node.version = dirty

	var v T
	rt.withSubscriber(&c.node, func() {
		v = c.getter()
	})
	c.value = v

	c.node.depsVersion = rt.version
	c.node.version = rt.version
	rt.stats.recomputes.Add(1)
}
