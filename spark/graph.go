package spark

func (rt *Runtime) allocEdge() edgeID {
	rt.stats.edges.Add(1)
	if id := rt.free; id != noEdge {
		rt.free = rt.edges[id].nextDep
		return id
	}
	rt.edges = append(rt.edges, edge{})
	return edgeID(len(rt.edges) - 1)
}

func (rt *Runtime) freeEdge(id edgeID) {
	rt.stats.edges.Add(-1)
	e := &rt.edges[id]
	*e = edge{
		gen:     e.gen + 1,
		nextDep: rt.free,
	}
	rt.free = id
}

// subscribe links sub to dep unless an edge between them already exists.
// New edges go to the head of both lists.
func (rt *Runtime) subscribe(sub, dep *node) {
	for id := sub.deps; id != noEdge; id = rt.edges[id].nextDep {
		if rt.edges[id].dep == dep {
			return
		}
	}

	id := rt.allocEdge()
	e := &rt.edges[id]
	e.sub, e.dep = sub, dep
	e.prevSub, e.nextSub = noEdge, dep.subs
	e.prevDep, e.nextDep = noEdge, sub.deps

	if dep.subs != noEdge {
		rt.edges[dep.subs].prevSub = id
	}
	if sub.deps != noEdge {
		rt.edges[sub.deps].prevDep = id
	}
	dep.subs = id
	sub.deps = id
}

// cleanup detaches every dependency of sub.
func (rt *Runtime) cleanup(sub *node) {
	id := sub.deps
	for id != noEdge {
		e := &rt.edges[id]
		next := e.nextDep

		if e.prevSub != noEdge {
			rt.edges[e.prevSub].nextSub = e.nextSub
		} else {
			e.dep.subs = e.nextSub
		}
		if e.nextSub != noEdge {
			rt.edges[e.nextSub].prevSub = e.prevSub
		}

		rt.freeEdge(id)
		id = next
	}
	sub.deps = noEdge
}

// notify walks dep's subscribers head to tail. Only edges alive when the
// walk starts are visited; an edge torn down by an earlier subscriber in the
// same walk is skipped.
func (rt *Runtime) notify(dep *node) {
	base := len(rt.scratch)
	for id := dep.subs; id != noEdge; id = rt.edges[id].nextSub {
		rt.scratch = append(rt.scratch, edgeRef{id: id, gen: rt.edges[id].gen})
	}
	end := len(rt.scratch)
	defer func() {
		rt.scratch = rt.scratch[:base]
	}()

	for i := base; i < end; i++ {
		ref := rt.scratch[i]
		e := &rt.edges[ref.id]
		if e.gen != ref.gen || e.sub == nil {
			continue
		}

		sub := e.sub
		switch sub.kind {
		case kindComputed:
			// a dirty computed has already notified every subscriber it has;
			// reads refresh it before subscribing
			if sub.version == dirty {
				continue
			}
			sub.version = dirty
			rt.notify(sub)
		case kindEffect:
			rt.schedule(sub)
		}
	}
}

// stale reports whether a computed must run before its value is served.
func (rt *Runtime) stale(n *node) bool {
	if n.version == dirty {
		return true
	}
	for id := n.deps; id != noEdge; id = rt.edges[id].nextDep {
		dep := rt.edges[id].dep
		if dep.version == dirty || dep.version > n.depsVersion {
			return true
		}
	}
	return false
}
