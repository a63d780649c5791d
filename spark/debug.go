package spark

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
)

type NodeInfo struct {
	ID      uint64
	Name    string
	Kind    string
	Version int64
	Dirty   bool
}

// EdgeInfo is one subscription: Sub read Dep during its last run.
type EdgeInfo struct {
	Dep, Sub uint64
}

// Graph is a copy of every node that takes part in at least one edge.
type Graph struct {
	Version int64
	Nodes   []NodeInfo
	Edges   []EdgeInfo
}

func (rt *Runtime) liveEdges() []*edge {
	live := make([]*edge, 0, len(rt.edges))
	for i := 1; i < len(rt.edges); i++ {
		if e := &rt.edges[i]; e.sub != nil {
			live = append(live, e)
		}
	}
	return live
}

func (rt *Runtime) Snapshot() Graph {
	g := Graph{Version: rt.version}
	seen := mapset.NewThreadUnsafeSet[*node]()
	addNode := func(n *node) {
		if !seen.Add(n) {
			return
		}
		g.Nodes = append(g.Nodes, NodeInfo{
			ID:      n.id,
			Name:    n.name,
			Kind:    n.kind.String(),
			Version: n.version,
			Dirty:   n.kind == kindComputed && n.version == dirty,
		})
	}

	for _, e := range rt.liveEdges() {
		addNode(e.dep)
		addNode(e.sub)
		g.Edges = append(g.Edges, EdgeInfo{Dep: e.dep.id, Sub: e.sub.id})
	}

	slices.SortFunc(g.Nodes, func(a, b NodeInfo) int {
		return cmp.Compare(a.ID, b.ID)
	})
	slices.SortFunc(g.Edges, func(a, b EdgeInfo) int {
		if c := cmp.Compare(a.Dep, b.Dep); c != 0 {
			return c
		}
		return cmp.Compare(a.Sub, b.Sub)
	})
	return g
}

// Verify checks the edge arena: both lists of every node agree with each
// other, no (sub, dep) pair is linked twice and the free list only holds
// released slots.
func (rt *Runtime) Verify() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format+": %w", append(args, ErrCorrupt)...))
	}

	type pair struct{ sub, dep *node }
	pairs := mapset.NewThreadUnsafeSet[pair]()
	live := mapset.NewThreadUnsafeSet[edgeID]()
	deps := mapset.NewThreadUnsafeSet[*node]()
	subs := mapset.NewThreadUnsafeSet[*node]()

	for i := 1; i < len(rt.edges); i++ {
		e := &rt.edges[i]
		if e.sub == nil {
			continue
		}
		live.Add(edgeID(i))
		deps.Add(e.dep)
		subs.Add(e.sub)
		if !pairs.Add(pair{e.sub, e.dep}) {
			fail("edge %d: duplicate link %d -> %d", i, e.dep.id, e.sub.id)
		}
	}

	onSubLists := mapset.NewThreadUnsafeSet[edgeID]()
	deps.Each(func(n *node) bool {
		prev := noEdge
		for id := n.subs; id != noEdge; id = rt.edges[id].nextSub {
			e := &rt.edges[id]
			switch {
			case !onSubLists.Add(id):
				fail("node %d: edge %d listed twice in subscribers", n.id, id)
				return false
			case e.sub == nil:
				fail("node %d: released edge %d on subscriber list", n.id, id)
				return false
			case e.dep != n:
				fail("node %d: subscriber edge %d belongs to node %d", n.id, id, e.dep.id)
			case e.prevSub != prev:
				fail("node %d: edge %d prevSub %d, want %d", n.id, id, e.prevSub, prev)
			}
			prev = id
		}
		return false
	})

	onDepLists := mapset.NewThreadUnsafeSet[edgeID]()
	subs.Each(func(n *node) bool {
		prev := noEdge
		for id := n.deps; id != noEdge; id = rt.edges[id].nextDep {
			e := &rt.edges[id]
			switch {
			case !onDepLists.Add(id):
				fail("node %d: edge %d listed twice in dependencies", n.id, id)
				return false
			case e.sub == nil:
				fail("node %d: released edge %d on dependency list", n.id, id)
				return false
			case e.sub != n:
				fail("node %d: dependency edge %d belongs to node %d", n.id, id, e.sub.id)
			case e.prevDep != prev:
				fail("node %d: edge %d prevDep %d, want %d", n.id, id, e.prevDep, prev)
			}
			prev = id
		}
		return false
	})

	if !live.Equal(onSubLists) {
		fail("%d live edges, %d on subscriber lists", live.Cardinality(), onSubLists.Cardinality())
	}
	if !live.Equal(onDepLists) {
		fail("%d live edges, %d on dependency lists", live.Cardinality(), onDepLists.Cardinality())
	}

	freed := mapset.NewThreadUnsafeSet[edgeID]()
	for id := rt.free; id != noEdge; id = rt.edges[id].nextDep {
		if !freed.Add(id) {
			fail("free list loops at %d", id)
			break
		}
		if rt.edges[id].sub != nil {
			fail("free slot %d still linked", id)
		}
	}
	if got, want := int64(live.Cardinality()), rt.stats.edges.Load(); got != want {
		fail("%d live edges, counter says %d", got, want)
	}

	return errors.Join(errs...)
}
