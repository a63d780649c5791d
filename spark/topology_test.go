package spark_test

import (
	"fmt"
	"testing"

	"github.com/delaneyj/sparkgraph/spark"
	"github.com/stretchr/testify/assert"
)

func TestTopologyDropAbaUpdates(t *testing.T) {
	rt := newRuntime(t)

	//     A
	//   / |
	//  B  | <- Looks like a flag doesn't it? :D
	//   \ |
	//     C
	//     |
	//     D
	a := spark.Signal(rt, 2)
	b := spark.Derive(rt, func() int {
		return a.Value() - 1
	})
	c := spark.Derive(rt, func() int {
		return a.Value() + b.Value()
	})
	callCount := 0
	d := spark.Derive(rt, func() string {
		callCount++
		return fmt.Sprintf("d: %d", c.Value())
	})

	// Trigger read
	assert.Equal(t, "d: 3", d.Value())
	assert.Equal(t, 1, callCount)

	a.SetValue(4)
	d.Value()
	assert.Equal(t, 2, callCount)
}

func TestShouldOnlyUpdateEverySignalOnceDiamond(t *testing.T) {
	rt := newRuntime(t)

	// In this scenario "D" should only update once when "A" receives
	// an update. This is sometimes referred to as the "diamond" scenario.
	//     A
	//   /   \
	//  B     C
	//   \   /
	//     D
	a := spark.Signal(rt, "a")
	b := spark.Derive(rt, func() string {
		return a.Value()
	})
	c := spark.Derive(rt, func() string {
		return a.Value()
	})

	callCount := 0
	d := spark.Derive(rt, func() string {
		callCount++
		return b.Value() + " " + c.Value()
	})

	assert.Equal(t, "a a", d.Value())
	assert.Equal(t, 1, callCount)
	callCount = 0

	a.SetValue("aa")
	assert.Equal(t, "aa aa", d.Value())
	assert.Equal(t, 1, callCount)
}

func TestShouldOnlyUpdateEverySignalOnceDiamondTail(t *testing.T) {
	rt := newRuntime(t)

	// "E" will be likely updated twice if our mark+sweep logic is buggy.
	//     A
	//   /   \
	//  B     C
	//   \   /
	//     D
	//     |
	//     E
	a := spark.Signal(rt, "a")
	b := spark.Derive(rt, func() string {
		return a.Value()
	})
	c := spark.Derive(rt, func() string {
		return a.Value()
	})
	d := spark.Derive(rt, func() string {
		return b.Value() + " " + c.Value()
	})

	callCount := 0
	e := spark.Derive(rt, func() string {
		callCount++
		return d.Value()
	})

	assert.Equal(t, "a a", e.Value())
	assert.Equal(t, 1, callCount)

	a.SetValue("aa")
	assert.Equal(t, "aa aa", e.Value())
	assert.Equal(t, 2, callCount)
}

// an effect over a diamond is scheduled from the first dirtied branch and
// pulls both branches fresh
func TestTopologyEffectOverDiamond(t *testing.T) {
	rt := newRuntime(t)

	//     S
	//   /   \
	//  C1   C2
	//   \   /
	//     E
	s := spark.Signal(rt, 1)
	c1 := spark.Derive(rt, func() int {
		return s.Value() * 2
	})
	c2 := spark.Derive(rt, func() int {
		return s.Value() * 3
	})

	seen := [][2]int{}
	spark.Effect(rt, func() (spark.Cleanup, error) {
		seen = append(seen, [2]int{c1.Value(), c2.Value()})
		return nil, nil
	})

	s.SetValue(2)
	assert.Equal(t, [][2]int{{2, 3}, {4, 6}}, seen)

	rt.Batch(func() {
		s.SetValue(3)
		s.SetValue(4)
	})
	assert.Equal(t, [][2]int{{2, 3}, {4, 6}, {8, 12}}, seen)
}

// reads under Untrack do not make a computed stale
func TestTopologyUntrackedInputStaysCached(t *testing.T) {
	rt := newRuntime(t)
	s := spark.Signal(rt, 1)

	inner := spark.Signal(rt, 0)
	c := spark.Derive(rt, func() int {
		return s.Value() + spark.Untrack(rt, inner.Value)
	})

	seen := []int{}
	spark.Effect(rt, func() (spark.Cleanup, error) {
		seen = append(seen, c.Value())
		return nil, nil
	})

	inner.SetValue(100)
	assert.Equal(t, []int{1}, seen)

	s.SetValue(2)
	assert.Equal(t, []int{1, 102}, seen)
}

// a write through a dense lattice dirties each computed once, so the cost
// follows the node count and not the number of paths
func TestTopologyDenseLattice(t *testing.T) {
	rt := newRuntime(t)
	const width, layers = 3, 40

	s := spark.Signal(rt, 0)
	prev := []*spark.Computed[int]{}
	for i := 0; i < width; i++ {
		prev = append(prev, spark.Derive(rt, s.Value))
	}
	for l := 1; l < layers; l++ {
		sources := prev
		row := make([]*spark.Computed[int], width)
		for i := range row {
			row[i] = spark.Derive(rt, func() int {
				sum := 0
				for _, source := range sources {
					sum += source.Value()
				}
				return sum/len(sources) + 1
			})
		}
		prev = row
	}
	leaves := prev
	assert.Equal(t, layers-1, leaves[0].Value())

	// no effect yet: the write only marks the lattice dirty
	s.SetValue(5)
	assert.Equal(t, 5+layers-1, leaves[0].Value())

	seen := []int{}
	spark.Effect(rt, func() (spark.Cleanup, error) {
		seen = append(seen, leaves[0].Value())
		return nil, nil
	})
	recomputes := rt.Stats().Recomputes

	s.SetValue(10)
	assert.Equal(t, []int{5 + layers - 1, 10 + layers - 1}, seen)
	assert.Equal(t, int64(width*layers), rt.Stats().Recomputes-recomputes)

	rt.Batch(func() {
		s.SetValue(20)
		s.SetValue(30)
	})
	assert.Equal(t, []int{5 + layers - 1, 10 + layers - 1, 30 + layers - 1}, seen)
}

// a computed already dirtied by one parent is not walked again from another
func TestTopologyDirtyComputedNotifiesOnce(t *testing.T) {
	rt := newRuntime(t)
	s := spark.Signal(rt, 1)
	left := spark.Derive(rt, func() int { return s.Value() })
	right := spark.Derive(rt, func() int { return s.Value() })
	join := spark.Derive(rt, func() int {
		return left.Value() + right.Value()
	})

	runs := 0
	rt.Batch(func() {
		spark.Effect(rt, func() (spark.Cleanup, error) {
			join.Value()
			runs++
			return nil, nil
		})
		s.SetValue(2)
	})
	assert.Equal(t, 2, runs)
	assert.Equal(t, 4, join.Peek())
}
