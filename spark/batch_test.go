package spark_test

import (
	"fmt"
	"testing"

	"github.com/delaneyj/sparkgraph/spark"
	"github.com/stretchr/testify/assert"
)

func TestBatch(t *testing.T) {
	t.Run("coalesces writes", func(t *testing.T) {
		rt := newRuntime(t)
		s := spark.Signal(rt, 0)

		var seen1, seen2 []int
		spark.Effect(rt, func() (spark.Cleanup, error) {
			seen1 = append(seen1, s.Value())
			return nil, nil
		})
		spark.Effect(rt, func() (spark.Cleanup, error) {
			seen2 = append(seen2, s.Value())
			return nil, nil
		})

		rt.Batch(func() {
			s.SetValue(1)
			s.SetValue(2)
		})

		assert.Equal(t, []int{0, 2}, seen1)
		assert.Equal(t, []int{0, 2}, seen2)
	})

	t.Run("computeds are dirtied immediately", func(t *testing.T) {
		rt := newRuntime(t)
		s := spark.Signal(rt, 1)
		double := spark.Derive(rt, func() int {
			return s.Value() * 2
		})

		runs := 0
		spark.Effect(rt, func() (spark.Cleanup, error) {
			double.Value()
			runs++
			return nil, nil
		})

		rt.Batch(func() {
			s.SetValue(5)
			assert.Equal(t, 10, double.Value())
			assert.Equal(t, 1, runs)
		})
		assert.Equal(t, 2, runs)
	})

	t.Run("nested batches drain once", func(t *testing.T) {
		rt := newRuntime(t)
		a := spark.Signal(rt, 0)
		b := spark.Signal(rt, 0)

		log := []string{}
		spark.Effect(rt, func() (spark.Cleanup, error) {
			log = append(log, fmt.Sprintf("a%d", a.Value()))
			return nil, nil
		})
		spark.Effect(rt, func() (spark.Cleanup, error) {
			log = append(log, fmt.Sprintf("b%d", b.Value()))
			return nil, nil
		})
		log = log[:0]

		rt.Batch(func() {
			b.SetValue(1)
			rt.Batch(func() {
				a.SetValue(1)
				b.SetValue(2)
			})
			assert.Empty(t, log)
			a.SetValue(2)
		})

		// first queued, first run
		assert.Equal(t, []string{"b2", "a2"}, log)
	})

	t.Run("returns the value", func(t *testing.T) {
		rt := newRuntime(t)
		s := spark.Signal(rt, 1)
		got := spark.Batch(rt, func() int {
			s.SetValue(2)
			return s.Peek() * 10
		})
		assert.Equal(t, 20, got)
	})

	t.Run("explicit start and end", func(t *testing.T) {
		rt := newRuntime(t)
		s := spark.Signal(rt, 0)
		runs := 0
		spark.Effect(rt, func() (spark.Cleanup, error) {
			s.Value()
			runs++
			return nil, nil
		})

		rt.StartBatch()
		s.SetValue(1)
		s.SetValue(2)
		assert.Equal(t, 1, runs)
		rt.EndBatch()
		assert.Equal(t, 2, runs)

		requirePanicsWith(t, spark.ErrUnbalanced, rt.EndBatch)
	})

	t.Run("disposed while queued", func(t *testing.T) {
		rt := newRuntime(t)
		s := spark.Signal(rt, 0)
		runs := 0
		dispose := spark.Effect(rt, func() (spark.Cleanup, error) {
			s.Value()
			runs++
			return nil, nil
		})

		rt.Batch(func() {
			s.SetValue(1)
			dispose()
		})
		assert.Equal(t, 1, runs)
	})

	t.Run("panic still closes the batch", func(t *testing.T) {
		rt := newRuntime(t)
		s := spark.Signal(rt, 0)
		runs := 0
		spark.Effect(rt, func() (spark.Cleanup, error) {
			s.Value()
			runs++
			return nil, nil
		})

		assert.PanicsWithValue(t, "abort", func() {
			rt.Batch(func() {
				s.SetValue(1)
				panic("abort")
			})
		})
		assert.Equal(t, 2, runs)

		s.SetValue(2)
		assert.Equal(t, 3, runs)
	})

	t.Run("effect can requeue itself", func(t *testing.T) {
		rt := newRuntime(t)
		s := spark.Signal(rt, 0)

		seen := []int{}
		spark.Effect(rt, func() (spark.Cleanup, error) {
			v := s.Value()
			seen = append(seen, v)
			if v < 2 {
				rt.Batch(func() {
					s.SetValue(v + 1)
				})
			}
			return nil, nil
		})

		assert.Equal(t, []int{0, 1, 2}, seen)
		assert.Equal(t, 2, s.Peek())
	})
}
