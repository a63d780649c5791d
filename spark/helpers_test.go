package spark_test

import (
	"errors"
	"testing"

	"github.com/delaneyj/sparkgraph/spark"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newRuntime fails the test on any reported effect error and checks the
// graph is consistent once the test is done.
func newRuntime(t *testing.T, opts ...spark.RuntimeOption) *spark.Runtime {
	t.Helper()
	opts = append([]spark.RuntimeOption{
		spark.WithErrorHandler(func(err error) {
			assert.FailNow(t, err.Error())
		}),
	}, opts...)
	rt := spark.NewRuntime(opts...)
	t.Cleanup(func() {
		assert.NoError(t, rt.Verify())
	})
	return rt
}

func requirePanicsWith(t *testing.T, target error, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a panic")
		err, ok := r.(error)
		require.True(t, ok, "panic value %v is not an error", r)
		assert.True(t, errors.Is(err, target), "got %v, want %v", err, target)
	}()
	fn()
}
