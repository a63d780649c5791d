// Package local keeps one spark.Runtime per goroutine so code that cannot
// thread a runtime through its calls still gets single-goroutine semantics.
package local

import (
	"sync"

	"github.com/delaneyj/sparkgraph/spark"
	"github.com/petermattis/goid"
)

var runtimes sync.Map

// Runtime returns the calling goroutine's runtime, creating it with opts on
// first use. Options are ignored once the runtime exists.
func Runtime(opts ...spark.RuntimeOption) *spark.Runtime {
	gid := goid.Get()

	if rt, ok := runtimes.Load(gid); ok {
		return rt.(*spark.Runtime)
	}

	rt := spark.NewRuntime(opts...)
	runtimes.Store(gid, rt)
	return rt
}

// Release drops the calling goroutine's runtime. Entries are not removed
// when a goroutine exits; call Release before returning from it.
func Release() {
	runtimes.Delete(goid.Get())
}
