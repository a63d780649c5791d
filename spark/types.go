package spark

type nodeKind uint8

const (
	kindSignal nodeKind = iota
	kindComputed
	kindEffect
)

func (k nodeKind) String() string {
	switch k {
	case kindSignal:
		return "signal"
	case kindComputed:
		return "computed"
	case kindEffect:
		return "effect"
	default:
		return "unknown"
	}
}

// dirty is the version of a computed that must run before it is read.
const dirty int64 = -1

type edgeID int32

const noEdge edgeID = 0

// edge sits in dep's subscriber list and in sub's dependency list at the
// same time. A free slot has a nil sub.
type edge struct {
	sub, dep         *node
	nextSub, prevSub edgeID
	nextDep, prevDep edgeID
	gen              uint32
}

type edgeRef struct {
	id  edgeID
	gen uint32
}

type node struct {
	kind nodeKind
	id   uint64
	name string

	// dependency role
	version int64
	subs    edgeID

	// subscriber role
	deps        edgeID
	depsVersion int64
	queued      bool
	disposed    bool
	run         func()
}

type nodeConfig struct {
	name   string
	onLoad bool
}

type NodeOption func(*nodeConfig)

// Named labels a node in snapshots and error reports.
func Named(name string) NodeOption {
	return func(c *nodeConfig) {
		c.name = name
	}
}

// OnLoad defers an effect's first run to the runtime's mount hook. Without
// a mount hook the effect runs immediately.
func OnLoad() NodeOption {
	return func(c *nodeConfig) {
		c.onLoad = true
	}
}

func (rt *Runtime) initNode(n *node, kind nodeKind, opts []NodeOption) nodeConfig {
	var cfg nodeConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	rt.nextID++
	n.id = rt.nextID
	n.kind = kind
	n.name = cfg.name
	return cfg
}
