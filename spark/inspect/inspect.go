// Package inspect renders and summarises spark.Graph snapshots.
package inspect

//go:generate qtc -file=dot.qtpl

import (
	"encoding/binary"
	"fmt"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/delaneyj/sparkgraph/spark"
)

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

func quote(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}

func nodeLabel(n spark.NodeInfo) string {
	if n.Name != "" {
		return fmt.Sprintf("%s\n%s #%d", n.Name, n.Kind, n.ID)
	}
	return fmt.Sprintf("%s #%d", n.Kind, n.ID)
}

func graphLabel(g spark.Graph) string {
	return fmt.Sprintf("version %d, %d nodes, %d edges", g.Version, len(g.Nodes), len(g.Edges))
}

func shape(kind string) string {
	switch kind {
	case "signal":
		return "box"
	case "computed":
		return "ellipse"
	case "effect":
		return "doubleoctagon"
	default:
		return "plaintext"
	}
}

// Fingerprint hashes the shape of a snapshot: node ids, kinds and edges.
// Versions and dirty flags are left out, so two snapshots of the same
// dependency structure hash equal across writes.
func Fingerprint(g spark.Graph) uint64 {
	d := xxhash.New()
	buf := make([]byte, 0, 16)
	for _, n := range g.Nodes {
		buf = binary.LittleEndian.AppendUint64(buf[:0], n.ID)
		d.Write(buf)
		d.WriteString(n.Kind)
	}
	// separates a node list from an edge list that would otherwise encode
	// the same bytes
	d.Write([]byte{0xff})
	for _, e := range g.Edges {
		buf = binary.LittleEndian.AppendUint64(buf[:0], e.Dep)
		buf = binary.LittleEndian.AppendUint64(buf, e.Sub)
		d.Write(buf)
	}
	return d.Sum64()
}

// Downstream returns the ids of every node that transitively subscribes to
// id, in ascending order.
func Downstream(g spark.Graph, id uint64) []uint64 {
	subs := make(map[uint64][]uint64, len(g.Nodes))
	for _, e := range g.Edges {
		subs[e.Dep] = append(subs[e.Dep], e.Sub)
	}

	seen := mapset.NewThreadUnsafeSet[uint64]()
	stack := []uint64{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, sub := range subs[cur] {
			if seen.Add(sub) {
				stack = append(stack, sub)
			}
		}
	}

	ids := seen.ToSlice()
	slices.Sort(ids)
	return ids
}
