package index

import (
	"github.com/proximadb/proximadb/pkg/config"
	"github.com/proximadb/proximadb/pkg/record"
	"github.com/proximadb/proximadb/pkg/vector"
)

// NodeState is the full on-disk shape of one graph node: its vector, its
// top level, and its neighbor list at every layer 0..Level, in the exact
// order currently stored (so a round trip through Snapshot/Restore
// reproduces identical adjacency, which affects tie-break ordering in
// subsequent queries).
type NodeState struct {
	ID        record.VectorID
	Vector    vector.Vector
	Level     int
	Neighbors [][]record.VectorID // Neighbors[layer], layer 0..Level
}

// Snapshot returns every node's full state, ordered by ascending ID so the
// persistence layer writes (and re-reads) adjacency deterministically.
func (idx *Index) Snapshot() []NodeState {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make([]NodeState, 0, len(idx.nodes))
	for _, n := range idx.nodes {
		n.mu.RLock()
		neighbors := make([][]record.VectorID, len(n.neighbors))
		for layer, ids := range n.neighbors {
			neighbors[layer] = append([]record.VectorID(nil), ids...)
		}
		n.mu.RUnlock()
		out = append(out, NodeState{ID: n.id, Vector: n.vector.Clone(), Level: n.level, Neighbors: neighbors})
	}
	sortNodeStates(out)
	return out
}

func sortNodeStates(states []NodeState) {
	for i := 1; i < len(states); i++ {
		for j := i; j > 0 && states[j].ID < states[j-1].ID; j-- {
			states[j], states[j-1] = states[j-1], states[j]
		}
	}
}

// Restore rebuilds an Index directly from a prior Snapshot, bypassing
// insertion so that adjacency (and therefore query determinism) round-trips
// exactly rather than being recomputed.
func Restore(cfg config.Config, m int, dimension int, entryPoint record.VectorID, maxLayer int, states []NodeState) (*Index, error) {
	idx, err := New(cfg, m)
	if err != nil {
		return nil, err
	}
	idx.dimension = dimension
	idx.entryPoint = entryPoint
	idx.maxLayer = maxLayer

	for _, s := range states {
		n := newNode(s.ID, s.Vector, s.Level)
		for layer, ids := range s.Neighbors {
			n.neighbors[layer] = append([]record.VectorID(nil), ids...)
		}
		idx.nodes[s.ID] = n
	}
	idx.size = len(states)

	return idx, nil
}
