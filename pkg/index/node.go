// Package index implements the proximity graph (a multi-layer navigable
// small-world graph) that backs approximate nearest-neighbor search for a
// collection.
package index

import (
	"sync"

	"github.com/proximadb/proximadb/pkg/record"
	"github.com/proximadb/proximadb/pkg/vector"
)

// node is a single graph node: an inserted vector plus its per-layer
// neighbor lists. Nodes reference each other only by VectorID, never by
// pointer, so the graph has no ownership cycles.
type node struct {
	id     record.VectorID
	vector vector.Vector
	level  int

	// neighbors[layer] holds the neighbor IDs at that layer, layer 0..level.
	neighbors [][]record.VectorID

	mu sync.RWMutex
}

func newNode(id record.VectorID, v vector.Vector, level int) *node {
	neighbors := make([][]record.VectorID, level+1)
	for i := range neighbors {
		neighbors[i] = make([]record.VectorID, 0)
	}
	return &node{id: id, vector: v, level: level, neighbors: neighbors}
}

func (n *node) ID() record.VectorID {
	return n.id
}

func (n *node) Vector() vector.Vector {
	return n.vector
}

func (n *node) Level() int {
	return n.level
}

// addNeighbor appends neighborID to layer's list unless already present.
func (n *node) addNeighbor(layer int, neighborID record.VectorID) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if layer < 0 || layer > n.level {
		return
	}
	for _, id := range n.neighbors[layer] {
		if id == neighborID {
			return
		}
	}
	n.neighbors[layer] = append(n.neighbors[layer], neighborID)
}

// removeNeighbor drops neighborID from layer's list, if present.
func (n *node) removeNeighbor(layer int, neighborID record.VectorID) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if layer < 0 || layer > n.level {
		return
	}
	for i, id := range n.neighbors[layer] {
		if id == neighborID {
			n.neighbors[layer][i] = n.neighbors[layer][len(n.neighbors[layer])-1]
			n.neighbors[layer] = n.neighbors[layer][:len(n.neighbors[layer])-1]
			return
		}
	}
}

// getNeighbors returns a copy of layer's neighbor list.
func (n *node) getNeighbors(layer int) []record.VectorID {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if layer < 0 || layer > n.level {
		return nil
	}
	out := make([]record.VectorID, len(n.neighbors[layer]))
	copy(out, n.neighbors[layer])
	return out
}

// setNeighbors replaces layer's neighbor list wholesale.
func (n *node) setNeighbors(layer int, neighbors []record.VectorID) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if layer < 0 || layer > n.level {
		return
	}
	n.neighbors[layer] = make([]record.VectorID, len(neighbors))
	copy(n.neighbors[layer], neighbors)
}

func (n *node) neighborCount(layer int) int {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if layer < 0 || layer > n.level {
		return 0
	}
	return len(n.neighbors[layer])
}
