package index

import (
	"container/heap"
	"fmt"

	"github.com/proximadb/proximadb/pkg/record"
	"github.com/proximadb/proximadb/pkg/vector"
)

// Insert adds v under id to the graph. id is assumed already allocated and
// unused by the caller (the collection owns ID assignment); Insert itself
// only validates the vector's dimension.
//
// Changes are applied to the graph only after neighbor selection succeeds
// for every layer, so a failure never leaves the new node linked on some
// layers but not others.
func (idx *Index) Insert(id record.VectorID, v vector.Vector) error {
	idx.mu.Lock()

	if idx.dimension == 0 {
		idx.dimension = v.Len()
	} else if v.Len() != idx.dimension {
		idx.mu.Unlock()
		return fmt.Errorf("%w: expected %d, got %d", ErrDimensionMismatch, idx.dimension, v.Len())
	}

	level := idx.randomLevel()
	newNode := newNode(id, v, level)

	if idx.size == 0 {
		idx.nodes[id] = newNode
		idx.entryPoint = id
		idx.maxLayer = level
		idx.size++
		idx.mu.Unlock()
		return nil
	}

	ep := idx.entryPoint
	topLayer := idx.maxLayer
	idx.mu.Unlock()

	// Phase 1: greedy descent from the top layer down to level+1, moving to
	// the neighbor strictly closer to v than the current node (an equally
	// close neighbor wins only if its ID is smaller).
	epVector := idx.safeVectorOf(ep)
	currentDist := idx.distance(v, epVector)
	for layer := topLayer; layer > level; layer-- {
		ep, currentDist = idx.greedyDescend(v, ep, currentDist, layer)
	}

	// Phase 2: beam-search insertion from min(level, topLayer) down to 0.
	type layerLinks struct {
		layer     int
		neighbors []record.VectorID
	}
	var plan []layerLinks

	idx.mu.RLock()
	for layer := min(level, topLayer); layer >= 0; layer-- {
		candidates := idx.searchLayer(v, ep, idx.cfg.EfConstruction, layer)
		if len(candidates) > 0 {
			ep = candidates[0].id
		}

		m := idx.m
		if layer == 0 {
			m = idx.m0
		}
		neighbors := selectHeuristic(candidates, m, v, idx.vectorOf, idx.distFunc)
		plan = append(plan, layerLinks{layer: layer, neighbors: neighbors})
	}
	idx.mu.RUnlock()

	idx.mu.Lock()
	idx.nodes[id] = newNode
	for _, pl := range plan {
		for _, neighborID := range pl.neighbors {
			neighborNode, ok := idx.nodes[neighborID]
			if !ok {
				continue
			}
			newNode.addNeighbor(pl.layer, neighborID)
			neighborNode.addNeighbor(pl.layer, id)
			idx.pruneNeighbors(neighborNode, pl.layer)
		}
	}

	if level > idx.maxLayer {
		idx.maxLayer = level
		idx.entryPoint = id
	}
	idx.size++
	idx.mu.Unlock()

	return nil
}

// safeVectorOf looks up a node's vector while holding no lock; callers must
// ensure the node cannot be concurrently removed (true under the
// single-writer model).
func (idx *Index) safeVectorOf(id record.VectorID) vector.Vector {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.vectorOf(id)
}

// greedyDescend performs single-beam greedy-closest search from ep in
// layer, returning the closest node reached and its distance to query.
func (idx *Index) greedyDescend(query vector.Vector, ep record.VectorID, epDist float32, layer int) (record.VectorID, float32) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	current := ep
	currentDist := epDist
	changed := true
	for changed {
		changed = false
		n, ok := idx.nodes[current]
		if !ok {
			break
		}
		for _, neighborID := range n.getNeighbors(layer) {
			neighborNode, ok := idx.nodes[neighborID]
			if !ok {
				continue
			}
			d := idx.distance(query, neighborNode.vector)
			if d < currentDist || (d == currentDist && neighborID < current) {
				currentDist = d
				current = neighborID
				changed = true
			}
		}
	}
	return current, currentDist
}

// searchLayer runs the bounded beam search described in spec §4.D: a
// min-heap of candidates to expand and a max-heap of the best ef results
// seen, visited-set scoped to this call. Caller must hold idx.mu (read or
// write).
func (idx *Index) searchLayer(query vector.Vector, entryPoint record.VectorID, ef int, layer int) []candidate {
	visited := map[record.VectorID]bool{entryPoint: true}
	candidates := &minHeap{}
	results := &maxHeap{}

	epNode, ok := idx.nodes[entryPoint]
	if !ok {
		return nil
	}
	d := idx.distance(query, epNode.vector)
	heap.Push(candidates, candidate{id: entryPoint, distance: d})
	heap.Push(results, candidate{id: entryPoint, distance: d})

	for candidates.Len() > 0 {
		current := heap.Pop(candidates).(candidate)
		if results.Len() >= ef && current.distance > results.peek().distance {
			break
		}

		currentNode, ok := idx.nodes[current.id]
		if !ok {
			continue
		}
		for _, neighborID := range currentNode.getNeighbors(layer) {
			if visited[neighborID] {
				continue
			}
			visited[neighborID] = true

			neighborNode, ok := idx.nodes[neighborID]
			if !ok {
				continue
			}
			nd := idx.distance(query, neighborNode.vector)
			if results.Len() < ef || nd < results.peek().distance {
				heap.Push(candidates, candidate{id: neighborID, distance: nd})
				heap.Push(results, candidate{id: neighborID, distance: nd})
				if results.Len() > ef {
					heap.Pop(results)
				}
			}
		}
	}

	out := make([]candidate, results.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(results).(candidate)
	}
	return out
}

// pruneNeighbors reapplies heuristic selection to n's full neighbor set at
// layer when it exceeds the layer's degree cap, replacing the neighbor list
// with the trimmed result. Caller must hold idx.mu for writing.
func (idx *Index) pruneNeighbors(n *node, layer int) {
	m := idx.m
	if layer == 0 {
		m = idx.m0
	}

	neighbors := n.getNeighbors(layer)
	if len(neighbors) <= m {
		return
	}

	cands := make([]candidate, 0, len(neighbors))
	for _, neighborID := range neighbors {
		neighborNode, ok := idx.nodes[neighborID]
		if !ok {
			continue
		}
		cands = append(cands, candidate{id: neighborID, distance: idx.distance(n.vector, neighborNode.vector)})
	}

	trimmed := selectHeuristic(cands, m, n.vector, idx.vectorOf, idx.distFunc)
	n.setNeighbors(layer, trimmed)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
