package index

import (
	"fmt"
	"sort"

	"github.com/proximadb/proximadb/pkg/record"
	"github.com/proximadb/proximadb/pkg/vector"
)

// Result is one ranked hit from Search: the node's ID and its distance to
// the query vector.
type Result struct {
	ID       record.VectorID
	Distance float32
}

// Search runs the query procedure from spec §4.D: greedy descent from the
// entry point down through layer 1, then a single beam search at layer 0
// with width max(ef_search, k), returning the top k closest results.
func (idx *Index) Search(query vector.Vector, k int) ([]Result, error) {
	idx.mu.RLock()
	if idx.dimension != 0 && query.Len() != idx.dimension {
		idx.mu.RUnlock()
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrDimensionMismatch, idx.dimension, query.Len())
	}
	if idx.size == 0 {
		idx.mu.RUnlock()
		return nil, ErrEmpty
	}

	ep := idx.entryPoint
	topLayer := idx.maxLayer
	epNode := idx.nodes[ep]
	currentDist := idx.distance(query, epNode.vector)
	idx.mu.RUnlock()

	for layer := topLayer; layer > 0; layer-- {
		ep, currentDist = idx.greedyDescend(query, ep, currentDist, layer)
	}

	ef := k
	idx.mu.RLock()
	if idx.cfg.EfSearch > ef {
		ef = idx.cfg.EfSearch
	}
	candidates := idx.searchLayer(query, ep, ef, 0)
	idx.mu.RUnlock()

	sort.Slice(candidates, func(i, j int) bool { return less(candidates[i], candidates[j]) })
	if k < len(candidates) {
		candidates = candidates[:k]
	}

	results := make([]Result, len(candidates))
	for i, c := range candidates {
		results[i] = Result{ID: c.id, Distance: c.distance}
	}
	return results, nil
}

// Delete removes id from every layer it participates in and from every
// neighbor list that references it. For each node in id's own neighbor
// lists whose degree drops below the repair threshold (M/2, or M0/2 on
// layer 0), a local beam search re-links it to fresh neighbors via
// heuristic selection; nodes that referenced id one-way lose that
// reference without a repair. If id was the entry point, a new one is promoted
// deterministically: the lowest ID among the nodes at the new highest
// non-empty layer.
func (idx *Index) Delete(id record.VectorID) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	n, ok := idx.nodes[id]
	if !ok {
		return ErrUnknownID
	}

	type repairJob struct {
		layer      int
		neighborID record.VectorID
	}
	var repairs []repairJob

	for layer := 0; layer <= n.level; layer++ {
		m := idx.m
		if layer == 0 {
			m = idx.m0
		}
		for _, neighborID := range n.getNeighbors(layer) {
			neighborNode, ok := idx.nodes[neighborID]
			if !ok {
				continue
			}
			neighborNode.removeNeighbor(layer, id)
			if neighborNode.neighborCount(layer) < m/2 {
				repairs = append(repairs, repairJob{layer: layer, neighborID: neighborID})
			}
		}
	}

	// Pruning trims only one side of an edge, so other nodes may still list
	// id without id listing them; drop those references too.
	for _, other := range idx.nodes {
		for layer := 0; layer <= n.level && layer <= other.level; layer++ {
			other.removeNeighbor(layer, id)
		}
	}

	delete(idx.nodes, id)
	idx.size--

	if id == idx.entryPoint {
		idx.promoteEntryPoint()
	}

	for _, job := range repairs {
		neighborNode, ok := idx.nodes[job.neighborID]
		if !ok {
			continue
		}
		m := idx.m
		if job.layer == 0 {
			m = idx.m0
		}
		candidates := idx.searchLayer(neighborNode.vector, job.neighborID, idx.cfg.EfConstruction, job.layer)
		candidates = excludeID(candidates, job.neighborID)
		fresh := selectHeuristic(candidates, m, neighborNode.vector, idx.vectorOf, idx.distFunc)
		neighborNode.setNeighbors(job.layer, fresh)
	}

	return nil
}

func excludeID(candidates []candidate, id record.VectorID) []candidate {
	out := candidates[:0:0]
	for _, c := range candidates {
		if c.id != id {
			out = append(out, c)
		}
	}
	return out
}

// promoteEntryPoint picks the lowest-ID node among the nodes at the new
// highest non-empty layer. Caller must hold idx.mu for writing.
func (idx *Index) promoteEntryPoint() {
	if idx.size == 0 {
		idx.entryPoint = record.InvalidVectorID
		idx.maxLayer = -1
		return
	}

	maxLevel := -1
	for _, n := range idx.nodes {
		if n.level > maxLevel {
			maxLevel = n.level
		}
	}

	var best record.VectorID
	found := false
	for nid, n := range idx.nodes {
		if n.level != maxLevel {
			continue
		}
		if !found || nid < best {
			best = nid
			found = true
		}
	}

	idx.entryPoint = best
	idx.maxLayer = maxLevel
}
