package index

import (
	"sort"

	"github.com/proximadb/proximadb/pkg/record"
	"github.com/proximadb/proximadb/pkg/vector"
)

// selectHeuristic picks at most m candidates out of candidates to become
// neighbors of insertingVector. It repeatedly takes the closest remaining
// candidate c and keeps it unless some already-selected s dominates it
// (distance(c, s) < distance(c, insertingVector)); this preserves diversity
// among the chosen neighbors instead of collapsing onto a single hub.
// Ties in distance during the initial ordering break by smaller VectorID.
func selectHeuristic(
	candidates []candidate,
	m int,
	insertingVector vector.Vector,
	vectorOf func(record.VectorID) vector.Vector,
	dist vector.DistanceFunc,
) []record.VectorID {
	ordered := make([]candidate, len(candidates))
	copy(ordered, candidates)
	sort.Slice(ordered, func(i, j int) bool { return less(ordered[i], ordered[j]) })

	selected := make([]candidate, 0, m)
	for _, c := range ordered {
		if len(selected) >= m {
			break
		}

		dominated := false
		for _, s := range selected {
			d, err := dist(vectorOf(c.id), vectorOf(s.id))
			if err != nil {
				continue
			}
			if d < c.distance {
				dominated = true
				break
			}
		}
		if !dominated {
			selected = append(selected, c)
		}
	}

	ids := make([]record.VectorID, len(selected))
	for i, s := range selected {
		ids[i] = s.id
	}
	return ids
}
