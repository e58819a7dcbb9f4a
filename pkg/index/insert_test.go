package index

import (
	"errors"
	"testing"

	"github.com/proximadb/proximadb/pkg/config"
	"github.com/proximadb/proximadb/pkg/record"
	"github.com/proximadb/proximadb/pkg/vector"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := New(config.Default(), 4)
	if err != nil {
		t.Fatalf("unexpected error constructing index: %v", err)
	}
	idx.SeedSource(42)
	return idx
}

func TestInsertFirstNodeBecomesEntryPoint(t *testing.T) {
	idx := newTestIndex(t)

	if err := idx.Insert(0, vector.Vector{1, 0, 0}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if idx.Size() != 1 {
		t.Errorf("expected size 1, got %d", idx.Size())
	}
	if idx.EntryPoint() != record.VectorID(0) {
		t.Errorf("expected entry point 0, got %d", idx.EntryPoint())
	}
}

func TestInsertRejectsDimensionMismatch(t *testing.T) {
	idx := newTestIndex(t)

	if err := idx.Insert(0, vector.Vector{1, 0, 0}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := idx.Insert(1, vector.Vector{1, 0})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
	if idx.Size() != 1 {
		t.Errorf("size should be unchanged after rejected insert, got %d", idx.Size())
	}
}

func TestInsertManyThenContains(t *testing.T) {
	idx := newTestIndex(t)

	for i := 0; i < 100; i++ {
		v := vector.Random(16)
		if err := idx.Insert(record.VectorID(i), v); err != nil {
			t.Fatalf("insert %d: unexpected error: %v", i, err)
		}
	}

	if idx.Size() != 100 {
		t.Fatalf("expected size 100, got %d", idx.Size())
	}
	if !idx.Contains(0) {
		t.Errorf("expected index to contain ID 0")
	}
}

func TestNeighborListsHaveNoDuplicatesOrSelfLoops(t *testing.T) {
	idx := newTestIndex(t)

	for i := 0; i < 50; i++ {
		if err := idx.Insert(record.VectorID(i), vector.Random(8)); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	for id, n := range idx.nodes {
		for layer := 0; layer <= n.level; layer++ {
			seen := make(map[record.VectorID]bool)
			for _, neighborID := range n.getNeighbors(layer) {
				if neighborID == id {
					t.Errorf("node %d has a self-loop at layer %d", id, layer)
				}
				if seen[neighborID] {
					t.Errorf("node %d has duplicate neighbor %d at layer %d", id, neighborID, layer)
				}
				seen[neighborID] = true
			}
		}
	}
}

func TestLayerMembershipIsNested(t *testing.T) {
	idx := newTestIndex(t)

	for i := 0; i < 80; i++ {
		if err := idx.Insert(record.VectorID(i), vector.Random(8)); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	// every node present in layer l is also present, by construction, in
	// every layer below it: newNode allocates neighbor slots 0..level.
	for id, n := range idx.nodes {
		if len(n.neighbors) != n.level+1 {
			t.Errorf("node %d: expected %d layer slots, got %d", id, n.level+1, len(n.neighbors))
		}
	}
}
