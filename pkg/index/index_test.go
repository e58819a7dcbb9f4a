package index

import (
	"testing"

	"github.com/proximadb/proximadb/pkg/config"
	"github.com/proximadb/proximadb/pkg/record"
	"github.com/proximadb/proximadb/pkg/vector"
)

func TestNodeNeighborOperations(t *testing.T) {
	n := newNode(1, vector.Vector{1, 2, 3}, 2)

	if n.ID() != 1 {
		t.Errorf("expected ID 1, got %d", n.ID())
	}
	if n.Level() != 2 {
		t.Errorf("expected level 2, got %d", n.Level())
	}

	for layer := 0; layer <= 2; layer++ {
		if neighbors := n.getNeighbors(layer); len(neighbors) != 0 {
			t.Errorf("layer %d should start with 0 neighbors, got %d", layer, len(neighbors))
		}
	}

	n.addNeighbor(0, 2)
	n.addNeighbor(0, 3)
	n.addNeighbor(0, 2) // duplicate, ignored
	if got := n.getNeighbors(0); len(got) != 2 {
		t.Errorf("expected 2 neighbors at layer 0, got %d", len(got))
	}

	n.removeNeighbor(0, 3)
	if n.neighborCount(0) != 1 {
		t.Errorf("expected 1 neighbor after removal, got %d", n.neighborCount(0))
	}

	n.setNeighbors(1, []record.VectorID{10, 20, 30})
	if got := n.getNeighbors(1); len(got) != 3 {
		t.Errorf("expected 3 neighbors at layer 1, got %d", len(got))
	}
}

func TestNewIndexDefaults(t *testing.T) {
	idx, err := New(config.Default(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if idx.m != DefaultM {
		t.Errorf("expected m=%d, got %d", DefaultM, idx.m)
	}
	if idx.m0 != 2*DefaultM {
		t.Errorf("expected m0=%d, got %d", 2*DefaultM, idx.m0)
	}
	if idx.Size() != 0 {
		t.Errorf("new index should have size 0, got %d", idx.Size())
	}
	if idx.maxLayer != -1 {
		t.Errorf("new index should have maxLayer=-1, got %d", idx.maxLayer)
	}
	if idx.EntryPoint().IsValid() {
		t.Errorf("new index should have no valid entry point")
	}
}

func TestRandomLevelDistribution(t *testing.T) {
	idx, err := New(config.Default(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	idx.SeedSource(1)

	levelCounts := make(map[int]int)
	const iterations = 10000
	for i := 0; i < iterations; i++ {
		levelCounts[idx.randomLevel()]++
	}

	if levelCounts[0] < iterations/2 {
		t.Errorf("expected at least 50%% of levels at 0, got %.2f%%",
			float64(levelCounts[0])/float64(iterations)*100)
	}
}

func TestIndexStatsEmpty(t *testing.T) {
	idx, err := New(config.Default(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stats := idx.Stats()
	if stats.Size != 0 {
		t.Errorf("expected size 0, got %d", stats.Size)
	}
	if stats.MaxLayer != -1 {
		t.Errorf("expected maxLayer -1, got %d", stats.MaxLayer)
	}
	if len(stats.NodesPerLayer) != 0 {
		t.Errorf("expected 0 layers, got %d", len(stats.NodesPerLayer))
	}
}
