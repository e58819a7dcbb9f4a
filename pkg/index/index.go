package index

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/proximadb/proximadb/pkg/config"
	"github.com/proximadb/proximadb/pkg/record"
	"github.com/proximadb/proximadb/pkg/vector"
)

// DefaultM is the target number of neighbors per node per layer.
const DefaultM = 16

// Index is a multi-layer navigable small-world graph. Nodes reference each
// other only by record.VectorID (never by pointer); every traversal looks
// the ID up in idx.nodes. This is the arena+index pattern: the arena is the
// nodes map, the index is the per-layer adjacency each node carries.
type Index struct {
	mu sync.RWMutex

	m        int // target neighbors per node per layer
	m0       int // cap at layer 0 (2*m by default)
	cfg      config.Config
	distFunc vector.DistanceFunc

	dimension  int
	nodes      map[record.VectorID]*node
	entryPoint record.VectorID
	maxLayer   int
	size       int

	rng *rand.Rand // level-assignment PRNG; see SeedSource for test reproducibility
}

// New builds an empty Index for the given Config. m is the target neighbor
// count per layer (DefaultM if 0); the layer-0 cap is 2*m.
func New(cfg config.Config, m int) (*Index, error) {
	if m <= 0 {
		m = DefaultM
	}
	distFunc, err := cfg.DistanceFunc()
	if err != nil {
		return nil, err
	}
	return &Index{
		m:          m,
		m0:         2 * m,
		cfg:        cfg,
		distFunc:   distFunc,
		nodes:      make(map[record.VectorID]*node),
		entryPoint: record.InvalidVectorID,
		maxLayer:   -1,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// SeedSource reseeds the level-assignment PRNG. Exposed so tests can get
// deterministic, reproducible level assignments.
func (idx *Index) SeedSource(seed int64) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.rng = rand.New(rand.NewSource(seed))
}

// randomLevel draws a new node's top level as floor(-ln(U) * ml), U ~
// Uniform(0,1]. Caller must hold idx.mu.
func (idx *Index) randomLevel() int {
	u := idx.rng.Float64()
	for u == 0 {
		u = idx.rng.Float64()
	}
	return int(math.Floor(-math.Log(u) * idx.cfg.Ml))
}

// Size returns the number of live nodes.
func (idx *Index) Size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.size
}

// Dimension returns the fixed vector dimension, or 0 if no node has been
// inserted yet.
func (idx *Index) Dimension() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.dimension
}

// SetDimension fixes the index's dimension before any node is inserted.
// Callers (the collection) are responsible for only calling this while
// empty; Index itself does not track "empty" separately from dimension==0.
func (idx *Index) SetDimension(d int) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.dimension = d
}

// EntryPoint returns the current entry point ID. It is invalid (see
// record.VectorID.IsValid) when the index is empty.
func (idx *Index) EntryPoint() record.VectorID {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.entryPoint
}

// Contains reports whether id names a live node.
func (idx *Index) Contains(id record.VectorID) bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	_, ok := idx.nodes[id]
	return ok
}

// Stats summarizes the index's shape for observability.
type Stats struct {
	Size         int
	MaxLayer     int
	NodesPerLayer map[int]int
}

// Stats returns a snapshot of the index's size and per-layer population.
func (idx *Index) Stats() Stats {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	perLayer := make(map[int]int)
	for _, n := range idx.nodes {
		for layer := 0; layer <= n.level; layer++ {
			perLayer[layer]++
		}
	}
	return Stats{Size: idx.size, MaxLayer: idx.maxLayer, NodesPerLayer: perLayer}
}

func (idx *Index) vectorOf(id record.VectorID) vector.Vector {
	if n, ok := idx.nodes[id]; ok {
		return n.vector
	}
	return nil
}

func (idx *Index) distance(a, b vector.Vector) float32 {
	d, err := idx.distFunc(a, b)
	if err != nil {
		// Both operands are always drawn from already dimension-checked
		// index vectors; a mismatch here is a programmer error, not a
		// reachable runtime condition.
		panic(err)
	}
	return d
}
