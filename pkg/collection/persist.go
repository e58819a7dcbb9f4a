package collection

import (
	"github.com/proximadb/proximadb/pkg/config"
	"github.com/proximadb/proximadb/pkg/index"
	"github.com/proximadb/proximadb/pkg/record"
)

// State is the full in-memory state of a Collection, exported so that a
// persistence layer can encode and decode it without reaching into
// unexported fields. Restoring a State reproduces every invariant of the
// original collection, including neighbor-list ordering.
type State struct {
	Config     config.Config
	Dimension  int
	NextID     record.VectorID
	Records    map[record.VectorID]record.Record
	EntryPoint record.VectorID
	MaxLayer   int
	Nodes      []index.NodeState
}

// State captures a snapshot of the collection suitable for serialization.
func (c *Collection) State() State {
	return State{
		Config:     c.config,
		Dimension:  c.dimension,
		NextID:     c.nextID,
		Records:    c.List(),
		EntryPoint: c.idx.EntryPoint(),
		MaxLayer:   c.idx.Stats().MaxLayer,
		Nodes:      c.idx.Snapshot(),
	}
}

// Restore rebuilds a Collection from a previously captured State.
func Restore(state State) (*Collection, error) {
	if err := state.Config.Validate(); err != nil {
		return nil, err
	}
	distFunc, err := state.Config.DistanceFunc()
	if err != nil {
		return nil, err
	}
	idx, err := index.Restore(state.Config, index.DefaultM, state.Dimension, state.EntryPoint, state.MaxLayer, state.Nodes)
	if err != nil {
		return nil, err
	}

	records := make(map[record.VectorID]record.Record, len(state.Records))
	for id, rec := range state.Records {
		records[id] = rec
	}

	return &Collection{
		config:    state.Config,
		dimension: state.Dimension,
		distFunc:  distFunc,
		nextID:    state.NextID,
		records:   records,
		idx:       idx,
	}, nil
}
