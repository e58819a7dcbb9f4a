// Package collection implements the facade that owns a set of records and
// the proximity graph built over them: insert, update, delete, and the two
// flavors of nearest-neighbor search.
package collection

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/proximadb/proximadb/pkg/config"
	"github.com/proximadb/proximadb/pkg/index"
	"github.com/proximadb/proximadb/pkg/observability"
	"github.com/proximadb/proximadb/pkg/record"
	"github.com/proximadb/proximadb/pkg/vector"
)

// SearchResult pairs a record's identifier with its distance to the query.
type SearchResult struct {
	ID       record.VectorID
	Distance float32
}

// Collection owns the record store and the index built over it. Mutating
// methods assume exclusive access from a single caller; concurrent readers
// on an otherwise-idle Collection are safe.
type Collection struct {
	config    config.Config
	dimension int
	distFunc  vector.DistanceFunc

	nextID  record.VectorID
	records map[record.VectorID]record.Record
	idx     *index.Index

	// Relevancy, when non-nil, caps Search results to those whose distance
	// does not exceed it. Unset by default, matching the facade's "no
	// cutoff unless asked" behavior.
	Relevancy *float32

	Logger  *observability.Logger
	Metrics *observability.Metrics
}

// New creates an empty collection bound to cfg. Dimension is unset until
// the first insert or an explicit SetDimension call.
func New(cfg config.Config) (*Collection, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	distFunc, err := cfg.DistanceFunc()
	if err != nil {
		return nil, err
	}
	idx, err := index.New(cfg, index.DefaultM)
	if err != nil {
		return nil, err
	}
	return &Collection{
		config:   cfg,
		distFunc: distFunc,
		records:  make(map[record.VectorID]record.Record),
		idx:      idx,
	}, nil
}

// FromRecords builds a collection and inserts every record in order.
func FromRecords(cfg config.Config, records []record.Record) (*Collection, error) {
	c, err := New(cfg)
	if err != nil {
		return nil, err
	}
	if _, err := c.InsertMany(records); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Collection) validateDimension(v vector.Vector) error {
	if c.dimension == 0 {
		c.dimension = v.Len()
		return nil
	}
	if v.Len() != c.dimension {
		return fmt.Errorf("%w: expected %d, got %d", ErrInvalidVectorDimension, c.dimension, v.Len())
	}
	return nil
}

// Insert assigns the next VectorID to rec and adds it to the collection.
// The ID counter is bumped only once dimension validation passes, but once
// bumped it is never reused: a failing index insert rolls back the record
// map entry, not the counter.
func (c *Collection) Insert(rec record.Record) (record.VectorID, error) {
	if err := c.validateDimension(rec.Vector); err != nil {
		return record.InvalidVectorID, err
	}

	id := c.nextID
	c.nextID++
	c.records[id] = rec

	if err := c.idx.Insert(id, rec.Vector); err != nil {
		delete(c.records, id)
		return record.InvalidVectorID, err
	}

	if c.Metrics != nil {
		c.Metrics.RecordInsert()
		c.Metrics.UpdateIndexStats(c.idx.Size(), c.idx.Stats().MaxLayer)
	}
	if c.Logger != nil {
		c.Logger.Debug("inserted record", map[string]interface{}{"id": uint32(id)})
	}
	return id, nil
}

// InsertMany inserts records sequentially in order. It is not atomic as a
// whole: the first failing record aborts the batch, and every record
// inserted before it stays committed. The returned slice holds the IDs of
// the records that were successfully inserted, in insertion order.
func (c *Collection) InsertMany(records []record.Record) ([]record.VectorID, error) {
	ids := make([]record.VectorID, 0, len(records))
	for i, rec := range records {
		id, err := c.Insert(rec)
		if err != nil {
			return ids, fmt.Errorf("record %d: %w", i, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Update replaces the record stored at id, preserving the ID, and rebuilds
// its position in the index. Equivalent to a delete followed by an insert
// that reuses the same identifier.
func (c *Collection) Update(id record.VectorID, rec record.Record) error {
	if _, ok := c.records[id]; !ok {
		return ErrUnknownID
	}
	if err := c.validateDimension(rec.Vector); err != nil {
		return err
	}
	if err := c.idx.Delete(id); err != nil {
		return err
	}
	if err := c.idx.Insert(id, rec.Vector); err != nil {
		return err
	}
	c.records[id] = rec

	if c.Metrics != nil {
		c.Metrics.RecordUpdate()
	}
	return nil
}

// Delete removes id from both the record map and the index.
func (c *Collection) Delete(id record.VectorID) error {
	if _, ok := c.records[id]; !ok {
		return ErrUnknownID
	}
	if err := c.idx.Delete(id); err != nil {
		return err
	}
	delete(c.records, id)

	if c.Metrics != nil {
		c.Metrics.RecordDelete()
		c.Metrics.UpdateIndexStats(c.idx.Size(), c.idx.Stats().MaxLayer)
	}
	return nil
}

// Get returns the record stored at id, if any.
func (c *Collection) Get(id record.VectorID) (record.Record, bool) {
	rec, ok := c.records[id]
	return rec, ok
}

// Contains reports whether id is present in the collection.
func (c *Collection) Contains(id record.VectorID) bool {
	_, ok := c.records[id]
	return ok
}

// Len returns the number of records currently stored.
func (c *Collection) Len() int {
	return len(c.records)
}

// IsEmpty reports whether the collection holds no records.
func (c *Collection) IsEmpty() bool {
	return len(c.records) == 0
}

// List returns a snapshot copy of the record map.
func (c *Collection) List() map[record.VectorID]record.Record {
	out := make(map[record.VectorID]record.Record, len(c.records))
	for id, rec := range c.records {
		out[id] = rec
	}
	return out
}

// Dimension returns the collection's vector dimension, or 0 if unset.
func (c *Collection) Dimension() int {
	return c.dimension
}

// SetDimension fixes the collection's expected vector dimension. Only
// permitted while the collection holds no records.
func (c *Collection) SetDimension(d int) error {
	if !c.IsEmpty() {
		return fmt.Errorf("%w: collection is not empty", ErrInvalidVectorDimension)
	}
	c.dimension = d
	return nil
}

// Search runs an approximate nearest-neighbor search for the n closest
// records to query, then truncates the result to Relevancy if set.
func (c *Collection) Search(query vector.Vector, n int) ([]SearchResult, error) {
	start := time.Now()
	results, err := c.idx.Search(query, n)
	if err != nil {
		if isEmptyErr(err) {
			return nil, nil
		}
		return nil, err
	}

	out := applyRelevancy(toSearchResults(results), c.Relevancy)

	if c.Metrics != nil {
		c.Metrics.RecordANNSearch(time.Since(start), len(out))
	}
	return out, nil
}

// TrueSearch computes distances against every live record directly,
// bypassing the index. It does not apply the Relevancy cutoff.
func (c *Collection) TrueSearch(query vector.Vector, n int) ([]SearchResult, error) {
	start := time.Now()
	all := make([]SearchResult, 0, len(c.records))
	for id, rec := range c.records {
		d, err := c.distFunc(query, rec.Vector)
		if err != nil {
			return nil, err
		}
		all = append(all, SearchResult{ID: id, Distance: d})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Distance != all[j].Distance {
			return all[i].Distance < all[j].Distance
		}
		return all[i].ID < all[j].ID
	})
	if n < len(all) {
		all = all[:n]
	}

	if c.Metrics != nil {
		c.Metrics.RecordExactSearch(time.Since(start), len(all))
	}
	return all, nil
}

func toSearchResults(results []index.Result) []SearchResult {
	out := make([]SearchResult, len(results))
	for i, r := range results {
		out[i] = SearchResult{ID: r.ID, Distance: r.Distance}
	}
	return out
}

func applyRelevancy(results []SearchResult, relevancy *float32) []SearchResult {
	if relevancy == nil {
		return results
	}
	cutoff := *relevancy
	for i, r := range results {
		if r.Distance > cutoff {
			return results[:i]
		}
	}
	return results
}

func isEmptyErr(err error) bool {
	return errors.Is(err, index.ErrEmpty)
}
