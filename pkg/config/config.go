// Package config defines the per-collection tuning parameters for the
// proximity graph index: beam widths, level-assignment normalization, and
// the distance metric.
package config

import (
	"errors"
	"fmt"

	"github.com/proximadb/proximadb/pkg/vector"
)

// ErrInvalidConfig is returned when a constructed Config has a
// non-positive ef_construction, ef_search, or ml.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds the tunable parameters of a collection's proximity graph.
type Config struct {
	// EfConstruction is the beam width used while inserting.
	EfConstruction int
	// EfSearch is the beam width used while querying.
	EfSearch int
	// Ml normalizes the exponential level-assignment distribution; larger
	// values yield taller graphs.
	Ml float64
	// Distance is the metric used for both construction and search.
	Distance vector.Metric
}

const (
	defaultEfConstruction = 40
	defaultEfSearch       = 15
	defaultMl             = 0.2885 // ~= 1/ln(16)
)

// New builds a Config from explicit values, validating them.
func New(efConstruction, efSearch int, ml float64, distance vector.Metric) (Config, error) {
	c := Config{
		EfConstruction: efConstruction,
		EfSearch:       efSearch,
		Ml:             ml,
		Distance:       distance,
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Default returns the default Config: ef_construction=40, ef_search=15,
// ml=0.2885, distance=euclidean.
func Default() Config {
	return Config{
		EfConstruction: defaultEfConstruction,
		EfSearch:       defaultEfSearch,
		Ml:             defaultMl,
		Distance:       vector.Euclidean,
	}
}

// CreateDefault is an alias for Default.
func CreateDefault() Config {
	return Default()
}

// Validate reports an error if any field holds a value the index cannot use:
// non-positive EfConstruction/EfSearch/Ml, or a Distance not recognized by
// vector.Func.
func (c Config) Validate() error {
	if c.EfConstruction <= 0 {
		return fmt.Errorf("%w: ef_construction must be positive, got %d", ErrInvalidConfig, c.EfConstruction)
	}
	if c.EfSearch <= 0 {
		return fmt.Errorf("%w: ef_search must be positive, got %d", ErrInvalidConfig, c.EfSearch)
	}
	if c.Ml <= 0 {
		return fmt.Errorf("%w: ml must be positive, got %v", ErrInvalidConfig, c.Ml)
	}
	if _, err := vector.Func(c.Distance); err != nil {
		return err
	}
	return nil
}

// DistanceFunc resolves the Config's Distance to its vector.DistanceFunc.
// Validate should be called (or assumed true) before relying on this not
// erroring.
func (c Config) DistanceFunc() (vector.DistanceFunc, error) {
	return vector.Func(c.Distance)
}
