package index

import "errors"

// ErrDimensionMismatch is returned when a vector's length does not match
// the index's fixed dimension.
var ErrDimensionMismatch = errors.New("dimension mismatch")

// ErrUnknownID is returned when an operation names a VectorID the index
// does not hold.
var ErrUnknownID = errors.New("unknown id")

// ErrEmpty is returned by Search when the index holds no nodes.
var ErrEmpty = errors.New("index is empty")
