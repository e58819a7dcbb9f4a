package collection

import "errors"

var (
	// ErrInvalidVectorDimension is returned when a record's vector length
	// does not match the collection's dimension.
	ErrInvalidVectorDimension = errors.New("invalid vector dimension")

	// ErrUnknownID is returned when an operation references a VectorID
	// that is not present in the collection.
	ErrUnknownID = errors.New("unknown vector id")
)
