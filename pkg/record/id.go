// Package record defines the (Vector, Payload) pair a Collection stores and
// the VectorID that names it.
package record

import "math"

// VectorID identifies a Record within a single collection. IDs are assigned
// by a monotonically increasing counter starting at 0 and are never reused,
// even after the record they named is deleted.
type VectorID uint32

// invalidID is the sentinel returned by operations that have no ID to give
// (e.g. the entry point of an empty graph). It is distinct from every live
// ID: valid IDs are handed out starting at 0 by a counter that would need
// roughly 4 billion inserts to reach it.
const invalidID VectorID = math.MaxUint32

// InvalidVectorID is the sentinel VectorID. IsValid reports false for it and
// for no other value.
var InvalidVectorID = invalidID

// IsValid reports whether id is a real, assignable identifier rather than
// the sentinel.
func (id VectorID) IsValid() bool {
	return id != invalidID
}
