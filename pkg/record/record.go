package record

import (
	"encoding/binary"

	"github.com/proximadb/proximadb/pkg/vector"
)

// Payload is an opaque blob attached to a Record. A collection stores it
// verbatim and never interprets its contents.
type Payload []byte

// Record pairs a Vector with its Payload. The collection assigns its ID on
// insert; a Record carries no ID of its own.
type Record struct {
	Vector  vector.Vector
	Payload Payload
}

// New builds a Record from a vector and an arbitrary payload.
func New(v vector.Vector, payload Payload) Record {
	return Record{Vector: v, Payload: payload}
}

// Random builds a Record with a random Vector of the given dimension and an
// empty payload.
func Random(dimension int) Record {
	return Record{Vector: vector.Random(dimension)}
}

// ManyRandom builds n Records of the given dimension. Each Record's payload
// is its generation index (0..n-1) encoded as a little-endian uint32, so
// tests can recover which record a search result corresponds to.
func ManyRandom(dimension, n int) []Record {
	records := make([]Record, n)
	for i := range records {
		payload := make(Payload, 4)
		binary.LittleEndian.PutUint32(payload, uint32(i))
		records[i] = Record{Vector: vector.Random(dimension), Payload: payload}
	}
	return records
}

// ManyRandomSource is ManyRandom with a deterministic uniform-[0,1) source,
// for reproducible tests.
func ManyRandomSource(dimension, n int, next func() float64) []Record {
	records := make([]Record, n)
	for i := range records {
		payload := make(Payload, 4)
		binary.LittleEndian.PutUint32(payload, uint32(i))
		records[i] = Record{Vector: vector.RandomSource(dimension, next), Payload: payload}
	}
	return records
}

// Index decodes a payload produced by ManyRandom back into its generation
// index. It panics if payload is shorter than four bytes; it exists for
// tests, not for general payload interpretation.
func (p Payload) Index() uint32 {
	return binary.LittleEndian.Uint32(p)
}
