package store

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/proximadb/proximadb/pkg/collection"
	"github.com/proximadb/proximadb/pkg/config"
	"github.com/proximadb/proximadb/pkg/index"
	"github.com/proximadb/proximadb/pkg/record"
	"github.com/proximadb/proximadb/pkg/vector"
)

// blobMagic identifies a proximadb collection blob.
var blobMagic = [4]byte{'P', 'X', 'D', 'B'}

// blobVersion is the only version this build can decode. Bumping it is a
// breaking change to the on-disk layout.
const blobVersion uint32 = 1

var byteOrder = binary.LittleEndian

// encodeCollection writes c's full state in the order: header (magic,
// version, dimension, metric, config), ID counter, entry point, max layer,
// record map entries, then per-node adjacency. Every numeric field is little-endian; every
// float is IEEE-754 binary32.
func encodeCollection(w io.Writer, c *collection.Collection) error {
	bw := bufio.NewWriter(w)
	state := c.State()

	if _, err := bw.Write(blobMagic[:]); err != nil {
		return err
	}
	if err := writeUint32(bw, blobVersion); err != nil {
		return err
	}
	if err := writeUint32(bw, uint32(state.Dimension)); err != nil {
		return err
	}
	if err := writeString(bw, string(state.Config.Distance)); err != nil {
		return err
	}
	if err := writeUint32(bw, uint32(state.Config.EfConstruction)); err != nil {
		return err
	}
	if err := writeUint32(bw, uint32(state.Config.EfSearch)); err != nil {
		return err
	}
	if err := writeFloat32(bw, float32(state.Config.Ml)); err != nil {
		return err
	}
	if err := writeUint32(bw, uint32(state.NextID)); err != nil {
		return err
	}
	if err := writeUint32(bw, uint32(state.EntryPoint)); err != nil {
		return err
	}
	if err := writeUint32(bw, uint32(int32(state.MaxLayer))); err != nil {
		return err
	}

	if err := writeUint32(bw, uint32(len(state.Records))); err != nil {
		return err
	}
	for _, id := range sortedRecordIDs(state.Records) {
		rec := state.Records[id]
		if err := writeUint32(bw, uint32(id)); err != nil {
			return err
		}
		if err := writeVector(bw, rec.Vector); err != nil {
			return err
		}
		if err := writeBytes(bw, rec.Payload); err != nil {
			return err
		}
	}

	if err := writeUint32(bw, uint32(len(state.Nodes))); err != nil {
		return err
	}
	for _, n := range state.Nodes {
		if err := writeUint32(bw, uint32(n.ID)); err != nil {
			return err
		}
		if err := writeUint32(bw, uint32(n.Level)); err != nil {
			return err
		}
		if err := writeVector(bw, n.Vector); err != nil {
			return err
		}
		if err := writeUint32(bw, uint32(len(n.Neighbors))); err != nil {
			return err
		}
		for _, layerNeighbors := range n.Neighbors {
			if err := writeUint32(bw, uint32(len(layerNeighbors))); err != nil {
				return err
			}
			for _, neighborID := range layerNeighbors {
				if err := writeUint32(bw, uint32(neighborID)); err != nil {
					return err
				}
			}
		}
	}

	return bw.Flush()
}

// decodeCollection reads a blob written by encodeCollection and rebuilds
// the collection it describes.
func decodeCollection(r io.Reader) (*collection.Collection, error) {
	br := bufio.NewReader(r)

	var magic [4]byte
	if _, err := io.ReadFull(br, magic[:]); err != nil {
		return nil, wrapReadErr(err)
	}
	if magic != blobMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrCorruptBlob)
	}

	version, err := readUint32(br)
	if err != nil {
		return nil, err
	}
	if version != blobVersion {
		return nil, fmt.Errorf("%w: blob is version %d, this build reads version %d", ErrIncompatibleVersion, version, blobVersion)
	}

	dimension, err := readUint32(br)
	if err != nil {
		return nil, err
	}
	metric, err := readString(br)
	if err != nil {
		return nil, err
	}
	efConstruction, err := readUint32(br)
	if err != nil {
		return nil, err
	}
	efSearch, err := readUint32(br)
	if err != nil {
		return nil, err
	}
	ml, err := readFloat32(br)
	if err != nil {
		return nil, err
	}
	cfg, err := config.New(int(efConstruction), int(efSearch), float64(ml), vector.Metric(metric))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptBlob, err)
	}

	nextID, err := readUint32(br)
	if err != nil {
		return nil, err
	}
	entryPoint, err := readUint32(br)
	if err != nil {
		return nil, err
	}
	rawMaxLayer, err := readUint32(br)
	if err != nil {
		return nil, err
	}
	maxLayer := int(int32(rawMaxLayer))

	recordCount, err := readUint32(br)
	if err != nil {
		return nil, err
	}
	records := make(map[record.VectorID]record.Record, recordCount)
	for i := uint32(0); i < recordCount; i++ {
		id, err := readUint32(br)
		if err != nil {
			return nil, err
		}
		v, err := readVector(br)
		if err != nil {
			return nil, err
		}
		payload, err := readBytes(br)
		if err != nil {
			return nil, err
		}
		records[record.VectorID(id)] = record.New(v, record.Payload(payload))
	}

	nodeCount, err := readUint32(br)
	if err != nil {
		return nil, err
	}
	nodes := make([]index.NodeState, nodeCount)
	for i := uint32(0); i < nodeCount; i++ {
		id, err := readUint32(br)
		if err != nil {
			return nil, err
		}
		level, err := readUint32(br)
		if err != nil {
			return nil, err
		}
		v, err := readVector(br)
		if err != nil {
			return nil, err
		}
		layerCount, err := readUint32(br)
		if err != nil {
			return nil, err
		}
		neighbors := make([][]record.VectorID, layerCount)
		for layer := uint32(0); layer < layerCount; layer++ {
			n, err := readUint32(br)
			if err != nil {
				return nil, err
			}
			ids := make([]record.VectorID, n)
			for j := uint32(0); j < n; j++ {
				neighborID, err := readUint32(br)
				if err != nil {
					return nil, err
				}
				ids[j] = record.VectorID(neighborID)
			}
			neighbors[layer] = ids
		}
		nodes[i] = index.NodeState{
			ID:        record.VectorID(id),
			Vector:    v,
			Level:     int(level),
			Neighbors: neighbors,
		}
	}

	return collection.Restore(collection.State{
		Config:     cfg,
		Dimension:  int(dimension),
		NextID:     record.VectorID(nextID),
		Records:    records,
		EntryPoint: record.VectorID(entryPoint),
		MaxLayer:   maxLayer,
		Nodes:      nodes,
	})
}

func sortedRecordIDs(records map[record.VectorID]record.Record) []record.VectorID {
	ids := make([]record.VectorID, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
	return ids
}

// wrapReadErr distinguishes a blob that ends early or is otherwise
// malformed (ErrCorruptBlob) from a genuine failure reading the
// underlying stream, e.g. a disk read error (ErrIoError).
func wrapReadErr(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %v", ErrCorruptBlob, err)
	}
	return fmt.Errorf("%w: %v", ErrIoError, err)
}

func writeUint32(w io.Writer, v uint32) error {
	var buf [4]byte
	byteOrder.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func readUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, wrapReadErr(err)
	}
	return byteOrder.Uint32(buf[:]), nil
}

func writeFloat32(w io.Writer, f float32) error {
	return writeUint32(w, math.Float32bits(f))
}

func readFloat32(r io.Reader) (float32, error) {
	bits, err := readUint32(r)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

func writeBytes(w io.Writer, b []byte) error {
	if err := writeUint32(w, uint32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func readBytes(r io.Reader) ([]byte, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, wrapReadErr(err)
	}
	return buf, nil
}

func writeString(w io.Writer, s string) error {
	return writeBytes(w, []byte(s))
}

func readString(r io.Reader) (string, error) {
	b, err := readBytes(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func writeVector(w io.Writer, v vector.Vector) error {
	if err := writeUint32(w, uint32(v.Len())); err != nil {
		return err
	}
	for _, f := range v {
		if err := writeFloat32(w, f); err != nil {
			return err
		}
	}
	return nil
}

func readVector(r io.Reader) (vector.Vector, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	values := make([]float32, n)
	for i := range values {
		f, err := readFloat32(r)
		if err != nil {
			return nil, err
		}
		values[i] = f
	}
	return vector.New(values), nil
}
