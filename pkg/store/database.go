// Package store implements the persistence boundary: a Database is a
// directory holding one blob per collection, named by the caller. Each blob
// is written atomically (temp file, then rename) and gzip-compressed.
package store

import (
	"compress/gzip"
	"fmt"
	"os"
	"path/filepath"

	"github.com/proximadb/proximadb/pkg/collection"
	"github.com/proximadb/proximadb/pkg/observability"
)

const blobExtension = ".pxdb"

// Database is a directory of independently named collection blobs.
// New and Open are the same operation: opening a path that does not yet
// exist creates it and yields an empty database.
type Database struct {
	path string

	Logger *observability.Logger
}

// New opens or creates a database rooted at path.
func New(path string) (*Database, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("%w: open database at %q: %v", ErrIoError, path, err)
	}
	return &Database{path: path}, nil
}

// Open is an alias for New: opening a fresh directory never errors.
func Open(path string) (*Database, error) {
	return New(path)
}

func (db *Database) blobPath(name string) string {
	return filepath.Join(db.path, name+blobExtension)
}

// SaveCollection writes c's full state to disk under name, replacing any
// existing blob of the same name atomically.
func (db *Database) SaveCollection(name string, c *collection.Collection) error {
	tmpPath := db.blobPath(name) + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("%w: create temp blob for %q: %v", ErrIoError, name, err)
	}

	gz := gzip.NewWriter(f)
	if err := encodeCollection(gz, c); err != nil {
		_ = gz.Close()
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("encode collection %q: %w", name, err)
	}
	if err := gz.Close(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: flush blob for %q: %v", ErrIoError, name, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: close temp blob for %q: %v", ErrIoError, name, err)
	}

	if err := os.Rename(tmpPath, db.blobPath(name)); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: commit blob for %q: %v", ErrIoError, name, err)
	}

	if db.Logger != nil {
		db.Logger.Debug("saved collection", map[string]interface{}{"name": name})
	}
	return nil
}

// GetCollection loads the collection stored under name.
func (db *Database) GetCollection(name string) (*collection.Collection, error) {
	f, err := os.Open(db.blobPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, name)
		}
		return nil, fmt.Errorf("%w: open blob for %q: %v", ErrIoError, name, err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptBlob, err)
	}
	defer gz.Close()

	c, err := decodeCollection(gz)
	if err != nil {
		return nil, fmt.Errorf("decode collection %q: %w", name, err)
	}
	return c, nil
}

// DeleteCollection removes the blob stored under name.
func (db *Database) DeleteCollection(name string) error {
	if err := os.Remove(db.blobPath(name)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %q", ErrUnknownCollection, name)
		}
		return fmt.Errorf("%w: delete blob for %q: %v", ErrIoError, name, err)
	}
	return nil
}

// Len returns the number of collection blobs stored in the database.
func (db *Database) Len() int {
	entries, err := os.ReadDir(db.path)
	if err != nil {
		return 0
	}
	count := 0
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == blobExtension {
			count++
		}
	}
	return count
}

// IsEmpty reports whether the database holds no collections.
func (db *Database) IsEmpty() bool {
	return db.Len() == 0
}
