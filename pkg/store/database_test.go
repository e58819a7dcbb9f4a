package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/proximadb/proximadb/pkg/collection"
	"github.com/proximadb/proximadb/pkg/config"
	"github.com/proximadb/proximadb/pkg/record"
	"github.com/proximadb/proximadb/pkg/vector"
)

const (
	testName      = "vectors"
	testDimension = 32
	testLen       = 50
)

func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !db.IsEmpty() {
		t.Fatal("expected a fresh database to be empty")
	}
	return db
}

func newTestCollectionWithEntries(t *testing.T) *collection.Collection {
	t.Helper()
	records := record.ManyRandom(testDimension, testLen)
	c, err := collection.FromRecords(config.Default(), records)
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	return c
}

func TestOpenOnFreshDirectoryIsEmpty(t *testing.T) {
	db := newTestDatabase(t)
	if !db.IsEmpty() {
		t.Error("expected fresh database to report empty")
	}
}

func TestOpenIsAliasForNew(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !db.IsEmpty() {
		t.Error("expected freshly opened database to be empty")
	}
}

func TestSaveAndGetCollectionRoundTrip(t *testing.T) {
	db := newTestDatabase(t)
	c := newTestCollectionWithEntries(t)

	if err := db.SaveCollection(testName, c); err != nil {
		t.Fatalf("SaveCollection: %v", err)
	}
	if db.IsEmpty() {
		t.Error("expected database to be non-empty after save")
	}
	if db.Len() != 1 {
		t.Errorf("expected len 1, got %d", db.Len())
	}

	loaded, err := db.GetCollection(testName)
	if err != nil {
		t.Fatalf("GetCollection: %v", err)
	}
	if loaded.Len() != testLen {
		t.Errorf("expected loaded collection len %d, got %d", testLen, loaded.Len())
	}

	query := vector.Random(testDimension)
	want, err := c.Search(query, 5)
	if err != nil {
		t.Fatalf("search on original: %v", err)
	}
	got, err := loaded.Search(query, 5)
	if err != nil {
		t.Fatalf("search on loaded: %v", err)
	}
	if len(want) != len(got) {
		t.Fatalf("result count mismatch: %d vs %d", len(want), len(got))
	}
	for i := range want {
		if want[i].ID != got[i].ID || want[i].Distance != got[i].Distance {
			t.Errorf("result %d mismatch: want %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestSaveSecondCollectionIncrementsLenIndependently(t *testing.T) {
	db := newTestDatabase(t)
	first := newTestCollectionWithEntries(t)
	if err := db.SaveCollection(testName, first); err != nil {
		t.Fatalf("SaveCollection: %v", err)
	}

	second, err := collection.New(config.Default())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := db.SaveCollection("test", second); err != nil {
		t.Fatalf("SaveCollection: %v", err)
	}

	if db.Len() != 2 {
		t.Errorf("expected len 2, got %d", db.Len())
	}
}

func TestGetUnknownCollectionFails(t *testing.T) {
	db := newTestDatabase(t)
	if _, err := db.GetCollection("missing"); !errors.Is(err, ErrUnknownCollection) {
		t.Errorf("expected ErrUnknownCollection, got %v", err)
	}
}

func TestDeleteCollection(t *testing.T) {
	db := newTestDatabase(t)
	c := newTestCollectionWithEntries(t)
	if err := db.SaveCollection(testName, c); err != nil {
		t.Fatalf("SaveCollection: %v", err)
	}

	if err := db.DeleteCollection(testName); err != nil {
		t.Fatalf("DeleteCollection: %v", err)
	}
	if !db.IsEmpty() {
		t.Error("expected database to be empty after deleting its only collection")
	}
}

func TestDeleteUnknownCollectionFails(t *testing.T) {
	db := newTestDatabase(t)
	if err := db.DeleteCollection("missing"); !errors.Is(err, ErrUnknownCollection) {
		t.Errorf("expected ErrUnknownCollection, got %v", err)
	}
}

// TestNewFailsWithIoError forces os.MkdirAll to fail for a reason other
// than a missing path: a regular file sitting where a directory component
// needs to be. That is a genuine filesystem failure, not a blob structure
// problem, so it must surface as ErrIoError.
func TestNewFailsWithIoError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := New(filepath.Join(blocker, "db")); !errors.Is(err, ErrIoError) {
		t.Errorf("expected ErrIoError, got %v", err)
	}
}

// TestSaveCollectionFailsWithIoError forces os.Create to fail the same way:
// the database's directory has been replaced by a file after New succeeded.
func TestSaveCollectionFailsWithIoError(t *testing.T) {
	dir := t.TempDir()
	db, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := os.RemoveAll(dir); err != nil {
		t.Fatalf("RemoveAll: %v", err)
	}
	if err := os.WriteFile(dir, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	c := newTestCollectionWithEntries(t)
	if err := db.SaveCollection(testName, c); !errors.Is(err, ErrIoError) {
		t.Errorf("expected ErrIoError, got %v", err)
	}
}
