package store_test

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/simobility/shortterm/sim/store"
)

func TestPutGetRoundTrips(t *testing.T) {
	dir := t.TempDir()
	s, err := store.Open(filepath.Join(dir, "agents.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	id := uuid.New()
	rec := store.AgentRecord{StartTimeMs: 5000, StartSegmentID: 3, InitialSpeed: 11.2}
	if err := s.Put(id, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != rec {
		t.Fatalf("got %+v, want %+v", got, rec)
	}
}

func TestGetMissingReturnsErrNotFound(t *testing.T) {
	dir := t.TempDir()
	s, err := store.Open(filepath.Join(dir, "agents.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if _, err := s.Get(uuid.New()); err != store.ErrNotFound {
		t.Fatalf("Get on missing id = %v, want ErrNotFound", err)
	}
}

func TestDeleteRemovesRecord(t *testing.T) {
	dir := t.TempDir()
	s, err := store.Open(filepath.Join(dir, "agents.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	id := uuid.New()
	if err := s.Put(id, store.AgentRecord{StartTimeMs: 1}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Delete(id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(id); err != store.ErrNotFound {
		t.Fatalf("Get after Delete = %v, want ErrNotFound", err)
	}
}
