// Package store implements the "external database" collaborator of spec §6
// as a LevelDB-backed agent-configuration store: per-agent start
// parameters (start time, segment, lane, offset, initial speed; the trip
// chain is not stored) keyed by a google/uuid
// external id, the same way the teacher persists per-chunk/per-player state
// in its own goleveldb-backed world save (server/world/world.go references
// leveldb.ErrNotFound directly; the provider implementation itself,
// server/world/mcdb, wasn't part of the curated file set but the
// goleveldb dependency it pulls in is a direct teacher require, reused here
// for a key-value store rather than a chunk-column store).
package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/df-mc/goleveldb/leveldb"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a lookup key has no stored record.
var ErrNotFound = errors.New("store: not found")

// AgentRecord is the persisted, externally-keyed form of an agent's
// configuration, independent of its in-memory arena id.
type AgentRecord struct {
	StartTimeMs        int64  `json:"startTimeMs"`
	StartSegmentID     int64  `json:"startSegmentId"`
	StartLaneIndex     int    `json:"startLaneIndex"`
	SegmentStartOffset float64 `json:"segmentStartOffset"`
	InitialSpeed       float64 `json:"initialSpeed"`
}

// Store wraps a LevelDB database keyed by uuid.UUID.
type Store struct {
	db *leveldb.DB
}

// Open opens (creating if absent) the LevelDB database at path.
func Open(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put persists rec under id, overwriting any existing record.
func (s *Store) Put(id uuid.UUID, rec AgentRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("store: marshal %s: %w", id, err)
	}
	return s.db.Put(id[:], data, nil)
}

// Get retrieves the record stored under id.
func (s *Store) Get(id uuid.UUID) (AgentRecord, error) {
	data, err := s.db.Get(id[:], nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return AgentRecord{}, ErrNotFound
	}
	if err != nil {
		return AgentRecord{}, fmt.Errorf("store: get %s: %w", id, err)
	}
	var rec AgentRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return AgentRecord{}, fmt.Errorf("store: unmarshal %s: %w", id, err)
	}
	return rec, nil
}

// Delete removes the record stored under id, if any.
func (s *Store) Delete(id uuid.UUID) error {
	return s.db.Delete(id[:], nil)
}
