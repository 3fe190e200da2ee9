// Package state persists the task identity mapping and the last-observed
// cloud task states between sync passes.
//
// Two JSON documents back the store: task_mapping.json, keyed by the
// Things3 task UUID, and sync_state.json, keyed by the Google task ID
// plus a last-pass timestamp. Both load as empty on first run. A corrupt
// file is a fatal error: falling back to an empty state would recreate
// every task as a duplicate on the next pass.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"thingsync/internal/canon"
)

// ErrCorrupt marks an unreadable state file.
var ErrCorrupt = errors.New("corrupt state file")

// MappingEntry links a Things3 task to its Google Tasks counterpart.
type MappingEntry struct {
	GoogleID   string `json:"google_id"`
	Title      string `json:"title"`
	LastSynced string `json:"last_synced,omitempty"`
}

// Provisional reports whether the entry was created but never confirmed
// by a completed sync pass. Provisional entries are protected from
// orphan pruning.
func (e MappingEntry) Provisional() bool {
	return e.LastSynced == ""
}

// TaskState is the last-observed state of a cloud task.
type TaskState struct {
	Status  string `json:"status"`
	Due     string `json:"due,omitempty"`
	Title   string `json:"title,omitempty"`
	Updated string `json:"updated,omitempty"`
}

// syncState is the on-disk shape of sync_state.json.
type syncState struct {
	LastSync   string               `json:"last_sync"`
	TaskStates map[string]TaskState `json:"task_states"`
}

// Store holds both documents in memory for the duration of a pass.
type Store struct {
	mappingPath string
	statePath   string

	mapping    map[string]MappingEntry // Things UUID -> entry
	taskStates map[string]TaskState    // Google task ID -> observed state
	lastSync   string
}

// Load reads both state files, returning an empty store when neither
// exists yet. An unreadable or unparsable file returns an error wrapping
// ErrCorrupt; callers must treat that as fatal.
func Load(mappingPath, statePath string) (*Store, error) {
	s := &Store{
		mappingPath: mappingPath,
		statePath:   statePath,
		mapping:     make(map[string]MappingEntry),
		taskStates:  make(map[string]TaskState),
	}

	if err := loadJSON(mappingPath, &s.mapping); err != nil {
		return nil, err
	}

	var ss syncState
	if err := loadJSON(statePath, &ss); err != nil {
		return nil, err
	}
	if ss.TaskStates != nil {
		s.taskStates = ss.TaskStates
	}
	s.lastSync = ss.LastSync

	return s, nil
}

func loadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	return nil
}

// Save writes both documents with write-temp-then-rename so a crash
// mid-write never leaves a half-written file for the next pass.
func (s *Store) Save() error {
	if err := writeAtomic(s.mappingPath, s.mapping); err != nil {
		return err
	}
	return writeAtomic(s.statePath, syncState{
		LastSync:   s.lastSync,
		TaskStates: s.taskStates,
	})
}

func writeAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// Mapping returns the entry for a Things UUID.
func (s *Store) Mapping(localID string) (MappingEntry, bool) {
	e, ok := s.mapping[localID]
	return e, ok
}

// SetMapping creates or replaces a mapping entry. A new entry starts
// provisional (no last_synced) until a pass confirms it.
func (s *Store) SetMapping(localID string, e MappingEntry) {
	s.mapping[localID] = e
}

// DeleteMapping removes a mapping entry.
func (s *Store) DeleteMapping(localID string) {
	delete(s.mapping, localID)
}

// ConfirmSynced stamps the entry's last_synced timestamp, promoting a
// provisional entry to a confirmed one.
func (s *Store) ConfirmSynced(localID string, now time.Time) {
	e, ok := s.mapping[localID]
	if !ok {
		return
	}
	e.LastSynced = now.Format(time.RFC3339)
	s.mapping[localID] = e
}

// FindByGoogleID returns the Things UUID mapped to a Google task ID.
func (s *Store) FindByGoogleID(googleID string) (string, bool) {
	if googleID == "" {
		return "", false
	}
	for localID, e := range s.mapping {
		if e.GoogleID == googleID {
			return localID, true
		}
	}
	return "", false
}

// FindByCanonTitle returns the Things UUID of a mapping entry whose
// recorded title canonicalizes to key.
func (s *Store) FindByCanonTitle(key string) (string, bool) {
	if key == "" {
		return "", false
	}
	for localID, e := range s.mapping {
		if canon.Title(e.Title) == key {
			return localID, true
		}
	}
	return "", false
}

// HasLocalID reports whether a Things UUID already has a mapping entry.
func (s *Store) HasLocalID(localID string) bool {
	_, ok := s.mapping[localID]
	return ok
}

// EachMapping calls fn for every mapping entry. fn must not mutate the
// store; collect IDs and mutate afterwards.
func (s *Store) EachMapping(fn func(localID string, e MappingEntry)) {
	for localID, e := range s.mapping {
		fn(localID, e)
	}
}

// MappingCount returns the number of mapping entries.
func (s *Store) MappingCount() int {
	return len(s.mapping)
}

// TaskState returns the last-observed state for a Google task ID.
func (s *Store) TaskState(googleID string) (TaskState, bool) {
	ts, ok := s.taskStates[googleID]
	return ts, ok
}

// SetTaskState overwrites the observed state for a Google task ID.
func (s *Store) SetTaskState(googleID string, ts TaskState) {
	s.taskStates[googleID] = ts
}

// DeleteTaskState removes the observed state for a Google task ID.
func (s *Store) DeleteTaskState(googleID string) {
	delete(s.taskStates, googleID)
}

// PruneTaskStates drops observed-state entries whose task ID was not
// seen in the given liveness set. Absence from the set is exactly the
// "deleted on the cloud side" signal, so stale entries must not survive
// the pass.
func (s *Store) PruneTaskStates(live map[string]struct{}) {
	for id := range s.taskStates {
		if _, ok := live[id]; !ok {
			delete(s.taskStates, id)
		}
	}
}

// LastSync returns the recorded end time of the previous pass.
func (s *Store) LastSync() string {
	return s.lastSync
}

// SetLastSync records the end time of the current pass.
func (s *Store) SetLastSync(now time.Time) {
	s.lastSync = now.Format(time.RFC3339)
}
