package models

import "sync"

// ActivityStore holds the authoritative activity list mirrored from the
// backend, newest check-in first. Refreshes replace the list wholesale;
// a monotonic generation counter fences out responses that arrive after
// a newer fetch has already landed.
type ActivityStore struct {
	mu      sync.RWMutex
	records []ActivityRecord
	issued  uint64
	applied uint64
	closed  bool
}

func NewActivityStore() *ActivityStore {
	return &ActivityStore{}
}

// NextGeneration issues the fencing token for a fetch about to start.
func (s *ActivityStore) NextGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// Replace swaps in a fresh snapshot. It reports false when the snapshot
// was discarded, either because a newer one already landed or because
// the store has been closed.
func (s *ActivityStore) Replace(gen uint64, records []ActivityRecord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen <= s.applied {
		return false
	}
	s.applied = gen
	s.records = records
	return true
}

func (s *ActivityStore) Snapshot() []ActivityRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ActivityRecord, len(s.records))
	copy(out, s.records)
	return out
}

func (s *ActivityStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Remove takes a record out by id for an optimistic delete and returns
// it with its position so a failed backend call can put it back.
func (s *ActivityStore) Remove(id FlexID) (ActivityRecord, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ActivityRecord{}, 0, false
	}
	for i, r := range s.records {
		if r.ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return r, i, true
		}
	}
	return ActivityRecord{}, 0, false
}

// Restore reinserts a record removed by Remove at its original index.
func (s *ActivityStore) Restore(rec ActivityRecord, idx int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if idx < 0 {
		idx = 0
	}
	if idx > len(s.records) {
		idx = len(s.records)
	}
	s.records = append(s.records[:idx], append([]ActivityRecord{rec}, s.records[idx:]...)...)
}

// Close makes all further mutations no-ops. Reads keep working so a
// view being rendered during teardown still sees the last snapshot.
func (s *ActivityStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}
