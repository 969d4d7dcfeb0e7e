package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storeRecords(ids ...string) []ActivityRecord {
	out := make([]ActivityRecord, 0, len(ids))
	for _, id := range ids {
		out = append(out, ActivityRecord{ID: FlexID(id)})
	}
	return out
}

func TestActivityStore_ReplaceAndSnapshot(t *testing.T) {
	s := NewActivityStore()
	gen := s.NextGeneration()

	assert.True(t, s.Replace(gen, storeRecords("1", "2")))
	assert.Equal(t, 2, s.Len())

	snap := s.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, FlexID("1"), snap[0].ID)
}

func TestActivityStore_SnapshotIsACopy(t *testing.T) {
	s := NewActivityStore()
	s.Replace(s.NextGeneration(), storeRecords("1"))

	snap := s.Snapshot()
	snap[0].ID = "mutated"

	assert.Equal(t, FlexID("1"), s.Snapshot()[0].ID)
}

func TestActivityStore_StaleGenerationDiscarded(t *testing.T) {
	s := NewActivityStore()

	genA := s.NextGeneration()
	genB := s.NextGeneration()

	// B's response lands first, then A's slow response arrives.
	require.True(t, s.Replace(genB, storeRecords("new")))
	assert.False(t, s.Replace(genA, storeRecords("old")))

	snap := s.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, FlexID("new"), snap[0].ID)
}

func TestActivityStore_SameGenerationDiscarded(t *testing.T) {
	s := NewActivityStore()
	gen := s.NextGeneration()

	require.True(t, s.Replace(gen, storeRecords("a")))
	assert.False(t, s.Replace(gen, storeRecords("b")))
}

func TestActivityStore_RemoveAndRestore(t *testing.T) {
	s := NewActivityStore()
	s.Replace(s.NextGeneration(), storeRecords("1", "2", "3"))

	rec, idx, ok := s.Remove("2")
	require.True(t, ok)
	assert.Equal(t, FlexID("2"), rec.ID)
	assert.Equal(t, 1, idx)
	assert.Equal(t, 2, s.Len())

	s.Restore(rec, idx)
	snap := s.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, FlexID("2"), snap[1].ID)
}

func TestActivityStore_RemoveUnknownID(t *testing.T) {
	s := NewActivityStore()
	s.Replace(s.NextGeneration(), storeRecords("1"))

	_, _, ok := s.Remove("9")
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())
}

func TestActivityStore_RestoreClampsIndex(t *testing.T) {
	s := NewActivityStore()
	s.Replace(s.NextGeneration(), storeRecords("1"))

	s.Restore(ActivityRecord{ID: "tail"}, 99)
	snap := s.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, FlexID("tail"), snap[1].ID)
}

func TestActivityStore_ClosedIgnoresMutations(t *testing.T) {
	s := NewActivityStore()
	s.Replace(s.NextGeneration(), storeRecords("1"))
	s.Close()

	assert.False(t, s.Replace(s.NextGeneration(), storeRecords("2", "3")))

	_, _, ok := s.Remove("1")
	assert.False(t, ok)

	s.Restore(ActivityRecord{ID: "x"}, 0)

	// Reads still serve the last snapshot.
	snap := s.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, FlexID("1"), snap[0].ID)
}
