package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazyhaar/slotdiff/dbopen"
	"github.com/hazyhaar/slotdiff/schedule"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s := New(dbopen.OpenMemory(t, dbopen.WithSchema(Schema)))
	s.now = func() time.Time { return time.UnixMilli(1_700_000_500_000) }
	return s
}

func sample(text string) *schedule.Snapshot {
	return &schedule.Snapshot{
		Data: []schedule.Slot{
			{Type: schedule.KindTableCell, Row: 0, Col: 0, TableIndex: schedule.Int(0), Text: text, Color: "rgb(76, 175, 80)", Element: "td"},
			{Type: schedule.KindGridItem, Row: 0, Col: 1, Text: "Job", Color: "rgba(0, 0, 0, 0)", X: schedule.Float(10.5), Y: schedule.Float(20)},
		},
		Timestamp: 1_700_000_000_000,
		URL:       "http://plant.test/schedule",
	}
}

func TestSaveLoad(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	snap := sample("Mon")
	require.NoError(t, s.Save(ctx, schedule.SideA, snap))
	assert.Regexp(t, `^snap_[0-9a-f-]{36}$`, snap.ID)

	got, err := s.Load(ctx, schedule.SideA)
	require.NoError(t, err)
	assert.Equal(t, snap, got)

	_, err = s.Load(ctx, schedule.SideB)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSave_ReplacesWholesale(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, schedule.SideB, sample("old")))
	next := &schedule.Snapshot{Data: []schedule.Slot{}, Timestamp: 2, URL: "http://other.test/"}
	require.NoError(t, s.Save(ctx, schedule.SideB, next))

	got, err := s.Load(ctx, schedule.SideB)
	require.NoError(t, err)
	assert.Empty(t, got.Data)
	assert.NotNil(t, got.Data)
	assert.Equal(t, "http://other.test/", got.URL)
	assert.Equal(t, next.ID, got.ID)
}

func TestSave_UnknownSide(t *testing.T) {
	s := testStore(t)
	err := s.Save(context.Background(), schedule.Side("snapshotC"), sample("x"))
	assert.Error(t, err)
}

func TestSave_FailureLeavesSnapshotUntouched(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	_, err := s.DB.ExecContext(ctx, `DROP TABLE snapshots`)
	require.NoError(t, err)

	snap := sample("lost")
	require.Error(t, s.Save(ctx, schedule.SideA, snap))
	assert.Empty(t, snap.ID)
}

func TestSave_PresetID(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	snap := sample("Mon")
	snap.ID = "snap_0190f3a2-6c1e-7b4a-9d2e-5f8a1b3c4d5e"
	require.NoError(t, s.Save(ctx, schedule.SideA, snap))
	got, err := s.Load(ctx, schedule.SideA)
	require.NoError(t, err)
	assert.Equal(t, "snap_0190f3a2-6c1e-7b4a-9d2e-5f8a1b3c4d5e", got.ID)

	bad := sample("Tue")
	bad.ID = "snap_not-a-uuid"
	assert.Error(t, s.Save(ctx, schedule.SideB, bad))
	_, err = s.Load(ctx, schedule.SideB)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStatus(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	entries, err := s.Status(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, Entry{Side: schedule.SideA}, entries[0])
	assert.Equal(t, Entry{Side: schedule.SideB}, entries[1])

	require.NoError(t, s.Save(ctx, schedule.SideB, sample("Tue")))
	entries, err = s.Status(ctx)
	require.NoError(t, err)
	assert.False(t, entries[0].Saved)
	b := entries[1]
	assert.True(t, b.Saved)
	assert.Equal(t, 2, b.SlotCount)
	assert.Equal(t, int64(1_700_000_000_000), b.Timestamp)
	assert.Equal(t, int64(1_700_000_500_000), b.SavedAt)
	assert.Equal(t, "http://plant.test/schedule", b.URL)
}

func TestClear(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, schedule.SideA, sample("a")))
	require.NoError(t, s.Save(ctx, schedule.SideB, sample("b")))

	require.NoError(t, s.Clear(ctx))
	for _, side := range schedule.Sides {
		_, err := s.Load(ctx, side)
		assert.ErrorIs(t, err, ErrNotFound)
	}
	// Clearing an empty store is fine.
	require.NoError(t, s.Clear(ctx))
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "slotdiff.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(context.Background(), schedule.SideA, sample("persisted")))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Load(context.Background(), schedule.SideA)
	require.NoError(t, err)
	assert.Equal(t, "persisted", got.Data[0].Text)
}
