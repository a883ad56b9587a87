package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hazyhaar/slotdiff/idgen"
	"github.com/hazyhaar/slotdiff/schedule"
)

// ErrNotFound is returned when a side has no saved snapshot.
var ErrNotFound = errors.New("store: snapshot not found")

// Entry describes a saved side without its slot data.
type Entry struct {
	Side      schedule.Side `json:"side"`
	Saved     bool          `json:"saved"`
	ID        string        `json:"id,omitempty"`
	URL       string        `json:"url,omitempty"`
	Timestamp int64         `json:"timestamp,omitempty"` // capture time, epoch ms
	SlotCount int           `json:"slotCount"`
	SavedAt   int64         `json:"savedAt,omitempty"`
}

// Save writes snap under side, replacing any previous snapshot there.
// An empty ID is assigned once the write succeeds; a preset ID must be a
// UUID, optionally prefixed.
func (s *Store) Save(ctx context.Context, side schedule.Side, snap *schedule.Snapshot) error {
	if side != schedule.SideA && side != schedule.SideB {
		return fmt.Errorf("store: save: unknown side %q", side)
	}
	data, err := schedule.MarshalSlots(snap.Data)
	if err != nil {
		return fmt.Errorf("store: save: encode slots: %w", err)
	}
	id := snap.ID
	if id == "" {
		id = s.ids()
	} else if _, err := idgen.Parse(id); err != nil {
		return fmt.Errorf("store: save: %w", err)
	}

	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO snapshots (side, id, url, taken_at, slot_count, data, saved_at)
		VALUES (?,?,?,?,?,?,?)
		ON CONFLICT(side) DO UPDATE SET
			id = excluded.id,
			url = excluded.url,
			taken_at = excluded.taken_at,
			slot_count = excluded.slot_count,
			data = excluded.data,
			saved_at = excluded.saved_at`,
		string(side), id, snap.URL, snap.Timestamp, len(snap.Data), string(data), s.now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("store: save %s: %w", side, err)
	}
	snap.ID = id
	return nil
}

// Load returns the snapshot saved under side, or ErrNotFound.
func (s *Store) Load(ctx context.Context, side schedule.Side) (*schedule.Snapshot, error) {
	var (
		snap schedule.Snapshot
		data string
	)
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, url, taken_at, data FROM snapshots WHERE side = ?`, string(side)).Scan(
		&snap.ID, &snap.URL, &snap.Timestamp, &data,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: load %s: %w", side, err)
	}
	snap.Data, err = schedule.UnmarshalSlots([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("store: load %s: decode slots: %w", side, err)
	}
	if snap.Data == nil {
		snap.Data = []schedule.Slot{}
	}
	return &snap, nil
}

// Status lists both sides in A, B order, saved or not.
func (s *Store) Status(ctx context.Context) ([]Entry, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT side, id, url, taken_at, slot_count, saved_at FROM snapshots`)
	if err != nil {
		return nil, fmt.Errorf("store: status: %w", err)
	}
	defer rows.Close()

	saved := make(map[schedule.Side]Entry, 2)
	for rows.Next() {
		var (
			e    Entry
			side string
		)
		if err := rows.Scan(&side, &e.ID, &e.URL, &e.Timestamp, &e.SlotCount, &e.SavedAt); err != nil {
			return nil, fmt.Errorf("store: status: scan: %w", err)
		}
		e.Side, e.Saved = schedule.Side(side), true
		saved[e.Side] = e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: status: %w", err)
	}

	out := make([]Entry, 0, len(schedule.Sides))
	for _, side := range schedule.Sides {
		e, ok := saved[side]
		if !ok {
			e = Entry{Side: side}
		}
		out = append(out, e)
	}
	return out, nil
}

// Clear removes both snapshots.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, `DELETE FROM snapshots`); err != nil {
		return fmt.Errorf("store: clear: %w", err)
	}
	return nil
}
