package store

// Schema holds one row per snapshot side; saving a side replaces its row.
const Schema = `
CREATE TABLE IF NOT EXISTS snapshots (
    side        TEXT PRIMARY KEY CHECK (side IN ('snapshotA', 'snapshotB')),
    id          TEXT NOT NULL,
    url         TEXT NOT NULL DEFAULT '',
    taken_at    INTEGER NOT NULL,
    slot_count  INTEGER NOT NULL,
    data        TEXT NOT NULL,
    saved_at    INTEGER NOT NULL
);
`
