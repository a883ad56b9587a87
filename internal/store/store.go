// Package store persists the two named snapshots (A and B) in SQLite.
package store

import (
	"database/sql"
	"time"

	"github.com/hazyhaar/slotdiff/dbopen"
	"github.com/hazyhaar/slotdiff/idgen"
)

// Store is the snapshot database handle.
type Store struct {
	DB  *sql.DB
	ids idgen.Generator
	now func() time.Time
}

// Open opens (or creates) the snapshot database at path and applies the
// schema.
func Open(path string, opts ...dbopen.Option) (*Store, error) {
	allOpts := append([]dbopen.Option{
		dbopen.WithMkdirAll(),
		dbopen.WithSchema(Schema),
	}, opts...)

	db, err := dbopen.Open(path, allOpts...)
	if err != nil {
		return nil, err
	}
	return New(db), nil
}

// New wraps a database that already carries the schema.
func New(db *sql.DB) *Store {
	return &Store{DB: db, ids: idgen.Snapshot, now: time.Now}
}

// Close closes the database.
func (s *Store) Close() error {
	return s.DB.Close()
}
