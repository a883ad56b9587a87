package dbopen_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hazyhaar/slotdiff/dbopen"
)

func TestOpen_Pragmas(t *testing.T) {
	db := dbopen.OpenMemory(t)

	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatal(err)
	}
	// :memory: reports "memory" even though the WAL pragma ran.
	if journalMode != "wal" && journalMode != "memory" {
		t.Fatalf("journal_mode = %q, want wal or memory", journalMode)
	}

	for pragma, want := range map[string]int{
		"foreign_keys": 1,
		"synchronous":  1, // NORMAL
		"busy_timeout": 5000,
	} {
		var got int
		if err := db.QueryRow("PRAGMA " + pragma).Scan(&got); err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Fatalf("%s = %d, want %d", pragma, got, want)
		}
	}
}

func TestOptions(t *testing.T) {
	db := dbopen.OpenMemory(t, dbopen.WithBusyTimeout(250), dbopen.WithSynchronous("FULL"))

	var busy, sync int
	if err := db.QueryRow("PRAGMA busy_timeout").Scan(&busy); err != nil {
		t.Fatal(err)
	}
	if err := db.QueryRow("PRAGMA synchronous").Scan(&sync); err != nil {
		t.Fatal(err)
	}
	if busy != 250 || sync != 2 {
		t.Fatalf("busy_timeout=%d synchronous=%d, want 250 and 2 (FULL)", busy, sync)
	}
}

func TestWithSchema(t *testing.T) {
	db := dbopen.OpenMemory(t, dbopen.WithSchema(`CREATE TABLE snapshots (side TEXT PRIMARY KEY, data TEXT);`))

	if _, err := db.Exec(`INSERT INTO snapshots (side, data) VALUES ('snapshotA', '[]')`); err != nil {
		t.Fatalf("insert into schema-created table: %v", err)
	}
	var data string
	if err := db.QueryRow(`SELECT data FROM snapshots WHERE side = 'snapshotA'`).Scan(&data); err != nil {
		t.Fatal(err)
	}
	if data != "[]" {
		t.Fatalf("data = %q", data)
	}
}

func TestWithSchema_Invalid(t *testing.T) {
	if _, err := dbopen.Open(dbopen.Memory, dbopen.WithSchema("CREATE TABLOID x")); err == nil {
		t.Fatal("expected schema error")
	}
}

func TestWithMkdirAll(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "state", "deep", "slotdiff.db")

	db, err := dbopen.Open(dbPath, dbopen.WithMkdirAll())
	if err != nil {
		t.Fatalf("open with mkdirall: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(filepath.Dir(dbPath)); err != nil {
		t.Fatalf("directory not created: %v", err)
	}
}
