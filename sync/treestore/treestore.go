// Package treestore implements the TreeStore (spec.md §4.1 / §6): a
// durable creator -> seq map backed by SQLite, used only to survive
// restarts — SyncTree is the source of truth while the engine runs.
//
// Grounded on go-mizu-mizu's sqlite blueprint stores (store/sqlite),
// which open modernc.org/sqlite with WAL journaling and a busy timeout;
// spec.md additionally requires synchronous=OFF, which we fold into the
// same DSN pragma list.
package treestore

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/WeiqiJust/NDN-Repo/sync/syncerr"
	"github.com/WeiqiJust/NDN-Repo/sync/tree"
)

const schema = `
CREATE TABLE IF NOT EXISTS NDN_REPO_SYNC (
	name BLOB PRIMARY KEY,
	seq  INTEGER NOT NULL
);`

// Store is the SQLite-backed TreeStore.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at <dbDir>/ndn_repo_sync.db.
func Open(dbDir string) (*Store, error) {
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, &syncerr.StorageError{Op: "mkdir", Err: err}
	}
	path := filepath.Join(dbDir, "ndn_repo_sync.db")
	dsn := fmt.Sprintf("%s?_pragma=synchronous(OFF)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, &syncerr.StorageError{Op: "open", Err: err}
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &syncerr.StorageError{Op: "open", Err: err}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, &syncerr.StorageError{Op: "prepare", Err: err}
	}
	return &Store{db: db}, nil
}

// OpenReadOnly opens the database at <dbDir>/ndn_repo_sync.db for
// inspection without creating it or taking a write lock, grounded on
// the original's repo-tree tool opening the same file with
// SQLITE_OPEN_READONLY. Returns a StorageError if the file doesn't
// already exist.
func OpenReadOnly(dbDir string) (*Store, error) {
	path := filepath.Join(dbDir, "ndn_repo_sync.db")
	if _, err := os.Stat(path); err != nil {
		return nil, &syncerr.StorageError{Op: "stat", Err: err}
	}
	dsn := fmt.Sprintf("%s?mode=ro&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, &syncerr.StorageError{Op: "open", Err: err}
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &syncerr.StorageError{Op: "open", Err: err}
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Insert adds a brand-new creator at seq. Fails with StorageError{Op:
// "constraint"} if name already exists (spec.md's "duplicate insert").
func (s *Store) Insert(name string, seq uint64) error {
	_, err := s.db.Exec(`INSERT INTO NDN_REPO_SYNC(name, seq) VALUES (?, ?)`, name, seq)
	if err != nil {
		return &syncerr.StorageError{Op: "constraint", Err: err}
	}
	return nil
}

// Update sets an existing creator's seq. Fails with StorageError{Op:
// "changes==0"} if name was not present.
func (s *Store) Update(name string, seq uint64) error {
	res, err := s.db.Exec(`UPDATE NDN_REPO_SYNC SET seq = ? WHERE name = ?`, seq, name)
	if err != nil {
		return &syncerr.StorageError{Op: "update", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &syncerr.StorageError{Op: "update", Err: err}
	}
	if n == 0 {
		return &syncerr.StorageError{Op: "changes==0", Err: errors.New("no row for " + name)}
	}
	return nil
}

// Erase removes a creator's row, if present. Idempotent.
func (s *Store) Erase(name string) error {
	_, err := s.db.Exec(`DELETE FROM NDN_REPO_SYNC WHERE name = ?`, name)
	if err != nil {
		return &syncerr.StorageError{Op: "erase", Err: err}
	}
	return nil
}

// Read returns the seq stored for name, and whether it was present.
func (s *Store) Read(name string) (uint64, bool, error) {
	var seq uint64
	err := s.db.QueryRow(`SELECT seq FROM NDN_REPO_SYNC WHERE name = ?`, name).Scan(&seq)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return 0, false, nil
	case err != nil:
		return 0, false, &syncerr.StorageError{Op: "read", Err: err}
	}
	return seq, true, nil
}

// Size returns the number of rows in the table.
func (s *Store) Size() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM NDN_REPO_SYNC`).Scan(&n); err != nil {
		return 0, &syncerr.StorageError{Op: "size", Err: err}
	}
	return n, nil
}

// Enumerate invokes f(name, seq) for every row, in no particular order.
func (s *Store) Enumerate(f func(name string, seq uint64)) error {
	rows, err := s.db.Query(`SELECT name, seq FROM NDN_REPO_SYNC`)
	if err != nil {
		return &syncerr.StorageError{Op: "enumerate", Err: err}
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		var seq uint64
		if err := rows.Scan(&name, &seq); err != nil {
			return &syncerr.StorageError{Op: "enumerate", Err: err}
		}
		f(name, seq)
	}
	return rows.Err()
}

// ReplayInto repopulates t with every row this store holds, on startup.
// Every stored row is replayed regardless of whether t already knows the
// creator — see tree.Tree.Restore's doc comment for the bug this avoids.
func (s *Store) ReplayInto(t *tree.Tree) error {
	return s.Enumerate(func(name string, seq uint64) {
		t.Restore(name, seq)
	})
}

// Upsert inserts name if absent, otherwise updates it — the shape every
// SyncTree.Update call needs, without forcing engine code to distinguish
// the two TreeStore error paths itself.
func (s *Store) Upsert(name string, seq uint64) error {
	_, present, err := s.Read(name)
	if err != nil {
		return err
	}
	if present {
		return s.Update(name, seq)
	}
	return s.Insert(name, seq)
}
