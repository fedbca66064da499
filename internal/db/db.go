package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// connection pragmas are applied by the driver to every pooled connection.
var connPragmas = []string{
	"busy_timeout(5000)",
	"foreign_keys(1)",
}

// dsn builds the modernc DSN. Transactions begin IMMEDIATE so concurrent
// writers serialize on the write lock instead of failing on upgrade.
func dsn(path string) string {
	params := make([]string, 0, len(connPragmas)+1)
	for _, p := range connPragmas {
		params = append(params, "_pragma="+p)
	}
	params = append(params, "_txlock=immediate")
	return path + "?" + strings.Join(params, "&")
}

// OpenDB opens a SQLite database at the given path and runs migrations.
// MemoryPath opens an in-memory database pinned to a single connection so
// every caller sees the same data. File databases use WAL mode.
func OpenDB(path string) (*sql.DB, error) {
	if path != MemoryPath {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if path == MemoryPath {
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return db, nil
}
