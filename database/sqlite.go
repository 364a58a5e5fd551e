package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	apperrors "chatbot/errors"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the conversation table in an embedded SQLite file, answers as JSON text.
type SQLiteStore struct {
	*sqlStore
}

// NewSQLiteStore opens a SQLite database at the given path.
// If path is ":memory:", uses an in-memory database held by a single connection.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, apperrors.StoreError("sqlite", fmt.Errorf("creating db directory: %w", err))
		}
	}

	dsn := path
	if path != ":memory:" {
		// writers take the lock at BEGIN and wait for each other instead of failing
		dsn += "?_pragma=busy_timeout(5000)&_txlock=immediate"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, apperrors.StoreError("open sqlite", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// Enable WAL mode for better concurrent read performance
	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
			db.Close()
			return nil, apperrors.StoreError("sqlite", fmt.Errorf("setting WAL mode: %w", err))
		}
	}

	return &SQLiteStore{sqlStore: &sqlStore{DB: db, d: sqliteDialect}}, nil
}

var sqliteDialect = dialect{
	name: "sqlite",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS conversation (
            question TEXT PRIMARY KEY,
            answers TEXT NOT NULL,
            version INTEGER NOT NULL,
            created_at TIMESTAMP NOT NULL,
            updated_at TIMESTAMP NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS conversation_clock (
            id INTEGER PRIMARY KEY CHECK (id = 1),
            version INTEGER NOT NULL
        )`,
		`INSERT OR IGNORE INTO conversation_clock (id, version)
            SELECT 1, COALESCE(MAX(version), 0) FROM conversation`,
	},
	get:        `SELECT answers FROM conversation WHERE question = ?1`,
	getVersion: `SELECT answers, version FROM conversation WHERE question = ?1`,
	upsert: `
		INSERT INTO conversation (question, answers, version, created_at, updated_at)
		VALUES (?1, ?2, ?4, ?3, ?3)
		ON CONFLICT (question) DO UPDATE
		SET answers = excluded.answers, version = excluded.version, updated_at = excluded.updated_at
	`,
	insertNew: `
		INSERT INTO conversation (question, answers, version, created_at, updated_at)
		VALUES (?1, ?2, ?4, ?3, ?3)
		ON CONFLICT (question) DO NOTHING
	`,
	updateIfVer: `
		UPDATE conversation SET answers = ?2, version = ?5, updated_at = ?3
		WHERE question = ?1 AND version = ?4
	`,
	nextVersion: `UPDATE conversation_clock SET version = version + 1 WHERE id = 1 RETURNING version`,
	del:         `DELETE FROM conversation WHERE question = ?1`,
	delIfVer:    `DELETE FROM conversation WHERE question = ?1 AND version = ?2`,
	scan:        `SELECT question FROM conversation ORDER BY rowid`,
	arrayArg:    func(a []string) any { return jsonStringArray{src: a} },
	arrayDest:   func(a *[]string) any { return jsonStringArray{dst: a} },
}
