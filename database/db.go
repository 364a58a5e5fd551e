package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "chatbot/errors"

	"github.com/lib/pq"
)

// dialect captures what differs between the SQL backends.
type dialect struct {
	name        string
	schema      []string
	get         string
	getVersion  string
	upsert      string
	insertNew   string
	updateIfVer string
	nextVersion string
	del         string
	delIfVer    string
	scan        string
	arrayArg    func([]string) any
	arrayDest   func(*[]string) any
}

// sqlStore implements VersionedStore over database/sql.
type sqlStore struct {
	DB *sql.DB
	d  dialect
}

// EnsureSchema creates the required tables if they do not already exist.
func (s *sqlStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range s.d.schema {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return apperrors.StoreError("ensure schema", fmt.Errorf("failed to execute schema statement: %w", err))
		}
	}
	return nil
}

func (s *sqlStore) Get(ctx context.Context, question string) (AnswerSet, error) {
	var answers []string
	err := s.DB.QueryRowContext(ctx, s.d.get, question).Scan(s.d.arrayDest(&answers))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return NewAnswerSet(), nil
		}
		return nil, apperrors.StoreError(s.d.name+" get", err)
	}
	return NewAnswerSet(answers...), nil
}

func (s *sqlStore) GetVersioned(ctx context.Context, question string) (AnswerSet, uint64, error) {
	var answers []string
	var version int64
	err := s.DB.QueryRowContext(ctx, s.d.getVersion, question).Scan(s.d.arrayDest(&answers), &version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return NewAnswerSet(), 0, nil
		}
		return nil, 0, apperrors.StoreError(s.d.name+" get versioned", err)
	}
	return NewAnswerSet(answers...), uint64(version), nil
}

func (s *sqlStore) Put(ctx context.Context, question string, answers AnswerSet) error {
	if answers.Len() == 0 {
		return apperrors.InvalidInputf("refusing to store empty answer set for %q", question)
	}
	now := time.Now().UTC()
	if _, err := s.writeVersioned(ctx, "put", s.d.upsert, question, s.d.arrayArg(answers.Sorted()), now); err != nil {
		return err
	}
	return nil
}

func (s *sqlStore) PutIfVersion(ctx context.Context, question string, answers AnswerSet, version uint64) error {
	if answers.Len() == 0 {
		return apperrors.InvalidInputf("refusing to store empty answer set for %q", question)
	}
	now := time.Now().UTC()
	var (
		res sql.Result
		err error
	)
	if version == 0 {
		res, err = s.writeVersioned(ctx, "conditional put", s.d.insertNew, question, s.d.arrayArg(answers.Sorted()), now)
	} else {
		res, err = s.writeVersioned(ctx, "conditional put", s.d.updateIfVer, question, s.d.arrayArg(answers.Sorted()), now, int64(version))
	}
	if err != nil {
		return err
	}
	return expectOneRow(res, question)
}

// writeVersioned allocates the next store-wide version and runs stmt with it
// appended as the last argument, both in one transaction. Versions never
// repeat, even for a question that was deleted and written again.
func (s *sqlStore) writeVersioned(ctx context.Context, op, stmt string, args ...any) (sql.Result, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.StoreError(s.d.name+" "+op, err)
	}
	defer tx.Rollback()

	var next int64
	if err := tx.QueryRowContext(ctx, s.d.nextVersion).Scan(&next); err != nil {
		return nil, apperrors.StoreError(s.d.name+" "+op, fmt.Errorf("allocate version: %w", err))
	}

	res, err := tx.ExecContext(ctx, stmt, append(args, next)...)
	if err != nil {
		return nil, apperrors.StoreError(s.d.name+" "+op, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, apperrors.StoreError(s.d.name+" "+op, err)
	}
	return res, nil
}

func (s *sqlStore) Delete(ctx context.Context, question string) error {
	if _, err := s.DB.ExecContext(ctx, s.d.del, question); err != nil {
		return apperrors.StoreError(s.d.name+" delete", err)
	}
	return nil
}

func (s *sqlStore) DeleteIfVersion(ctx context.Context, question string, version uint64) error {
	if version == 0 {
		return nil
	}
	res, err := s.DB.ExecContext(ctx, s.d.delIfVer, question, int64(version))
	if err != nil {
		return apperrors.StoreError(s.d.name+" conditional delete", err)
	}
	return expectOneRow(res, question)
}

func (s *sqlStore) ScanQuestions(ctx context.Context) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx, s.d.scan)
	if err != nil {
		return nil, apperrors.StoreError(s.d.name+" scan", err)
	}
	defer rows.Close()

	var questions []string
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, apperrors.StoreError(s.d.name+" scan", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.StoreError(s.d.name+" scan", err)
	}
	return questions, nil
}

func (s *sqlStore) Close() error {
	return s.DB.Close()
}

func expectOneRow(res sql.Result, question string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return apperrors.StoreError("rows affected", err)
	}
	if n == 0 {
		return apperrors.WrapErrorf(apperrors.ErrConflict, "question %q changed since it was read", question)
	}
	return nil
}

// PostgresStore keeps the conversation table in PostgreSQL with answers as TEXT[].
type PostgresStore struct {
	*sqlStore
}

func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, apperrors.StoreError("open postgres", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, apperrors.StoreError("ping postgres", err)
	}
	return &PostgresStore{sqlStore: &sqlStore{DB: db, d: postgresDialect}}, nil
}

var postgresDialect = dialect{
	name: "postgres",
	schema: []string{
		`CREATE SEQUENCE IF NOT EXISTS conversation_version_seq`,
		`CREATE TABLE IF NOT EXISTS conversation (
            question TEXT PRIMARY KEY,
            answers TEXT[] NOT NULL,
            version BIGINT NOT NULL,
            created_at TIMESTAMPTZ DEFAULT NOW(),
            updated_at TIMESTAMPTZ DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_conversation_created_at ON conversation(created_at, question)`,
		// keep the sequence ahead of versions written before it existed
		`SELECT setval('conversation_version_seq', GREATEST(
            (SELECT COALESCE(MAX(version), 0) FROM conversation),
            (SELECT last_value FROM conversation_version_seq)))`,
	},
	get:        `SELECT answers FROM conversation WHERE question = $1`,
	getVersion: `SELECT answers, version FROM conversation WHERE question = $1`,
	upsert: `
		INSERT INTO conversation (question, answers, version, created_at, updated_at)
		VALUES ($1, $2, $4, $3, $3)
		ON CONFLICT (question) DO UPDATE
		SET answers = EXCLUDED.answers, version = EXCLUDED.version, updated_at = EXCLUDED.updated_at
	`,
	insertNew: `
		INSERT INTO conversation (question, answers, version, created_at, updated_at)
		VALUES ($1, $2, $4, $3, $3)
		ON CONFLICT (question) DO NOTHING
	`,
	updateIfVer: `
		UPDATE conversation SET answers = $2, version = $5, updated_at = $3
		WHERE question = $1 AND version = $4
	`,
	nextVersion: `SELECT nextval('conversation_version_seq')`,
	del:         `DELETE FROM conversation WHERE question = $1`,
	delIfVer:    `DELETE FROM conversation WHERE question = $1 AND version = $2`,
	scan:        `SELECT question FROM conversation ORDER BY created_at, question`,
	arrayArg:    func(a []string) any { return pq.Array(a) },
	arrayDest:   func(a *[]string) any { return pq.Array(a) },
}

// jsonStringArray stores a string slice as a JSON text column.
type jsonStringArray struct {
	dst *[]string
	src []string
}

func (j jsonStringArray) Value() (driver.Value, error) {
	b, err := json.Marshal(j.src)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (j jsonStringArray) Scan(value any) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*j.dst = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("unsupported answers column type %T", value)
	}
	return json.Unmarshal(raw, j.dst)
}
