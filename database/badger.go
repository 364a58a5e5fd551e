package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	apperrors "chatbot/errors"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

const badgerQuestionPrefix = "q/"

// BadgerConfig holds configuration for the embedded BadgerDB store.
type BadgerConfig struct {
	// Path is the directory for BadgerDB files. Ignored when InMemory is true.
	Path string

	// InMemory enables in-memory mode (no disk persistence). Useful for testing.
	InMemory bool

	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool

	// Logger receives BadgerDB's internal logs. If nil, they are discarded.
	Logger *zap.Logger
}

// badgerRecord is the value stored under each question key. Its version is
// the commit timestamp of the key, which badger never hands out twice.
type badgerRecord struct {
	Answers []string `json:"answers"`
	version uint64
}

// badgerLogger adapts zap to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *zap.SugaredLogger
}

func (l *badgerLogger) Errorf(format string, args ...interface{})   { l.logger.Errorf(format, args...) }
func (l *badgerLogger) Warningf(format string, args ...interface{}) { l.logger.Warnf(format, args...) }
func (l *badgerLogger) Infof(format string, args ...interface{})    { l.logger.Infof(format, args...) }
func (l *badgerLogger) Debugf(format string, args ...interface{})   { l.logger.Debugf(format, args...) }

// BadgerStore keeps one key per question in BadgerDB. Keys iterate in
// lexical order, so ScanQuestions returns questions sorted bytewise.
type BadgerStore struct {
	db *badger.DB
}

func NewBadgerStore(cfg BadgerConfig) (*BadgerStore, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, apperrors.StoreError("open badger", errors.New("path is required for persistent database"))
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, apperrors.StoreError("open badger", fmt.Errorf("create database directory %s: %w", cfg.Path, err))
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)

	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger.Named("badger").Sugar()})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, apperrors.StoreError("open badger", err)
	}
	return &BadgerStore{db: db}, nil
}

func badgerKey(question string) []byte {
	return []byte(badgerQuestionPrefix + question)
}

func readRecord(txn *badger.Txn, question string) (badgerRecord, error) {
	var rec badgerRecord
	item, err := txn.Get(badgerKey(question))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return rec, nil
		}
		return rec, err
	}
	rec.version = item.Version()
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &rec)
	})
	return rec, err
}

func writeRecord(txn *badger.Txn, question string, rec badgerRecord) error {
	val, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return txn.Set(badgerKey(question), val)
}

// update runs fn in a read-write transaction and maps badger's own
// transaction conflicts onto ErrConflict.
func (s *BadgerStore) update(op string, fn func(txn *badger.Txn) error) error {
	err := s.db.Update(fn)
	if err == nil {
		return nil
	}
	if errors.Is(err, badger.ErrConflict) {
		return apperrors.WrapError(apperrors.ErrConflict, op)
	}
	return apperrors.StoreError("badger "+op, err)
}

func (s *BadgerStore) Get(ctx context.Context, question string) (AnswerSet, error) {
	set, _, err := s.GetVersioned(ctx, question)
	return set, err
}

func (s *BadgerStore) GetVersioned(ctx context.Context, question string) (AnswerSet, uint64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, apperrors.StoreError("badger get", err)
	}
	var rec badgerRecord
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		rec, err = readRecord(txn, question)
		return err
	})
	if err != nil {
		return nil, 0, apperrors.StoreError("badger get", err)
	}
	return NewAnswerSet(rec.Answers...), rec.version, nil
}

func (s *BadgerStore) Put(ctx context.Context, question string, answers AnswerSet) error {
	if answers.Len() == 0 {
		return apperrors.InvalidInputf("refusing to store empty answer set for %q", question)
	}
	if err := ctx.Err(); err != nil {
		return apperrors.StoreError("badger put", err)
	}
	return s.update("put", func(txn *badger.Txn) error {
		return writeRecord(txn, question, badgerRecord{Answers: answers.Sorted()})
	})
}

func (s *BadgerStore) PutIfVersion(ctx context.Context, question string, answers AnswerSet, version uint64) error {
	if answers.Len() == 0 {
		return apperrors.InvalidInputf("refusing to store empty answer set for %q", question)
	}
	if err := ctx.Err(); err != nil {
		return apperrors.StoreError("badger conditional put", err)
	}
	return s.update("conditional put", func(txn *badger.Txn) error {
		rec, err := readRecord(txn, question)
		if err != nil {
			return err
		}
		if rec.version != version {
			return badger.ErrConflict
		}
		return writeRecord(txn, question, badgerRecord{Answers: answers.Sorted()})
	})
}

func (s *BadgerStore) Delete(ctx context.Context, question string) error {
	if err := ctx.Err(); err != nil {
		return apperrors.StoreError("badger delete", err)
	}
	return s.update("delete", func(txn *badger.Txn) error {
		return txn.Delete(badgerKey(question))
	})
}

func (s *BadgerStore) DeleteIfVersion(ctx context.Context, question string, version uint64) error {
	if version == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return apperrors.StoreError("badger conditional delete", err)
	}
	return s.update("conditional delete", func(txn *badger.Txn) error {
		rec, err := readRecord(txn, question)
		if err != nil {
			return err
		}
		if rec.version != version {
			return badger.ErrConflict
		}
		return txn.Delete(badgerKey(question))
	})
}

func (s *BadgerStore) ScanQuestions(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.StoreError("badger scan", err)
	}
	var questions []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(badgerQuestionPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			key := it.Item().KeyCopy(nil)
			questions = append(questions, string(key[len(badgerQuestionPrefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.StoreError("badger scan", err)
	}
	return questions, nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
