package keystore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	badger "github.com/dgraph-io/badger/v4"
)

// Embedded on-disk store for single-node deployments without redis.
type BadgerKeyStore struct {
	db *badger.DB
}

var _ KeyStore = (*BadgerKeyStore)(nil)

func NewBadgerKeyStore(dir string, logger *slog.Logger) (*BadgerKeyStore, error) {
	opts := badger.DefaultOptions(dir).
		WithLogger(newBadgerLogger(logger))
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerKeyStore{db: db}, nil
}

func (s *BadgerKeyStore) Close() error {
	return s.db.Close()
}

func badgerKey(dict, key string) []byte {
	return []byte(dict + "/" + key)
}

func (s *BadgerKeyStore) Get(ctx context.Context, dict, key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(dict, key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *BadgerKeyStore) Put(ctx context.Context, dict, key string, val []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerKey(dict, key), val)
	})
}

func (s *BadgerKeyStore) Delete(ctx context.Context, dict, key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(badgerKey(dict, key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// adapts slog to badger's Logger interface
type badgerLogger struct {
	l *slog.Logger
}

func newBadgerLogger(l *slog.Logger) *badgerLogger {
	if l == nil {
		l = slog.Default()
	}
	return &badgerLogger{l: l.With("component", "badger")}
}

// badger terminates its log lines with newlines; trim before handing to slog
func (b *badgerLogger) line(f string, v ...any) string {
	return strings.TrimSpace(fmt.Sprintf(f, v...))
}

func (b *badgerLogger) Errorf(f string, v ...any)   { b.l.Error(b.line(f, v...)) }
func (b *badgerLogger) Warningf(f string, v ...any) { b.l.Warn(b.line(f, v...)) }
func (b *badgerLogger) Infof(f string, v ...any)    { b.l.Info(b.line(f, v...)) }
func (b *badgerLogger) Debugf(f string, v ...any)   { b.l.Debug(b.line(f, v...)) }
