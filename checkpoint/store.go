// Package checkpoint persists computed values so that
// rematerializing an evicted value reads a saved copy
// instead of recomputing it.
package checkpoint

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"

	"github.com/djdv/go-uncompute"
)

type (
	// Store is a key/value store of encoded values.
	// Constructed by [Open].
	Store struct {
		db     *pebble.DB
		logger *slog.Logger
	}
	// Option configures [Open].
	Option   func(*settings)
	settings struct {
		fs     vfs.FS
		logger *slog.Logger
	}
	constError string
)

// ErrEncode wraps codec failures while saving a checkpoint.
const ErrEncode = constError("could not encode checkpoint")

func (errStr constError) Error() string { return string(errStr) }

// InMemory keeps the store in process memory.
// Mostly useful for tests; checkpoints are lost on [Store.Close].
func InMemory() Option {
	return func(s *settings) { s.fs = vfs.NewMem() }
}

// WithLogger sets the logger used to report discarded checkpoints
// and the messages of the underlying database.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Open opens (creating if needed) the store in dir.
func Open(dir string, options ...Option) (*Store, error) {
	settings := settings{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, apply := range options {
		apply(&settings)
	}
	db, err := pebble.Open(dir, &pebble.Options{
		FS:     settings.fs,
		Logger: pebbleLogger{logger: settings.logger},
	})
	if err != nil {
		return nil, fmt.Errorf("opening checkpoint store %q: %w", dir, err)
	}
	return &Store{
		db:     db,
		logger: settings.logger,
	}, nil
}

// Close flushes and closes the store.
func (s *Store) Close() error { return s.db.Close() }

// Forget removes the checkpoint for key, if any.
func (s *Store) Forget(key []byte) error {
	return s.db.Delete(key, pebble.Sync)
}

func (s *Store) load(key []byte) ([]byte, bool, error) {
	value, closer, err := s.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	defer closer.Close()
	return bytes.Clone(value), true, nil
}

func (s *Store) save(key, value []byte) error {
	return s.db.Set(key, value, pebble.Sync)
}

// Recipe wraps compute so that its result is saved under key,
// and later invocations decode the saved copy instead.
// Checkpoints that fail to decode are discarded and recomputed.
func Recipe[T any](store *Store, key []byte, codec Codec[T], compute uncompute.Recipe[T]) uncompute.Recipe[T] {
	key = bytes.Clone(key)
	return func() (T, error) {
		var zero T
		data, found, err := store.load(key)
		if err != nil {
			return zero, err
		}
		if found {
			value, err := codec.Unmarshal(data)
			if err == nil {
				return value, nil
			}
			store.logger.Warn("discarding undecodable checkpoint",
				"key", string(key), "error", err)
		}
		value, err := compute()
		if err != nil {
			return zero, err
		}
		if data, err = codec.Marshal(value); err != nil {
			return zero, fmt.Errorf("%w %q: %w", ErrEncode, key, err)
		}
		if err := store.save(key, data); err != nil {
			return zero, err
		}
		return value, nil
	}
}
