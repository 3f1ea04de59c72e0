// Package badgercache provides a render cache backed by BadgerDB, for a
// persistent on-disk cache that survives restarts without a Redis.
package badgercache

import (
	"context"
	"errors"
	"log"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/verdancy/bramble/pkg/ports"
)

// Cache implements ports.Cache using BadgerDB v4.
type Cache struct {
	db  *badger.DB
	ttl time.Duration
}

var _ ports.Cache = (*Cache)(nil)

// Options configures the Badger-backed cache.
type Options struct {
	// Dir is the directory for BadgerDB data files. Required unless
	// InMemory is set.
	Dir string

	// InMemory runs BadgerDB in memory-only mode (no disk persistence).
	// Useful for testing with a real badger engine.
	InMemory bool

	// TTL expires entries after the given duration. Zero keeps entries
	// until deleted or evicted.
	TTL time.Duration

	// Logger sets the badger logger. If nil, a quiet logger is used
	// that only surfaces errors and warnings.
	Logger badger.Logger
}

// New opens (or creates) a Badger-backed cache.
func New(opts Options) (*Cache, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("badgercache: Options.Dir is required for on-disk mode")
	}
	dbOpts := badger.DefaultOptions(opts.Dir)
	if opts.InMemory {
		dbOpts = dbOpts.WithInMemory(true)
	}
	if opts.Logger != nil {
		dbOpts = dbOpts.WithLogger(opts.Logger)
	} else {
		dbOpts = dbOpts.WithLogger(quietLogger{})
	}
	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, err
	}
	return &Cache{db: db, ttl: opts.TTL}, nil
}

// Get retrieves a cached value.
func (c *Cache) Get(_ context.Context, key string) ([]byte, error) {
	var val []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ports.ErrCacheMiss
	}
	return val, err
}

// Set stores a value, applying the configured TTL.
func (c *Cache) Set(_ context.Context, key string, value []byte) error {
	return c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), value)
		if c.ttl > 0 {
			entry = entry.WithTTL(c.ttl)
		}
		return txn.SetEntry(entry)
	})
}

// Delete removes a cached value.
func (c *Cache) Delete(_ context.Context, key string) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	return err
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// quietLogger keeps badger's errors and warnings but drops the info and
// debug chatter.
type quietLogger struct{}

func (quietLogger) Errorf(f string, v ...interface{}) { log.Printf("[badger] ERROR: "+f, v...) }
func (quietLogger) Warningf(f string, v ...interface{}) {
	log.Printf("[badger] WARN: "+f, v...)
}
func (quietLogger) Infof(string, ...interface{})  {}
func (quietLogger) Debugf(string, ...interface{}) {}
