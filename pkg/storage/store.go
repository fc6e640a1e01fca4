// Package storage is the persistence boundary of taskboard: a key-value Store
// with file, memory, sqlite and postgres backends, and a typed TaskRepository
// on top of it.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Store.Get when the key is absent.
var ErrNotFound = errors.New("key not found")

// Persisted keys.
const (
	KeyTasks         = "tasks"
	KeyRemovedTasks  = "removedTasks"
	KeyPremiumAmount = "premiumAmount"
)

// Store is a single opaque key-value store. Writes are atomic per key only.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Options selects and configures a Store backend.
type Options struct {
	Backend string
	// Root is the workspace directory for the file backend.
	Root string
	// DSN is the data source for sql backends. For sqlite an empty DSN means
	// <Root>/.taskboard/taskboard.db.
	DSN string
}

// Open creates the Store described by opts.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendFile:
		return NewFileStore(opts.Root), nil
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendSQLite:
		dsn := opts.DSN
		if dsn == "" {
			fs := NewFileStore(opts.Root)
			if err := fs.Initialize(); err != nil {
				return nil, err
			}
			path, err := fs.ResolvePath("taskboard.db")
			if err != nil {
				return nil, err
			}
			dsn = path
		}
		return OpenSQLStore(ctx, DialectSQLite, dsn)
	case BackendPostgres:
		if opts.DSN == "" {
			return nil, fmt.Errorf("postgres backend requires a dsn")
		}
		return OpenSQLStore(ctx, DialectPostgres, opts.DSN)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}
