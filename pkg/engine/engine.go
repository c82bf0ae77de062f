// Package engine defines the contracts between the connection manager and the
// underlying database engine. The manager never talks to a driver directly;
// engine implementations (see the libsqlengine subpackage) translate these
// calls into driver operations.
package engine

import (
	"context"
	"errors"
	"time"
)

// ErrExtensionsUnsupported is returned when the underlying driver exposes no
// hooks for native extension loading.
var ErrExtensionsUnsupported = errors.New("extension loading not supported by this driver")

// Engine opens database handles for the supported connection topologies.
// Implementations must be safe for concurrent use; each OpenX call produces
// an independent handle.
type Engine interface {
	// OpenLocal opens an on-disk database at path.
	OpenLocal(ctx context.Context, path string) (Database, error)

	// OpenRemote opens a network connection to url, authenticating with token.
	OpenRemote(ctx context.Context, url, token string) (Database, error)

	// OpenLocalReplica opens an on-disk database configured as a replica.
	OpenLocalReplica(ctx context.Context, path string) (Database, error)

	// OpenRemoteReplica opens an on-disk replica of the remote database at
	// url. A positive syncInterval instructs the engine to resynchronize on
	// that cadence; zero means the replica synchronizes only on explicit
	// Sync calls.
	OpenRemoteReplica(ctx context.Context, path, url, token string, syncInterval time.Duration) (Database, error)
}

// Database is an opened database handle from which connections are produced.
type Database interface {
	// Connect produces a fresh connection. The connection takes ownership of
	// the handle's resources; callers that fail to obtain a connection must
	// Close the database themselves.
	Connect(ctx context.Context) (Connection, error)

	// Close releases the handle. Only needed when no connection was produced.
	Close() error
}

// Connection is an active connection to the database.
type Connection interface {
	// ID returns a unique identifier for this connection.
	ID() string

	// Execute runs a statement and discards its result.
	Execute(ctx context.Context, stmt string) error

	// EnableExtensionLoading allows native extensions to be loaded.
	EnableExtensionLoading(ctx context.Context) error

	// LoadExtension loads the native extension library at path.
	LoadExtension(ctx context.Context, path string) error

	// DisableExtensionLoading forbids further extension loads.
	DisableExtensionLoading(ctx context.Context) error

	// Sync pulls pending changes from the replica's origin. It is a no-op on
	// topologies that have no origin to sync from.
	Sync(ctx context.Context) error

	// Raw returns the underlying driver-specific connection object.
	// Type assertion is required when using Raw.
	Raw() interface{}

	// Close releases the connection and every resource it owns.
	Close() error
}
