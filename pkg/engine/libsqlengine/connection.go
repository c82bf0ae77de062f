package libsqlengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	libsql "github.com/tursodatabase/go-libsql"

	"github.com/calyxdb/libsqlpool/pkg/engine"
)

// extensionEnabler is the optional driver hook for toggling extension loading.
type extensionEnabler interface {
	EnableLoadExtension(enable bool) error
}

// extensionLoader is the optional driver hook for loading a native extension.
// The entry point argument is left empty so the library default is used.
type extensionLoader interface {
	LoadExtension(lib string, entry string) error
}

// connection implements engine.Connection for libsql. It owns the dedicated
// *sql.Conn as well as the *sql.DB and connector it came from; Close releases
// all three.
type connection struct {
	id        string
	conn      *sql.Conn
	db        *sql.DB
	connector *libsql.Connector
	closed    int32
}

func newConnection(conn *sql.Conn, db *sql.DB, connector *libsql.Connector) *connection {
	return &connection{
		id:        uuid.NewString(),
		conn:      conn,
		db:        db,
		connector: connector,
	}
}

// ID returns the connection identifier.
func (c *connection) ID() string {
	return c.id
}

// Execute runs a statement and discards its result.
func (c *connection) Execute(ctx context.Context, stmt string) error {
	if atomic.LoadInt32(&c.closed) == 1 {
		return errors.New("connection is closed")
	}
	_, err := c.conn.ExecContext(ctx, stmt)
	return err
}

// EnableExtensionLoading allows native extensions to be loaded on this
// connection.
func (c *connection) EnableExtensionLoading(ctx context.Context) error {
	return c.raw(ctx, func(driverConn interface{}) error {
		enabler, ok := driverConn.(extensionEnabler)
		if !ok {
			return engine.ErrExtensionsUnsupported
		}
		return enabler.EnableLoadExtension(true)
	})
}

// LoadExtension loads the native extension library at path.
func (c *connection) LoadExtension(ctx context.Context, path string) error {
	return c.raw(ctx, func(driverConn interface{}) error {
		loader, ok := driverConn.(extensionLoader)
		if !ok {
			return engine.ErrExtensionsUnsupported
		}
		if err := loader.LoadExtension(path, ""); err != nil {
			return fmt.Errorf("error loading extension %s: %w", path, err)
		}
		return nil
	})
}

// DisableExtensionLoading forbids further extension loads on this connection.
func (c *connection) DisableExtensionLoading(ctx context.Context) error {
	return c.raw(ctx, func(driverConn interface{}) error {
		enabler, ok := driverConn.(extensionEnabler)
		if !ok {
			return engine.ErrExtensionsUnsupported
		}
		return enabler.EnableLoadExtension(false)
	})
}

// Sync pulls pending changes from the replica's origin. Topologies without a
// connector have no origin, so there is nothing to do.
func (c *connection) Sync(ctx context.Context) error {
	if c.connector == nil {
		return nil
	}
	if atomic.LoadInt32(&c.closed) == 1 {
		return errors.New("connection is closed")
	}
	if _, err := c.connector.Sync(); err != nil {
		return fmt.Errorf("error syncing replica: %w", err)
	}
	return nil
}

// Raw returns the dedicated *sql.Conn backing this connection.
func (c *connection) Raw() interface{} {
	return c.conn
}

// Close releases the connection and the database handle it owns.
func (c *connection) Close() error {
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}
	err := errors.Join(c.conn.Close(), c.db.Close())
	if c.connector != nil {
		err = errors.Join(err, c.connector.Close())
	}
	return err
}

func (c *connection) raw(ctx context.Context, fn func(driverConn interface{}) error) error {
	// sql.Conn.Raw takes no context, so cancellation is checked up front.
	if err := ctx.Err(); err != nil {
		return err
	}
	if atomic.LoadInt32(&c.closed) == 1 {
		return errors.New("connection is closed")
	}
	return c.conn.Raw(fn)
}
