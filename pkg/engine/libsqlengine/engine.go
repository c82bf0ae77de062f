// Package libsqlengine implements the engine contracts on top of the libsql
// Go SDK. Local files and embedded replicas go through the CGo driver; remote
// databases are reached over the libsql wire protocol with token
// authentication.
package libsqlengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	libsql "github.com/tursodatabase/go-libsql"

	"github.com/calyxdb/libsqlpool/pkg/engine"
)

// Engine implements engine.Engine for libsql databases.
type Engine struct{}

// New creates a new libsql engine.
func New() *Engine {
	return &Engine{}
}

// OpenLocal opens an on-disk libsql database at path.
func (e *Engine) OpenLocal(ctx context.Context, path string) (engine.Database, error) {
	return e.openDSN(ctx, "file:"+path)
}

// OpenRemote opens a remote libsql database at url using token for
// authentication. The token is carried in the DSN, the way the libsql driver
// expects it.
func (e *Engine) OpenRemote(ctx context.Context, url, token string) (engine.Database, error) {
	return e.openDSN(ctx, remoteURL(url, token))
}

// OpenLocalReplica opens an on-disk replica file directly. A local replica
// has no origin of its own, so Sync on its connections is a no-op.
func (e *Engine) OpenLocalReplica(ctx context.Context, path string) (engine.Database, error) {
	return e.openDSN(ctx, "file:"+path)
}

// OpenRemoteReplica opens path as an embedded replica of the database at url.
// A positive syncInterval puts the replica on a background resync cadence;
// zero leaves synchronization entirely to explicit Sync calls.
func (e *Engine) OpenRemoteReplica(ctx context.Context, path, url, token string, syncInterval time.Duration) (engine.Database, error) {
	opts := []libsql.Option{libsql.WithAuthToken(token)}
	if syncInterval > 0 {
		opts = append(opts, libsql.WithSyncInterval(syncInterval))
	}

	connector, err := libsql.NewEmbeddedReplicaConnector(path, url, opts...)
	if err != nil {
		return nil, fmt.Errorf("error opening embedded replica: %w", err)
	}

	db := sql.OpenDB(connector)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		connector.Close()
		return nil, fmt.Errorf("error pinging embedded replica: %w", err)
	}

	return &database{db: db, connector: connector}, nil
}

func (e *Engine) openDSN(ctx context.Context, dsn string) (engine.Database, error) {
	db, err := sql.Open("libsql", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	return &database{db: db}, nil
}

// remoteURL appends the auth token to a remote database URL.
func remoteURL(url, token string) string {
	if token == "" {
		return url
	}
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + "authToken=" + token
}

// database implements engine.Database for libsql.
type database struct {
	db        *sql.DB
	connector *libsql.Connector
}

// Connect produces a fresh connection. The connection takes ownership of the
// *sql.DB and connector, so the handle must not be reused afterwards.
func (d *database) Connect(ctx context.Context) (engine.Connection, error) {
	conn, err := d.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("error acquiring connection: %w", err)
	}

	return newConnection(conn, d.db, d.connector), nil
}

// Close releases the database handle.
func (d *database) Close() error {
	err := d.db.Close()
	if d.connector != nil {
		err = errors.Join(err, d.connector.Close())
	}
	return err
}
