// Package manager implements a connection manager for libsql databases,
// suitable for driving a generic connection pool. The manager is a pure
// factory and validator: the pool calls Connect when it needs a new
// connection, IsValid to health-check idle connections, and HasBroken after
// each use to decide whether to discard immediately.
package manager

import (
	"context"
	"errors"
	"fmt"

	"github.com/calyxdb/libsqlpool/pkg/engine"
	"github.com/calyxdb/libsqlpool/pkg/engine/libsqlengine"
	"github.com/calyxdb/libsqlpool/pkg/logger"
)

// validationStmt is the trivial roundtrip executed by IsValid.
const validationStmt = "SELECT 1;"

// Manager is the contract consumed by an external connection pool.
type Manager interface {
	// Connect opens a fresh connection for the held source.
	Connect(ctx context.Context) (engine.Connection, error)

	// IsValid executes a trivial roundtrip against the connection. Failure
	// signals the pool to evict the connection.
	IsValid(ctx context.Context, conn engine.Connection) error

	// HasBroken is a cheap, non-blocking check run after each use. It never
	// blocks and never fails.
	HasBroken(conn engine.Connection) bool
}

// ConnectionManager implements Manager for a single connection source.
//
// It holds no mutable state beyond the immutable source, so a single manager
// is safe to share across concurrently executing pool workers. Connections it
// produces are independent of each other; caching and reuse are entirely the
// pool's responsibility. Engine failures are wrapped and returned, never
// retried or swallowed.
type ConnectionManager struct {
	source Source
	engine engine.Engine
	logger *logger.Logger
}

var _ Manager = (*ConnectionManager)(nil)

// Option configures a ConnectionManager at construction time. There are no
// mutators after construction.
type Option func(*ConnectionManager)

// WithEngine overrides the default libsql engine. Used mainly for testing.
func WithEngine(e engine.Engine) Option {
	return func(cm *ConnectionManager) {
		cm.engine = e
	}
}

// WithLogger attaches a logger. Without one the manager stays silent;
// observability is the caller's responsibility.
func WithLogger(l *logger.Logger) Option {
	return func(cm *ConnectionManager) {
		cm.logger = l
	}
}

// New creates a ConnectionManager for the given source.
func New(src Source, opts ...Option) *ConnectionManager {
	cm := &ConnectionManager{
		source: src,
		engine: libsqlengine.New(),
	}
	for _, opt := range opts {
		opt(cm)
	}
	return cm
}

// Source returns the source this manager was built from.
func (cm *ConnectionManager) Source() Source {
	return cm.source
}

// safeLog safely logs a message if a logger is available
func (cm *ConnectionManager) safeLog(level string, format string, args ...interface{}) {
	if cm.logger != nil {
		switch level {
		case "info":
			cm.logger.Info(format, args...)
		case "error":
			cm.logger.Error(format, args...)
		case "warn":
			cm.logger.Warn(format, args...)
		case "debug":
			cm.logger.Debug(format, args...)
		}
	}
}

// Connect opens a new connection for the held source. For remote replicas an
// initial on-demand sync is performed so the connection is usable before the
// first background cadence tick. If extensions are configured they are loaded
// before the connection is returned; a connection that failed any setup step
// is closed and never handed to the pool.
func (cm *ConnectionManager) Connect(ctx context.Context) (engine.Connection, error) {
	topology := cm.source.Topology()

	db, err := cm.open(ctx)
	if err != nil {
		cm.safeLog("error", "Failed to open %s database: %v", topology, err)
		return nil, wrapEngineError(topology, "open", err)
	}

	conn, err := db.Connect(ctx)
	if err != nil {
		db.Close()
		cm.safeLog("error", "Failed to connect to %s database: %v", topology, err)
		return nil, wrapEngineError(topology, "connect", err)
	}

	if topology == TopologyRemoteReplica {
		// initialSync owns discarding the connection on failure; the sync
		// may still be in flight when cancellation fires.
		if err := cm.initialSync(ctx, conn); err != nil {
			cm.safeLog("error", "Failed initial sync of remote replica: %v", err)
			return nil, err
		}
	}

	if ext := cm.source.Extensions(); len(ext) > 0 {
		if err := cm.loadExtensions(ctx, conn, ext); err != nil {
			// The half-configured connection is discarded, never pooled.
			conn.Close()
			cm.safeLog("error", "Failed to load extensions: %v", err)
			return nil, err
		}
	}

	cm.safeLog("debug", "Connected to %s database (connection %s)", topology, conn.ID())
	return conn, nil
}

// open dispatches on the source topology to the engine.
func (cm *ConnectionManager) open(ctx context.Context) (engine.Database, error) {
	src := cm.source
	switch src.Topology() {
	case TopologyLocal:
		return cm.engine.OpenLocal(ctx, src.Path())
	case TopologyRemote:
		return cm.engine.OpenRemote(ctx, src.URL(), src.Token())
	case TopologyLocalReplica:
		return cm.engine.OpenLocalReplica(ctx, src.Path())
	case TopologyRemoteReplica:
		return cm.engine.OpenRemoteReplica(ctx, src.Path(), src.URL(), src.Token(), src.SyncInterval())
	default:
		return nil, NewConfigurationError(src.Topology(), "topology", "unknown topology")
	}
}

// initialSync triggers one on-demand sync and waits for its completion
// signal, honoring cancellation. On any failure the connection is discarded
// here, never returned. A receive that fails without an engine error is an
// internal signaling failure.
func (cm *ConnectionManager) initialSync(ctx context.Context, conn engine.Connection) error {
	topology := cm.source.Topology()

	done := make(chan error, 1)
	go func() {
		done <- conn.Sync(ctx)
	}()

	select {
	case err, ok := <-done:
		if !ok {
			conn.Close()
			return newSignalError(topology, "sync", errors.New("sync completion channel closed"))
		}
		if err != nil {
			conn.Close()
			return wrapEngineError(topology, "sync", err)
		}
		return nil
	case <-ctx.Done():
		// The sync goroutine still holds the connection. Cleanup waits for
		// the sync to return so Close never runs concurrently with it; the
		// residual handle is discarded, not pooled.
		go func() {
			<-done
			conn.Close()
		}()
		return newSignalError(topology, "sync", ctx.Err())
	}
}

// loadExtensions enables extension loading, loads each path in order failing
// fast on the first error, and disables loading again. Loading is never left
// enabled on a returned connection, even on the success path, so application
// SQL cannot trigger a follow-on load.
func (cm *ConnectionManager) loadExtensions(ctx context.Context, conn engine.Connection, paths []string) error {
	topology := cm.source.Topology()

	if err := conn.EnableExtensionLoading(ctx); err != nil {
		return wrapEngineError(topology, "enable extension loading", err)
	}
	for _, path := range paths {
		if err := conn.LoadExtension(ctx, path); err != nil {
			return wrapEngineError(topology, fmt.Sprintf("load extension %s", path), err)
		}
	}
	if err := conn.DisableExtensionLoading(ctx); err != nil {
		return wrapEngineError(topology, "disable extension loading", err)
	}
	return nil
}

// IsValid executes a trivial roundtrip statement against the connection. Any
// failure is surfaced so the pool evicts the connection.
func (cm *ConnectionManager) IsValid(ctx context.Context, conn engine.Connection) error {
	if err := conn.Execute(ctx, validationStmt); err != nil {
		cm.safeLog("warn", "Validation failed for connection %s: %v", conn.ID(), err)
		return wrapEngineError(cm.source.Topology(), "validate", err)
	}
	return nil
}

// HasBroken reports whether the connection should be discarded without a
// roundtrip. Breakage detection is deferred entirely to IsValid, so this
// always reports false. It never blocks and never fails.
func (cm *ConnectionManager) HasBroken(conn engine.Connection) bool {
	return false
}
