package manager

import (
	"time"
)

// Topology identifies how the database is reached.
type Topology string

const (
	// TopologyLocal is an on-disk database file.
	TopologyLocal Topology = "local"

	// TopologyRemote is a network endpoint with token authentication.
	TopologyRemote Topology = "remote"

	// TopologyLocalReplica is an on-disk database kept as a replica.
	TopologyLocalReplica Topology = "local_replica"

	// TopologyRemoteReplica is an on-disk replica that synchronizes from a
	// remote endpoint.
	TopologyRemoteReplica Topology = "remote_replica"
)

// opensLocalFile reports whether the topology opens a local database file.
// Only these topologies can load native extensions.
func (t Topology) opensLocalFile() bool {
	return t == TopologyLocal || t == TopologyLocalReplica || t == TopologyRemoteReplica
}

// Source is an immutable description of how to reach the database. It is
// constructed once via one of the NewX constructors and never mutated
// afterwards, which is what makes managers safe to share across pool workers.
type Source struct {
	topology     Topology
	path         string
	url          string
	token        string
	syncInterval time.Duration
	extensions   []string
}

// SourceOption configures optional source attributes at construction time.
// Options are validated against the topology; nonsensical combinations are
// rejected with a ConfigurationError rather than silently ignored.
type SourceOption func(*Source) error

// WithExtensions attaches native extension libraries to load after each
// connect, in the order given. Only topologies that open a local database
// file (local, local_replica, remote_replica) accept extensions.
func WithExtensions(paths ...string) SourceOption {
	return func(s *Source) error {
		if !s.topology.opensLocalFile() {
			return NewConfigurationError(s.topology, "extensions", "extension loading requires a local database file")
		}
		for _, p := range paths {
			if p == "" {
				return NewConfigurationError(s.topology, "extensions", "extension path must not be empty")
			}
		}
		s.extensions = append([]string(nil), paths...)
		return nil
	}
}

// WithSyncInterval puts a remote replica on a background resync cadence.
// Without it the replica synchronizes only when the manager triggers a sync.
// Supplying an interval on any other topology is a configuration error.
func WithSyncInterval(interval time.Duration) SourceOption {
	return func(s *Source) error {
		if s.topology != TopologyRemoteReplica {
			return NewConfigurationError(s.topology, "syncInterval", "sync interval only applies to remote replicas")
		}
		if interval <= 0 {
			return NewConfigurationError(s.topology, "syncInterval", "sync interval must be positive")
		}
		s.syncInterval = interval
		return nil
	}
}

// NewLocal describes an on-disk database at path.
func NewLocal(path string, opts ...SourceOption) (Source, error) {
	if path == "" {
		return Source{}, NewConfigurationError(TopologyLocal, "path", "path must not be empty")
	}
	return newSource(Source{topology: TopologyLocal, path: path}, opts)
}

// NewRemote describes a remote database at url, authenticated with token.
func NewRemote(url, token string, opts ...SourceOption) (Source, error) {
	if url == "" {
		return Source{}, NewConfigurationError(TopologyRemote, "url", "url must not be empty")
	}
	if token == "" {
		return Source{}, NewConfigurationError(TopologyRemote, "token", "token must not be empty")
	}
	return newSource(Source{topology: TopologyRemote, url: url, token: token}, opts)
}

// NewLocalReplica describes an on-disk database kept as a replica.
func NewLocalReplica(path string, opts ...SourceOption) (Source, error) {
	if path == "" {
		return Source{}, NewConfigurationError(TopologyLocalReplica, "path", "path must not be empty")
	}
	return newSource(Source{topology: TopologyLocalReplica, path: path}, opts)
}

// NewRemoteReplica describes an on-disk replica at path that synchronizes
// from the remote database at url.
func NewRemoteReplica(path, url, token string, opts ...SourceOption) (Source, error) {
	if path == "" {
		return Source{}, NewConfigurationError(TopologyRemoteReplica, "path", "path must not be empty")
	}
	if url == "" {
		return Source{}, NewConfigurationError(TopologyRemoteReplica, "url", "url must not be empty")
	}
	if token == "" {
		return Source{}, NewConfigurationError(TopologyRemoteReplica, "token", "token must not be empty")
	}
	return newSource(Source{topology: TopologyRemoteReplica, path: path, url: url, token: token}, opts)
}

func newSource(s Source, opts []SourceOption) (Source, error) {
	for _, opt := range opts {
		if err := opt(&s); err != nil {
			return Source{}, err
		}
	}
	return s, nil
}

// Topology returns the connection topology.
func (s Source) Topology() Topology {
	return s.topology
}

// Path returns the database file path, where applicable.
func (s Source) Path() string {
	return s.path
}

// URL returns the remote endpoint, where applicable.
func (s Source) URL() string {
	return s.url
}

// Token returns the authentication credential, where applicable.
func (s Source) Token() string {
	return s.token
}

// SyncInterval returns the background resync cadence. Zero means the replica
// synchronizes only on manager-triggered syncs.
func (s Source) SyncInterval() time.Duration {
	return s.syncInterval
}

// Extensions returns a copy of the configured extension paths.
func (s Source) Extensions() []string {
	if len(s.extensions) == 0 {
		return nil
	}
	return append([]string(nil), s.extensions...)
}
