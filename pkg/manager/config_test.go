package manager

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceConstructors(t *testing.T) {
	t.Run("local", func(t *testing.T) {
		src, err := NewLocal("/data/app.db")
		require.NoError(t, err)
		assert.Equal(t, TopologyLocal, src.Topology())
		assert.Equal(t, "/data/app.db", src.Path())
		assert.Empty(t, src.Extensions())
	})

	t.Run("remote", func(t *testing.T) {
		src, err := NewRemote("libsql://db.example.io", "secret")
		require.NoError(t, err)
		assert.Equal(t, TopologyRemote, src.Topology())
		assert.Equal(t, "libsql://db.example.io", src.URL())
		assert.Equal(t, "secret", src.Token())
	})

	t.Run("local replica", func(t *testing.T) {
		src, err := NewLocalReplica("/data/replica.db")
		require.NoError(t, err)
		assert.Equal(t, TopologyLocalReplica, src.Topology())
		assert.Equal(t, "/data/replica.db", src.Path())
	})

	t.Run("remote replica", func(t *testing.T) {
		src, err := NewRemoteReplica("/data/sync.db", "libsql://db.example.io", "secret",
			WithSyncInterval(time.Minute), WithExtensions("crypto.so"))
		require.NoError(t, err)
		assert.Equal(t, TopologyRemoteReplica, src.Topology())
		assert.Equal(t, "/data/sync.db", src.Path())
		assert.Equal(t, "libsql://db.example.io", src.URL())
		assert.Equal(t, "secret", src.Token())
		assert.Equal(t, time.Minute, src.SyncInterval())
		assert.Equal(t, []string{"crypto.so"}, src.Extensions())
	})
}

func TestSourceRequiredFields(t *testing.T) {
	tests := []struct {
		name  string
		build func() (Source, error)
	}{
		{"local without path", func() (Source, error) { return NewLocal("") }},
		{"local replica without path", func() (Source, error) { return NewLocalReplica("") }},
		{"remote without url", func() (Source, error) { return NewRemote("", "secret") }},
		{"remote without token", func() (Source, error) { return NewRemote("libsql://db.example.io", "") }},
		{"remote replica without path", func() (Source, error) {
			return NewRemoteReplica("", "libsql://db.example.io", "secret")
		}},
		{"remote replica without url", func() (Source, error) {
			return NewRemoteReplica("/data/sync.db", "", "secret")
		}},
		{"remote replica without token", func() (Source, error) {
			return NewRemoteReplica("/data/sync.db", "libsql://db.example.io", "")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build()
			require.Error(t, err)
			assert.True(t, IsConfigurationError(err))
		})
	}
}

func TestSourceOptionValidation(t *testing.T) {
	t.Run("sync interval rejected outside remote replica", func(t *testing.T) {
		_, err := NewLocal("/data/app.db", WithSyncInterval(time.Minute))
		require.Error(t, err)
		assert.True(t, IsConfigurationError(err))

		_, err = NewRemote("libsql://db.example.io", "secret", WithSyncInterval(time.Minute))
		require.Error(t, err)
		assert.True(t, IsConfigurationError(err))

		_, err = NewLocalReplica("/data/replica.db", WithSyncInterval(time.Minute))
		require.Error(t, err)
		assert.True(t, IsConfigurationError(err))
	})

	t.Run("sync interval must be positive", func(t *testing.T) {
		_, err := NewRemoteReplica("/data/sync.db", "libsql://db.example.io", "secret",
			WithSyncInterval(0))
		require.Error(t, err)
		assert.True(t, IsConfigurationError(err))
	})

	t.Run("extensions rejected on pure remote", func(t *testing.T) {
		_, err := NewRemote("libsql://db.example.io", "secret", WithExtensions("crypto.so"))
		require.Error(t, err)
		assert.True(t, IsConfigurationError(err))
	})

	t.Run("empty extension path rejected", func(t *testing.T) {
		_, err := NewLocal("/data/app.db", WithExtensions("crypto.so", ""))
		require.Error(t, err)
		assert.True(t, IsConfigurationError(err))
	})
}

func TestSourceImmutability(t *testing.T) {
	paths := []string{"crypto.so", "uuid.so"}
	src, err := NewLocal("/data/app.db", WithExtensions(paths...))
	require.NoError(t, err)

	// Mutating the input slice after construction changes nothing.
	paths[0] = "rogue.so"
	assert.Equal(t, []string{"crypto.so", "uuid.so"}, src.Extensions())

	// Mutating the returned slice changes nothing either.
	got := src.Extensions()
	got[1] = "rogue.so"
	assert.Equal(t, []string{"crypto.so", "uuid.so"}, src.Extensions())
}
