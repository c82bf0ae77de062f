package manager

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorWrapping(t *testing.T) {
	cause := errors.New("connection refused")

	t.Run("engine error carries kind, topology and cause", func(t *testing.T) {
		err := newEngineError(TopologyRemote, "open", cause)
		assert.Equal(t, "[remote] open: connection refused", err.Error())
		assert.True(t, errors.Is(err, ErrEngineFailure))
		assert.False(t, errors.Is(err, ErrSignalFailure))
		assert.True(t, errors.Is(err, cause))
		assert.Equal(t, cause, errors.Unwrap(err))
	})

	t.Run("signal error matches its own sentinel", func(t *testing.T) {
		err := newSignalError(TopologyRemoteReplica, "sync", cause)
		assert.True(t, errors.Is(err, ErrSignalFailure))
		assert.False(t, errors.Is(err, ErrEngineFailure))
	})

	t.Run("wrapEngineError does not double-wrap", func(t *testing.T) {
		inner := newSignalError(TopologyRemoteReplica, "sync", cause)
		wrapped := wrapEngineError(TopologyRemoteReplica, "connect", inner)
		assert.Equal(t, error(inner), wrapped)
	})

	t.Run("wrapEngineError passes nil through", func(t *testing.T) {
		assert.NoError(t, wrapEngineError(TopologyLocal, "open", nil))
	})
}

func TestConfigurationError(t *testing.T) {
	err := NewConfigurationError(TopologyLocal, "path", "path must not be empty")
	assert.Equal(t, "invalid local configuration: field 'path': path must not be empty", err.Error())
	assert.True(t, errors.Is(err, ErrInvalidConfiguration))

	bare := NewConfigurationError(TopologyRemote, "", "unknown topology")
	assert.Equal(t, "invalid remote configuration: unknown topology", bare.Error())
}

func TestErrorPredicates(t *testing.T) {
	cause := errors.New("boom")

	assert.True(t, IsEngineError(newEngineError(TopologyLocal, "open", cause)))
	assert.True(t, IsSignalError(newSignalError(TopologyRemoteReplica, "sync", cause)))
	assert.True(t, IsConfigurationError(NewConfigurationError(TopologyLocal, "path", "empty")))

	assert.False(t, IsEngineError(cause))
	assert.False(t, IsSignalError(cause))
	assert.False(t, IsConfigurationError(cause))

	var mgrErr *Error
	require.ErrorAs(t, newEngineError(TopologyLocal, "open", cause), &mgrErr)
	assert.Equal(t, KindEngine, mgrErr.Kind)
}
