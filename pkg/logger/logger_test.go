package logger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribe(t *testing.T) {
	l := New("test")
	l.DisableConsoleOutput()

	ch := l.Subscribe()
	l.Info("connected to %s", "local")

	select {
	case entry := <-ch:
		assert.Equal(t, "INFO", entry.Level)
		assert.Equal(t, "connected to local", entry.Message)
		assert.WithinDuration(t, time.Now(), entry.Time, time.Minute)
	case <-time.After(time.Second):
		t.Fatal("expected a log entry")
	}
}

func TestWithFields(t *testing.T) {
	l := New("test")
	l.DisableConsoleOutput()

	ch := l.Subscribe()
	l.WithFields(map[string]string{"connection": "conn-1"}).Info("validated")

	select {
	case entry := <-ch:
		require.NotNil(t, entry.Fields)
		assert.Equal(t, "conn-1", entry.Fields["connection"])
		assert.Equal(t, "validated", entry.Message)
	case <-time.After(time.Second):
		t.Fatal("expected a log entry")
	}
}

func TestSubscriberDoesNotBlock(t *testing.T) {
	l := New("test")
	l.DisableConsoleOutput()

	// A full subscriber channel is skipped, not waited on.
	l.Subscribe()
	for i := 0; i < 250; i++ {
		l.Debug("entry %d", i)
	}
}
