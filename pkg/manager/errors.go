package manager

import (
	"errors"
	"fmt"
)

// Standard manager errors
var (
	// ErrEngineFailure is returned when the underlying database engine fails
	ErrEngineFailure = errors.New("engine failure")

	// ErrSignalFailure is returned when an internal completion signal fails
	ErrSignalFailure = errors.New("signal failure")

	// ErrInvalidConfiguration is returned when the source configuration is invalid
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// ErrorKind discriminates the failure classes surfaced by the manager.
type ErrorKind string

const (
	// KindEngine covers any failure originating from the database engine:
	// connection refused, authentication rejected, extension load failure,
	// statement execution failure.
	KindEngine ErrorKind = "engine"

	// KindSignal covers failures of the internal completion signaling used
	// during connection setup. These do not occur in normal operation.
	KindSignal ErrorKind = "signal"
)

// Error is the unified error type surfaced to the pool. It wraps engine and
// signal failures with the topology and operation they occurred in, always
// preserving the original cause for diagnostics.
type Error struct {
	Kind     ErrorKind
	Topology Topology
	Op       string
	Cause    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s: %v", e.Topology, e.Op, e.Cause)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches the kind sentinels ErrEngineFailure and ErrSignalFailure.
func (e *Error) Is(target error) bool {
	switch e.Kind {
	case KindEngine:
		return target == ErrEngineFailure
	case KindSignal:
		return target == ErrSignalFailure
	}
	return false
}

func newEngineError(topology Topology, op string, cause error) *Error {
	return &Error{Kind: KindEngine, Topology: topology, Op: op, Cause: cause}
}

func newSignalError(topology Topology, op string, cause error) *Error {
	return &Error{Kind: KindSignal, Topology: topology, Op: op, Cause: cause}
}

// wrapEngineError wraps an engine failure without double-wrapping errors that
// already carry manager context.
func wrapEngineError(topology Topology, op string, err error) error {
	if err == nil {
		return nil
	}
	var mgrErr *Error
	if errors.As(err, &mgrErr) {
		return err
	}
	return newEngineError(topology, op, err)
}

// ConfigurationError is returned when a source configuration is rejected at
// construction time.
type ConfigurationError struct {
	Topology Topology
	Field    string
	Reason   string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s configuration: field '%s': %s", e.Topology, e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s configuration: %s", e.Topology, e.Reason)
}

// Is checks if the error is ErrInvalidConfiguration.
func (e *ConfigurationError) Is(target error) bool {
	return errors.Is(target, ErrInvalidConfiguration)
}

// NewConfigurationError creates a new ConfigurationError.
func NewConfigurationError(topology Topology, field, reason string) *ConfigurationError {
	return &ConfigurationError{Topology: topology, Field: field, Reason: reason}
}

// IsEngineError checks if an error originated from the database engine.
func IsEngineError(err error) bool {
	return errors.Is(err, ErrEngineFailure)
}

// IsSignalError checks if an error came from internal setup signaling.
func IsSignalError(err error) bool {
	return errors.Is(err, ErrSignalFailure)
}

// IsConfigurationError checks if an error is a configuration error.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration)
}
