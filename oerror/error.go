package oerror

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownFormat is returned when a settings file has an extension no decoder is registered for.
	ErrUnknownFormat = errors.New("unknown settings format")
	// ErrSnapshotVersion is returned when a snapshot was written by an incompatible version.
	ErrSnapshotVersion = errors.New("unsupported snapshot version")
	// ErrCorrupted is returned by the frame driver once an invariant violation left the world unusable.
	ErrCorrupted = errors.New("simulation state corrupted")
)

// SimError is the value raised when a simulation invariant is broken. The spatial index and region
// structures have no degraded mode, so these are fatal to the tick that raised them.
type SimError struct {
	Err string
}

// New returns a SimError with a message formatted from the arguments passed.
func New(format string, args ...any) *SimError {
	return &SimError{Err: fmt.Sprintf(format, args...)}
}

func (e *SimError) Error() string {
	return e.Err
}

// FromPanic converts a recovered panic value into an error that wraps ErrCorrupted.
func FromPanic(v any) error {
	switch v := v.(type) {
	case error:
		return fmt.Errorf("%w: %w", ErrCorrupted, v)
	default:
		return fmt.Errorf("%w: %v", ErrCorrupted, v)
	}
}
