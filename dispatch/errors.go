package dispatch

import "errors"

var (
	// ErrAborted is the cause attached to a cancellation signal fired by Abort.
	ErrAborted = errors.New("fetchup: request aborted")
	// ErrNilDispatcher is reported when a dispatch is attempted on a nil *Dispatcher.
	ErrNilDispatcher = errors.New("fetchup: nil dispatcher")
	// ErrInvalidDescriptor is reported for a zero-value Descriptor.
	ErrInvalidDescriptor = errors.New("fetchup: invalid descriptor")

	// ErrBodyTooLarge is reported when a response body exceeds MaxBodyBytes.
	ErrBodyTooLarge = errors.New("fetchup: response body too large")

	errNilResponse = errors.New("fetchup: transport returned nil response")
)

// DispatchError describes a failure of the dispatch orchestration itself,
// as opposed to a failure of one request (those are captured in envelopes).
type DispatchError struct {
	Op  string
	Err error
}

func (e *DispatchError) Error() string {
	return "fetchup: " + e.Op + ": " + e.Err.Error()
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}
