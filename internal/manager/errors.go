package manager

import "fmt"

// busyError signals that a lifecycle operation is already in flight. A new
// call while busy is rejected rather than cancelling the prior operation.
type busyError struct{}

func (busyError) Error() string { return "lifecycle operation already in progress" }

// ErrBusy constructs the busy rejection error.
func ErrBusy() error { return busyError{} }

// IsBusy reports whether err indicates a concurrent lifecycle call (maps to
// 429 at the HTTP layer).
func IsBusy(err error) bool {
	_, ok := err.(busyError)
	return ok
}

// resourceRejectedError is the hard admission failure: insufficient RAM or
// storage. Never retried, since retrying against insufficient resources
// cannot succeed.
type resourceRejectedError struct{ reason string }

func (e resourceRejectedError) Error() string { return e.reason }

// ErrResourceRejected constructs a hard admission rejection.
func ErrResourceRejected(reason string) error { return resourceRejectedError{reason: reason} }

// IsResourceRejected reports whether err is a hard admission rejection.
func IsResourceRejected(err error) bool {
	_, ok := err.(resourceRejectedError)
	return ok
}

// modelNotFoundError covers both an unknown catalog key and a catalog key
// the host listing cannot resolve (configuration mismatch).
type modelNotFoundError struct{ key string }

func (e modelNotFoundError) Error() string { return "model not found: " + e.key }

// ErrModelNotFound constructs a modelNotFoundError.
func ErrModelNotFound(key string) error { return modelNotFoundError{key: key} }

// IsModelNotFound reports whether err indicates a missing model key.
func IsModelNotFound(err error) bool {
	_, ok := err.(modelNotFoundError)
	return ok
}

// downloadFailedError wraps a download collaborator failure. Not auto
// retried; the caller may invoke the pipeline again.
type downloadFailedError struct{ err error }

func (e downloadFailedError) Error() string { return "download failed: " + e.err.Error() }
func (e downloadFailedError) Unwrap() error { return e.err }

// ErrDownloadFailed wraps a download collaborator failure.
func ErrDownloadFailed(err error) error { return downloadFailedError{err: err} }

// IsDownloadFailed reports whether err is a download collaborator failure.
func IsDownloadFailed(err error) bool {
	_, ok := err.(downloadFailedError)
	return ok
}

// loadFailedError reports an exhausted retry budget against the load
// collaborator.
type loadFailedError struct {
	attempts int
	err      error
}

func (e loadFailedError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("load failed after %d attempts: %v", e.attempts, e.err)
	}
	return fmt.Sprintf("load failed after %d attempts", e.attempts)
}

func (e loadFailedError) Unwrap() error { return e.err }

// IsLoadFailed reports whether err indicates an exhausted load retry budget.
func IsLoadFailed(err error) bool {
	_, ok := err.(loadFailedError)
	return ok
}
