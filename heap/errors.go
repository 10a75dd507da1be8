// ABOUTME: Error values for heap failures
// ABOUTME: Fatal conditions panic with a FatalError wrapping one of these

package heap

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfMemory is raised when the arena cannot grow to satisfy a request
	ErrOutOfMemory = errors.New("out of memory")

	// ErrBadFieldMask is raised when a mask names words the object doesn't have
	ErrBadFieldMask = errors.New("field mask exceeds object size")

	// ErrBadLength is raised for negative or oversized lengths
	ErrBadLength = errors.New("invalid object length")

	// ErrDanglingRef is raised when a traced word doesn't point at a live block
	ErrDanglingRef = errors.New("dangling reference")

	// ErrReentrantAlloc is raised when allocation is attempted during collection
	ErrReentrantAlloc = errors.New("allocation during collection")

	// ErrRootOrder is raised when root frames are not popped innermost first
	ErrRootOrder = errors.New("root frame popped out of order")

	// ErrCorruptHeap is raised when a block header fails validation
	ErrCorruptHeap = errors.New("corrupt heap")
)

// FatalError is the panic value for conditions the runtime cannot recover
// from. Callers that must survive one (tests, a CLI reporting a crash) can
// recover it and inspect Err with errors.Is.
type FatalError struct {
	Err error
}

// Error implements error.
func (e *FatalError) Error() string {
	return "fatal: " + e.Err.Error()
}

// Unwrap returns the wrapped sentinel.
func (e *FatalError) Unwrap() error {
	return e.Err
}

// Fail panics with a FatalError wrapping err with a formatted context.
func Fail(err error, format string, args ...any) {
	panic(&FatalError{Err: fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)})
}

// Recover converts a FatalError panic into an error. Any other panic is
// re-raised. Use it as `defer heap.Recover(&err)`.
func Recover(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	var fe *FatalError
	if err, ok := r.(error); ok && errors.As(err, &fe) {
		*errp = fe
		return
	}
	panic(r)
}
