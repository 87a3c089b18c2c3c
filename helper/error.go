package helper

import (
	"fmt"
	"runtime"
	"strings"
)

// Error wraps an error with the operation that failed and the function it failed in.
type Error struct {
	Original error
	Trace    []string
}

// NewError wraps err with the given operation and the calling function's name.
// Wrapping an *Error appends to its trace instead of nesting messages.
func NewError(operation string, err error) error {
	if err == nil {
		return nil
	}

	entry := operation
	if pc, _, _, ok := runtime.Caller(1); ok {
		if fn := runtime.FuncForPC(pc); fn != nil {
			name := fn.Name()
			name = name[strings.LastIndex(name, "/")+1:]
			entry = fmt.Sprintf("%s (%s)", operation, name)
		}
	}

	if existing, ok := err.(*Error); ok {
		return &Error{
			Original: existing.Original,
			Trace:    append([]string{entry}, existing.Trace...),
		}
	}

	return &Error{
		Original: err,
		Trace:    []string{entry},
	}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", strings.Join(e.Trace, ": "), e.Original)
}

func (e *Error) Unwrap() error {
	return e.Original
}
