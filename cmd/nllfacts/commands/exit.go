package commands

import (
	"errors"
	"fmt"
	"io"
)

// exitError carries the process exit status for err. A logged error has
// already been reported through the logger and is not printed again.
type exitError struct {
	code   int
	logged bool
	err    error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

// ExitCode returns the exit status for an error returned by Execute.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return 1
}

// Report writes err to w unless it has already been logged.
func Report(w io.Writer, err error) {
	var ee *exitError
	if err == nil || (errors.As(err, &ee) && ee.logged) {
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}
