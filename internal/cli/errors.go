package cli

import (
	"errors"
	"fmt"
)

// ExitError carries a process exit code out of a cobra RunE function.
//
// Commands print their own failure message and return NewExitError(code);
// [RunWithConfig] turns it into an [ExecuteResult] and only [Execute] calls
// os.Exit, so tests can assert on codes without terminating.
type ExitError struct {
	// Code is the exit code to return to the shell.
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// NewExitError creates an [ExitError] with the given exit code.
func NewExitError(code int) *ExitError {
	return &ExitError{Code: code}
}

// Exit codes.
const (
	ExitFailure  = 1
	ExitRejected = 2
	ExitUsage    = 64
)

// IsExitError reports whether err is, or wraps, an [ExitError] and returns
// its code.
func IsExitError(err error) (int, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}
