package display

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyLocator indicates Open was called with an empty locator
	ErrEmptyLocator = errors.New("locator cannot be empty")

	// ErrEmptyCommand indicates the display command line is empty
	ErrEmptyCommand = errors.New("display command cannot be empty")
)

// ExitError reports a display tool run that ended with a non-zero exit
// code. The launcher command propagates the code as its own exit status.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("display tool exited with code %d: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("display tool exited with code %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates an ExitError
func NewExitError(code int, err error) *ExitError {
	return &ExitError{
		Code: code,
		Err:  err,
	}
}
