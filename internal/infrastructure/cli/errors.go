package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/felixgeelhaar/taskboard/pkg/application"
)

// CLIError wraps domain errors with user-facing messages and actionable hints.
type CLIError struct {
	Message  string
	Hint     string
	Err      error
	ExitCode int
}

func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError with a default exit code of 1.
func NewCLIError(msg, hint string, err error) *CLIError {
	return &CLIError{
		Message:  msg,
		Hint:     hint,
		Err:      err,
		ExitCode: 1,
	}
}

// MapError converts known domain errors into CLIErrors with actionable hints.
// Unmapped errors are returned as-is.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return err
	}

	switch {
	case errors.Is(err, application.ErrEmptyText):
		return NewCLIError("task text is empty", "Pass the text as arguments, e.g. 'taskboard add Buy milk'", err)
	case errors.Is(err, application.ErrDuplicateText):
		return NewCLIError("task already exists", "Run 'taskboard list' to find the existing task", err)
	case errors.Is(err, application.ErrTaskNotFound):
		return NewCLIError("task not found", "Refer to a task by its number from 'taskboard list', its key, or its exact text", err)
	case errors.Is(err, application.ErrInvalidAmount):
		return &CLIError{Message: "invalid amount", Hint: "Use a non-negative whole number, e.g. 'taskboard amount 1500'", Err: err, ExitCode: 2}
	case errors.Is(err, application.ErrInvalidOrder):
		return NewCLIError("invalid position", "Positions start at 1, see 'taskboard list'", err)
	case errors.Is(err, application.ErrTemplateUnavailable):
		return NewCLIError("template unavailable", "Check template.url or template.path; the saved list is unchanged", err)
	}

	return err
}

// Report prints err with its hint and returns the exit code to use.
func Report(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	err = MapError(err)
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		if cliErr.Hint != "" {
			_, _ = fmt.Fprintf(w, "Hint: %s\n", cliErr.Hint)
		}
		if cliErr.ExitCode != 0 {
			return cliErr.ExitCode
		}
	}
	return 1
}
