package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Operation failure (validation, invalid state, synthesis error)
	ExitCommandError = 2 // Command error (bad flags, unusable data directory)
)

// ExitError carries a specific exit code out of a command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error. Anything that is not
// an ExitError counts as an operation failure.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format  string
	Writer  io.Writer
	Verbose bool
}

// Response is the standard JSON envelope for CLI output.
type Response struct {
	Status string      `json:"status"` // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`
	Error  *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody is the error half of a Response.
type ErrorBody struct {
	Kind    string `json:"kind"` // "validation", "invalid_state", "execution", "command"
	Message string `json:"message"`
}

// Success emits data in the configured format. In text mode, data is
// printed with its String method or default formatting.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(Response{Status: "ok", Data: data})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error emits a classified error in the configured format.
func (f *OutputFormatter) Error(kind, message string) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(Response{
			Status: "error",
			Error:  &ErrorBody{Kind: kind, Message: message},
		})
	}
	fmt.Fprintf(f.Writer, "error (%s): %s\n", kind, message)
	return nil
}
