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
	ExitFailure      = 1 // Operation failure (sync failed, vote rejected hard, etc.)
	ExitCommandError = 2 // Command error (invalid paths, database not found, etc.)
)

// ExitError represents an error with a specific exit code.
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

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
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

// Success outputs a successful result in the configured format.
// For JSON, data is wrapped in {"status":"ok","data":...}; for text the
// caller supplies a preformatted line.
func (f *OutputFormatter) Success(text string, data any) error {
	if f.Format == "json" {
		return f.emit(map[string]any{"status": "ok", "data": data})
	}
	_, err := fmt.Fprintln(f.Writer, text)
	return err
}

// Failure outputs an error result and returns an ExitError with code.
func (f *OutputFormatter) Failure(code int, message string, err error) error {
	if f.Format == "json" {
		payload := map[string]any{
			"status": "error",
			"error":  map[string]any{"message": message},
		}
		if emitErr := f.emit(payload); emitErr != nil {
			return emitErr
		}
		return &ExitError{Code: code, Message: message, Err: err}
	}
	fmt.Fprintf(f.Writer, "error: %s\n", message)
	return &ExitError{Code: code, Message: message, Err: err}
}

func (f *OutputFormatter) emit(v any) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
