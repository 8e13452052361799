package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/roach88/expo/internal/ir"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Operation failure (invalid floor, rejected edit, failed scenarios, --fail-on hit)
	ExitCommandError = 2 // Command error (missing files, unknown captain, database not found, etc.)
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
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

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool

	styles *styles
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E201", "OUT_OF_BOUNDS", ...
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	// Human-readable text output
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	// Human-readable error
	fmt.Fprintf(f.Writer, "%s [%s]: %s\n", f.style().fail.Render("Error"), code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Failure writes a JSON error envelope that still carries a data payload,
// as validate and test do when they report findings.
func (f *OutputFormatter) Failure(code, message string, data any) error {
	encoder := json.NewEncoder(f.Writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(CLIResponse{
		Status: "error",
		Data:   data,
		Error:  &CLIError{Code: code, Message: message},
	})
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// styles renders text output. The renderer is bound to the formatter's
// writer, so buffers and pipes get plain text.
type styles struct {
	ok       lipgloss.Style
	fail     lipgloss.Style
	label    lipgloss.Style
	dim      lipgloss.Style
	severity map[ir.Severity]lipgloss.Style
}

func newStyles(w io.Writer) *styles {
	r := lipgloss.NewRenderer(w)
	return &styles{
		ok:    r.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		fail:  r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		label: r.NewStyle().Foreground(lipgloss.Color("99")).Bold(true),
		dim:   r.NewStyle().Foreground(lipgloss.Color("241")),
		severity: map[ir.Severity]lipgloss.Style{
			ir.SeverityHigh:   r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
			ir.SeverityMedium: r.NewStyle().Foreground(lipgloss.Color("214")),
			ir.SeverityLow:    r.NewStyle().Foreground(lipgloss.Color("12")),
		},
	}
}

func (f *OutputFormatter) style() *styles {
	if f.styles == nil {
		f.styles = newStyles(f.Writer)
	}
	return f.styles
}

// Check renders a success or failure mark followed by msg.
func (f *OutputFormatter) Check(ok bool, msg string) string {
	if ok {
		return f.style().ok.Render("✓") + " " + msg
	}
	return f.style().fail.Render("✗") + " " + msg
}

// Severity renders a severity tag such as "[high]".
func (f *OutputFormatter) Severity(s ir.Severity) string {
	tag := "[" + string(s) + "]"
	if st, ok := f.style().severity[s]; ok {
		return st.Render(tag)
	}
	return tag
}

// Label renders a section heading.
func (f *OutputFormatter) Label(s string) string {
	return f.style().label.Render(s)
}

// Dim renders secondary text.
func (f *OutputFormatter) Dim(s string) string {
	return f.style().dim.Render(s)
}
