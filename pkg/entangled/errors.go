package entangled

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// Sentinel errors used for simple equality-style checks via errors.Is.
var (
	ErrInvalidProperty = errors.New("invalid property")
	ErrReference       = errors.New("reference error")
	ErrMarkdown        = errors.New("markdown error")
	ErrAnnotation      = errors.New("annotation error")
	ErrConflict        = errors.New("file conflict")
	ErrConfig          = errors.New("config error")
)

// PropertyError reports a malformed code-fence attribute.
type PropertyError struct {
	Info string // the raw info string
	Msg  string
}

func (e *PropertyError) Error() string {
	if e.Info == "" {
		return fmt.Sprintf("invalid property: %s", e.Msg)
	}
	return fmt.Sprintf("invalid property in %q: %s", e.Info, e.Msg)
}

func (e *PropertyError) Unwrap() error { return ErrInvalidProperty }

// NewPropertyError constructs a *PropertyError for the given info string.
func NewPropertyError(info, msg string) error {
	return &PropertyError{Info: info, Msg: msg}
}

// ReferenceError reports an undefined name, a reference cycle, or two blocks
// claiming the same target path.
type ReferenceError struct {
	Name  ReferenceName
	Cycle []ReferenceName // non-empty for cycles
	Msg   string
}

func (e *ReferenceError) Error() string {
	if len(e.Cycle) > 0 {
		parts := make([]string, len(e.Cycle))
		for i, n := range e.Cycle {
			parts[i] = string(n)
		}
		return fmt.Sprintf("cycle detected in references: %s", strings.Join(parts, " -> "))
	}
	if e.Msg != "" {
		return fmt.Sprintf("reference %q: %s", string(e.Name), e.Msg)
	}
	return fmt.Sprintf("undefined reference: %q", string(e.Name))
}

func (e *ReferenceError) Unwrap() error { return ErrReference }

// NewUndefinedReferenceError reports a lookup of a name with no blocks.
func NewUndefinedReferenceError(name ReferenceName) error {
	return &ReferenceError{Name: name}
}

// NewCycleError reports a reference cycle. The slice is the active expansion
// stack with the repeated name appended.
func NewCycleError(cycle []ReferenceName) error {
	return &ReferenceError{Cycle: cycle}
}

// MarkdownError reports a structural problem in a markdown source that could
// not be recovered with a warning.
type MarkdownError struct {
	Path string
	Line int
	Msg  string
}

func (e *MarkdownError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Msg)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

func (e *MarkdownError) Unwrap() error { return ErrMarkdown }

// FileConflictError reports that a tangled file was modified externally.
type FileConflictError struct {
	Path string
}

func (e *FileConflictError) Error() string {
	return fmt.Sprintf(
		"file conflict: %s has been modified externally (use --force to overwrite, or inspect the file)",
		e.Path,
	)
}

func (e *FileConflictError) Unwrap() error { return ErrConflict }

// NewFileConflictError constructs a *FileConflictError for path.
func NewFileConflictError(path string) error {
	return &FileConflictError{Path: path}
}

// ConfigError reports a configuration load or validation failure.
type ConfigError struct {
	Path string
	Msg  string
	Err  error
}

func (e *ConfigError) Error() string {
	switch {
	case e.Path != "" && e.Err != nil:
		return fmt.Sprintf("config %s: %s: %v", e.Path, e.Msg, e.Err)
	case e.Path != "":
		return fmt.Sprintf("config %s: %s", e.Path, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("config: %s: %v", e.Msg, e.Err)
	default:
		return fmt.Sprintf("config: %s", e.Msg)
	}
}

func (e *ConfigError) Unwrap() error { return ErrConfig }

// Convenience predicates.

// IsFileConflict reports whether err is (or wraps) a file conflict.
func IsFileConflict(err error) bool { return errors.Is(err, ErrConflict) }

// IsReferenceError reports whether err is (or wraps) a reference error.
func IsReferenceError(err error) bool { return errors.Is(err, ErrReference) }

// IsConfigError reports whether err is (or wraps) a config error.
func IsConfigError(err error) bool { return errors.Is(err, ErrConfig) }

// ExitCode maps an error to the command-layer exit code:
//
//	0 success, 1 file conflict, 2 config/parse error, 3 I/O,
//	4 reference error, 5 anything else.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrConflict):
		return 1
	case errors.Is(err, ErrConfig), errors.Is(err, ErrInvalidProperty), errors.Is(err, ErrMarkdown):
		return 2
	case isIOError(err):
		return 3
	case errors.Is(err, ErrReference):
		return 4
	default:
		return 5
	}
}

func isIOError(err error) bool {
	var pe *fs.PathError
	var le *os.LinkError
	return errors.As(err, &pe) || errors.As(err, &le)
}
