// Package tcerr defines the one error taxonomy the compiler reports
// through: every fatal condition, from a malformed token sequence to
// an unresolved variable, is a *tcerr.Error carrying a Kind so the
// driver can prefix the message consistently.
package tcerr

import "fmt"

// Kind is one of the three fatal-error categories the compiler
// reports. There is no recovery from any of them — every *Error is
// terminal.
type Kind string

const (
	Lexical  Kind = "lexical error"
	Syntax   Kind = "syntax error"
	Semantic Kind = "semantic error"
)

// Error is the single error type produced anywhere in the pipeline.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
