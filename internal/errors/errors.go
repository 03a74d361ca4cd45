// Package errors defines the typed error kinds codegraph's components
// return, modeled as one struct per kind with a Error()/Unwrap() pair so
// callers can use errors.Is/As against the underlying cause.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType identifies which of codegraph's error kinds an error belongs
// to. Every error struct in this package reports its kind via Type(), and
// the MCP server carries the value as the machine-readable "code" field of
// a tool_error body, so transports can branch on it (e.g. HTTP's 503 for
// not_ready) without matching message text.
type ErrorType string

const (
	ErrorTypeIO                  ErrorType = "io"
	ErrorTypeUnsupportedLanguage ErrorType = "unsupported_language"
	ErrorTypeParse               ErrorType = "parse"
	ErrorTypeQuery               ErrorType = "query"
	ErrorTypeNotFound            ErrorType = "not_found"
	ErrorTypeNotReady            ErrorType = "not_ready"
	ErrorTypeCancelled           ErrorType = "cancelled"
	ErrorTypeDeadlineExceeded    ErrorType = "deadline_exceeded"
	ErrorTypeProtocol            ErrorType = "protocol"
	ErrorTypeInternal            ErrorType = "internal"
	ErrorTypeConfig              ErrorType = "config"
)

// typed is implemented by every error kind in this package.
type typed interface {
	Type() ErrorType
}

// TypeOf returns the ErrorType of the first typed error in err's chain.
// Errors from outside this package classify as Internal.
func TypeOf(err error) ErrorType {
	var t typed
	if stderrors.As(err, &t) {
		return t.Type()
	}
	return ErrorTypeInternal
}

// IOError wraps a filesystem failure (read, stat, walk).
type IOError struct {
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

func NewIOError(op, path string, err error) *IOError {
	return &IOError{Operation: op, Path: path, Underlying: err, Timestamp: time.Now()}
}

func (e *IOError) Error() string {
	return fmt.Sprintf("io: %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}
func (e *IOError) Unwrap() error   { return e.Underlying }
func (e *IOError) Type() ErrorType { return ErrorTypeIO }

// UnsupportedLanguageError is returned when a file's extension has no
// registered grammar.
type UnsupportedLanguageError struct {
	Path      string
	Extension string
}

func NewUnsupportedLanguageError(path, ext string) *UnsupportedLanguageError {
	return &UnsupportedLanguageError{Path: path, Extension: ext}
}

func (e *UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("unsupported language for %s (extension %q)", e.Path, e.Extension)
}
func (e *UnsupportedLanguageError) Type() ErrorType { return ErrorTypeUnsupportedLanguage }

// ParseError represents a tree-sitter parse failure or a parse that produced
// an ERROR/MISSING node at the reported position.
type ParseError struct {
	Path       string
	Line       int
	Column     int
	Token      string
	Underlying error
	Timestamp  time.Time
}

func NewParseError(path string, line, column int, token string, err error) *ParseError {
	return &ParseError{Path: path, Line: line, Column: column, Token: token, Underlying: err, Timestamp: time.Now()}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %s:%d:%d (near %q): %v", e.Path, e.Line, e.Column, e.Token, e.Underlying)
}
func (e *ParseError) Unwrap() error   { return e.Underlying }
func (e *ParseError) Type() ErrorType { return ErrorTypeParse }

// QueryError represents a malformed or failed tree-sitter query.
type QueryError struct {
	Language   string
	Underlying error
}

func NewQueryError(language string, err error) *QueryError {
	return &QueryError{Language: language, Underlying: err}
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query error for language %s: %v", e.Language, e.Underlying)
}
func (e *QueryError) Unwrap() error   { return e.Underlying }
func (e *QueryError) Type() ErrorType { return ErrorTypeQuery }

// NotFoundError is returned when a requested symbol, file, or FQN has no
// entry in the graph. Suggestions holds near-miss names for a "did you
// mean" hint; it never causes silent resolution.
type NotFoundError struct {
	Kind        string // "symbol", "file", "fqn"
	Query       string
	Suggestions []string
}

func NewNotFoundError(kind, query string, suggestions []string) *NotFoundError {
	return &NotFoundError{Kind: kind, Query: query, Suggestions: suggestions}
}

func (e *NotFoundError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("%s not found: %q", e.Kind, e.Query)
	}
	return fmt.Sprintf("%s not found: %q (did you mean: %v?)", e.Kind, e.Query, e.Suggestions)
}

func (e *NotFoundError) Type() ErrorType { return ErrorTypeNotFound }

// NotReadyError is returned by graph-dependent operations before the
// initial build has completed.
type NotReadyError struct {
	Operation string
}

func NewNotReadyError(operation string) *NotReadyError {
	return &NotReadyError{Operation: operation}
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("graph not ready: %s", e.Operation)
}
func (e *NotReadyError) Type() ErrorType { return ErrorTypeNotReady }

// CancelledError wraps a context.Canceled-triggered abort.
type CancelledError struct {
	Operation  string
	Underlying error
}

func NewCancelledError(operation string, err error) *CancelledError {
	return &CancelledError{Operation: operation, Underlying: err}
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("%s cancelled: %v", e.Operation, e.Underlying)
}
func (e *CancelledError) Unwrap() error   { return e.Underlying }
func (e *CancelledError) Type() ErrorType { return ErrorTypeCancelled }

// DeadlineExceededError wraps a context.DeadlineExceeded-triggered abort.
type DeadlineExceededError struct {
	Operation  string
	Underlying error
}

func NewDeadlineExceededError(operation string, err error) *DeadlineExceededError {
	return &DeadlineExceededError{Operation: operation, Underlying: err}
}

func (e *DeadlineExceededError) Error() string {
	return fmt.Sprintf("%s exceeded its deadline: %v", e.Operation, e.Underlying)
}
func (e *DeadlineExceededError) Unwrap() error   { return e.Underlying }
func (e *DeadlineExceededError) Type() ErrorType { return ErrorTypeDeadlineExceeded }

// ProtocolError represents a malformed request at the MCP transport layer
// (bad JSON-RPC envelope, unknown tool name, schema validation failure).
type ProtocolError struct {
	Detail     string
	Underlying error
}

func NewProtocolError(detail string, err error) *ProtocolError {
	return &ProtocolError{Detail: detail, Underlying: err}
}

func (e *ProtocolError) Error() string {
	if e.Underlying == nil {
		return fmt.Sprintf("protocol error: %s", e.Detail)
	}
	return fmt.Sprintf("protocol error: %s: %v", e.Detail, e.Underlying)
}
func (e *ProtocolError) Unwrap() error   { return e.Underlying }
func (e *ProtocolError) Type() ErrorType { return ErrorTypeProtocol }

// InternalError represents a condition that should never happen: an
// invariant violation, not a caller mistake.
type InternalError struct {
	Detail     string
	Underlying error
}

func NewInternalError(detail string, err error) *InternalError {
	return &InternalError{Detail: detail, Underlying: err}
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error: %s: %v", e.Detail, e.Underlying)
}
func (e *InternalError) Unwrap() error   { return e.Underlying }
func (e *InternalError) Type() ErrorType { return ErrorTypeInternal }

// ConfigError represents a configuration validation failure.
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{Field: field, Value: value, Underlying: err, Timestamp: time.Now()}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}
func (e *ConfigError) Unwrap() error   { return e.Underlying }
func (e *ConfigError) Type() ErrorType { return ErrorTypeConfig }

// MultiError aggregates independent failures from a fan-out operation
// (e.g. several files failing to parse during a build).
type MultiError struct {
	Errors []error
}

func NewMultiError(errs []error) *MultiError {
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

func (e *MultiError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "no errors"
	case 1:
		return e.Errors[0].Error()
	default:
		return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
	}
}
func (e *MultiError) Unwrap() []error { return e.Errors }
