package amcpprotocol

import (
	"errors"
	"fmt"
)

// Sentinel errors for the AMCP client.
var (
	// ErrNotConnected indicates a write was attempted without a connection.
	ErrNotConnected = errors.New("not connected")

	// ErrTimeout indicates a command timed out waiting for a response.
	ErrTimeout = errors.New("command timed out")

	// ErrBusy indicates Send was called while another Send was waiting.
	ErrBusy = errors.New("another command is in flight")

	// ErrClosed indicates the device has been closed.
	ErrClosed = errors.New("device closed")
)

// ParseErrorKind categorizes parsing errors.
type ParseErrorKind int

const (
	// ErrKindMalformedHeader indicates the first token of a header line is
	// not a numeric status code.
	ErrKindMalformedHeader ParseErrorKind = iota
	// ErrKindUnexpectedState indicates the parser was in an unknown state.
	ErrKindUnexpectedState
)

// ParseError represents an error that occurred while parsing a response.
type ParseError struct {
	Kind    ParseErrorKind
	Value   string // The line that caused the error
	Message string // Additional context
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	switch e.Kind {
	case ErrKindMalformedHeader:
		if e.Message != "" {
			return fmt.Sprintf("malformed header '%s': %s", e.Value, e.Message)
		}
		return fmt.Sprintf("malformed header '%s'", e.Value)
	case ErrKindUnexpectedState:
		return fmt.Sprintf("unexpected parser state: %s", e.Message)
	default:
		return fmt.Sprintf("parse error: %s", e.Value)
	}
}

func newMalformedHeaderError(line, msg string) error {
	return &ParseError{Kind: ErrKindMalformedHeader, Value: line, Message: msg}
}

// ConnectionError represents a connection-related error.
type ConnectionError struct {
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("connection failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("connection failed: %s", e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// NewConnectionError creates a new connection error.
func NewConnectionError(message string, cause error) error {
	return &ConnectionError{Message: message, Cause: cause}
}
