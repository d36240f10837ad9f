package gcode

import (
	"errors"
	"fmt"
)

// Error codes reported to the host in E<code> responses.
const (
	CodeStorage          = 3
	CodeChecksum         = 10
	CodeUnknownCommand   = 11
	CodeInvalidParameter = 12
	CodeMalformedPayload = 13
	CodeLineNumber       = 14
	CodeOutput           = 15
)

var (
	// ErrShortBuffer indicates the decode target can't hold the payload.
	ErrShortBuffer = errors.New("short buffer")
	// ErrInvalidPayload indicates a payload containing non-base64 symbols.
	ErrInvalidPayload = errors.New("invalid base64 payload")
)

// Error is a protocol level error, reported to the host as
// "E<code>: <message>" or "N<line> E<code>: <message>".
type Error struct {
	Code    int
	LineNum int64
	Message string
}

// NewError creates an Error not bound to a line number.
func NewError(code int, format string, args ...interface{}) *Error {
	return &Error{Code: code, LineNum: -1, Message: fmt.Sprintf(format, args...)}
}

// WithLineNum returns a copy of the error bound to the line number.
func (e *Error) WithLineNum(n int64) *Error {
	err := *e
	err.LineNum = n
	return &err
}

// Error implements error.
func (e *Error) Error() string {
	return string(AppendError(nil, e.LineNum, e.Code, e.Message))
}

// AsError converts any error into a protocol Error, wrapping foreign
// errors with the fallback code.
func AsError(err error, fallback int) *Error {
	var perr *Error
	if errors.As(err, &perr) {
		return perr
	}
	return &Error{Code: fallback, LineNum: -1, Message: err.Error()}
}
