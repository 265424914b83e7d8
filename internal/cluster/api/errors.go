package api

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a failed peer request. The numeric values are
// part of the report format and must stay stable.
type ErrorCode int

const (
	CodeTimeout          ErrorCode = 1
	CodeTooManyRedirects ErrorCode = 2
	CodeRequestFailed    ErrorCode = 3
	CodeUnknown          ErrorCode = 4
	CodeDecodeFailed     ErrorCode = 5
	CodeUnauthorized     ErrorCode = 401
)

var errorCodeNames = map[ErrorCode]string{
	CodeTimeout:          "timeout",
	CodeTooManyRedirects: "too_many_redirects",
	CodeRequestFailed:    "request_failed",
	CodeUnknown:          "unknown",
	CodeDecodeFailed:     "decode_failed",
	CodeUnauthorized:     "unauthorized",
}

func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("code_%d", int(c))
}

// ErrTooManyRedirects is returned by the client's redirect policy and
// surfaces as CodeTooManyRedirects.
var ErrTooManyRedirects = errors.New("api: stopped after too many redirects")

// TransportError is any failed peer request. It is always returned as
// a value and recorded by the caller, never treated as fatal.
type TransportError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	URL     string    `json:"url,omitempty"`

	err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("api: %s (%d): %s", e.Code, int(e.Code), e.Message)
}

func (e *TransportError) Unwrap() error { return e.err }

func newTransportError(code ErrorCode, url string, err error) *TransportError {
	return &TransportError{
		Code:    code,
		Message: err.Error(),
		URL:     url,
		err:     err,
	}
}
