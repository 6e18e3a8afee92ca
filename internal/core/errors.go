package core

import "errors"

// Error codes carried on EventError payloads.
const (
	ErrCodeClientNotFound = "client_not_found"
	ErrCodeGroupNotFound  = "group_not_found"
	ErrCodeProvider       = "provider_error"
	ErrCodeQueryFailed    = "query_failed"
)

var (
	// ErrClientNotFound means no live client resolved for the given target.
	ErrClientNotFound = errors.New("client not found")
	// ErrGroupNotFound means no server group resolved by name or id.
	ErrGroupNotFound = errors.New("group not found")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
