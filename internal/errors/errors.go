// Package errors provides standardized error codes for the tagdeck client.
//
// Error codes follow the format {domain}.{error} where:
//   - domain: The subsystem that generated the error (api, session, history, undo, config, profiles, discovery)
//   - error: The specific error type within that domain
//
// These codes are stable and can be used by command-line callers and tests for
// programmatic error handling. Human-readable messages are provided alongside codes.
package errors

import (
	"errors"
	"fmt"
)

// Error codes by domain.
// These are stable identifiers that callers can rely on for error handling.
const (
	// API domain - HTTP boundary with the metadata server
	CodeAPIUnreachable   = "api.unreachable"    // Server could not be reached
	CodeAPITimeout       = "api.timeout"        // Request exceeded its deadline
	CodeAPIStatus        = "api.status"         // Server returned a non-success status
	CodeAPIDecodeFailed  = "api.decode_failed"  // Response body could not be decoded
	CodeAPINotFound      = "api.not_found"      // Resource does not exist on the server
	CodeAPIInvalidServer = "api.invalid_server" // Server URL is malformed or empty

	// Session domain - current file/folder state
	CodeSessionNoFile    = "session.no_file"    // No file is selected
	CodeSessionNoFolder  = "session.no_folder"  // No folder is selected
	CodeSessionStaleLoad = "session.stale_load" // Load response superseded by a newer request

	// History domain - mirrored action log
	CodeHistoryNotFound    = "history.not_found"    // Action id not present in the mirror
	CodeHistoryNoSelection = "history.no_selection" // No action is selected
	CodeHistoryBusy        = "history.busy"         // Action already has a reversal in flight

	// Undo domain - reversal orchestration
	CodeUndoFailed     = "undo.failed"      // Server reported the reversal failed
	CodeUndoPartial    = "undo.partial"     // Reversal applied to some files only
	CodeUndoNotAllowed = "undo.not_allowed" // Action is not in a reversible state

	// Config domain - TOML configuration
	CodeConfigReadFailed  = "config.read_failed"  // Config file could not be read
	CodeConfigParseFailed = "config.parse_failed" // Config file is not valid TOML
	CodeConfigInvalid     = "config.invalid"      // Config value out of range

	// Profiles domain - known-servers store
	CodeProfilesOpenFailed  = "profiles.open_failed"  // Database open failed
	CodeProfilesQueryFailed = "profiles.query_failed" // Database query failed
	CodeProfilesNotFound    = "profiles.not_found"    // Server profile not found
	CodeProfilesDuplicate   = "profiles.duplicate"    // Profile name already in use

	// Discovery domain - mDNS browse
	CodeDiscoveryFailed = "discovery.failed" // mDNS browse failed

	// General domain - catch-all errors
	CodeUnknown  = "error.unknown"  // Unknown error
	CodeInternal = "error.internal" // Internal client error
)

// CodedError wraps an error with a stable error code.
// This allows errors to carry both a code for programmatic handling
// and a message for human consumption.
type CodedError struct {
	Code    string // Stable error code (e.g., "api.unreachable")
	Message string // Human-readable error message
	Cause   error  // Underlying error (may be nil)
}

// Error implements the error interface.
func (e *CodedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *CodedError) Unwrap() error {
	return e.Cause
}

// New creates a new CodedError with the given code and message.
func New(code, message string) *CodedError {
	return &CodedError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new CodedError wrapping an existing error.
func Wrap(code, message string, cause error) *CodedError {
	return &CodedError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// GetCode extracts the error code from an error.
// If the error is a CodedError, returns its code.
// Falls back to CodeUnknown for unrecognized errors.
func GetCode(err error) string {
	if err == nil {
		return ""
	}

	var coded *CodedError
	if errors.As(err, &coded) {
		return coded.Code
	}

	return CodeUnknown
}

// GetMessage extracts a human-readable message from an error.
// If the error is a CodedError, returns its message.
// Otherwise, returns the error's Error() string.
func GetMessage(err error) string {
	if err == nil {
		return ""
	}

	var coded *CodedError
	if errors.As(err, &coded) {
		return coded.Message
	}

	return err.Error()
}

// ToCodeAndMessage extracts both code and message from an error.
// This is the primary function for converting errors to status lines.
func ToCodeAndMessage(err error) (code, message string) {
	if err == nil {
		return "", ""
	}

	var coded *CodedError
	if errors.As(err, &coded) {
		return coded.Code, coded.Message
	}

	return CodeUnknown, err.Error()
}

// IsCode checks if an error has a specific error code.
func IsCode(err error, code string) bool {
	return GetCode(err) == code
}

// Common error constructors for frequently used error types.

// Unreachable creates an "api.unreachable" error.
func Unreachable(serverURL string, cause error) *CodedError {
	msg := fmt.Sprintf("server %s could not be reached", serverURL)
	return Wrap(CodeAPIUnreachable, msg, cause)
}

// Status creates an "api.status" error for an unexpected HTTP status.
func Status(method, path string, status int) *CodedError {
	msg := fmt.Sprintf("%s %s returned status %d", method, path, status)
	return New(CodeAPIStatus, msg)
}

// DecodeFailed creates an "api.decode_failed" error.
func DecodeFailed(path string, cause error) *CodedError {
	msg := fmt.Sprintf("could not decode response from %s", path)
	return Wrap(CodeAPIDecodeFailed, msg, cause)
}

// APINotFound creates an "api.not_found" error.
func APINotFound(resource string) *CodedError {
	return New(CodeAPINotFound, fmt.Sprintf("%s not found", resource))
}

// InvalidServer creates an "api.invalid_server" error.
func InvalidServer(serverURL string) *CodedError {
	return New(CodeAPIInvalidServer, fmt.Sprintf("invalid server URL: %q", serverURL))
}

// NoFileSelected creates a "session.no_file" error.
func NoFileSelected() *CodedError {
	return New(CodeSessionNoFile, "no file is selected")
}

// StaleLoad creates a "session.stale_load" error.
// This indicates a load response arrived after a newer request was issued.
// Callers discard the payload silently; the error exists for logging only.
func StaleLoad(ticket int64) *CodedError {
	return New(CodeSessionStaleLoad, fmt.Sprintf("load %d superseded by a newer request", ticket))
}

// ActionNotFound creates a "history.not_found" error.
func ActionNotFound(actionID string) *CodedError {
	return New(CodeHistoryNotFound, fmt.Sprintf("action %s not found in history", actionID))
}

// ActionBusy creates a "history.busy" error.
// This indicates the action already has an undo or redo in flight.
func ActionBusy(actionID string) *CodedError {
	return New(CodeHistoryBusy, fmt.Sprintf("action %s already has a reversal in flight", actionID))
}

// UndoFailed creates an "undo.failed" error carrying the server's message.
// It covers both reversal directions; redo failures share the undo domain.
func UndoFailed(actionID, serverMsg string) *CodedError {
	msg := fmt.Sprintf("reversal of action %s failed", actionID)
	if serverMsg != "" {
		msg = fmt.Sprintf("%s: %s", msg, serverMsg)
	}
	return New(CodeUndoFailed, msg)
}

// ConfigInvalid creates a "config.invalid" error.
func ConfigInvalid(field, reason string) *CodedError {
	return New(CodeConfigInvalid, fmt.Sprintf("invalid %s: %s", field, reason))
}

// ProfileNotFound creates a "profiles.not_found" error.
func ProfileNotFound(name string) *CodedError {
	return New(CodeProfilesNotFound, fmt.Sprintf("server profile %q not found", name))
}

// ProfileDuplicate creates a "profiles.duplicate" error.
func ProfileDuplicate(name string) *CodedError {
	return New(CodeProfilesDuplicate, fmt.Sprintf("server profile %q already exists", name))
}

// Internal creates an "error.internal" error.
func Internal(message string, cause error) *CodedError {
	return Wrap(CodeInternal, message, cause)
}
