package errors

import (
	"errors"
	"testing"
)

func TestCodedError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *CodedError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(CodeHistoryNotFound, "action not found"),
			expected: "history.not_found: action not found",
		},
		{
			name:     "error with cause",
			err:      Wrap(CodeAPIUnreachable, "request failed", errors.New("connection refused")),
			expected: "api.unreachable: request failed (connection refused)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestCodedError_Unwrap(t *testing.T) {
	cause := errors.New("original error")
	err := Wrap(CodeInternal, "wrapped", cause)

	if err.Unwrap() != cause {
		t.Error("Unwrap() should return the original cause")
	}

	// Test without cause
	err2 := New(CodeHistoryNotFound, "not found")
	if err2.Unwrap() != nil {
		t.Error("Unwrap() should return nil when no cause")
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
		{
			name:     "CodedError",
			err:      New(CodeHistoryNotFound, "not found"),
			expected: CodeHistoryNotFound,
		},
		{
			name:     "wrapped CodedError",
			err:      Wrap(CodeAPIStatus, "failed", errors.New("cause")),
			expected: CodeAPIStatus,
		},
		{
			name:     "plain error",
			err:      errors.New("some error"),
			expected: CodeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestGetMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
		{
			name:     "CodedError",
			err:      New(CodeHistoryNotFound, "action not found"),
			expected: "action not found",
		},
		{
			name:     "plain error",
			err:      errors.New("some error"),
			expected: "some error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetMessage(tt.err); got != tt.expected {
				t.Errorf("GetMessage() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestToCodeAndMessage(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "CodedError",
			err:         New(CodeHistoryNotFound, "action not found"),
			wantCode:    CodeHistoryNotFound,
			wantMessage: "action not found",
		},
		{
			name:        "plain error",
			err:         errors.New("some error"),
			wantCode:    CodeUnknown,
			wantMessage: "some error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, message := ToCodeAndMessage(tt.err)
			if code != tt.wantCode {
				t.Errorf("ToCodeAndMessage() code = %q, want %q", code, tt.wantCode)
			}
			if message != tt.wantMessage {
				t.Errorf("ToCodeAndMessage() message = %q, want %q", message, tt.wantMessage)
			}
		})
	}
}

func TestIsCode(t *testing.T) {
	err := New(CodeHistoryNotFound, "not found")

	if !IsCode(err, CodeHistoryNotFound) {
		t.Error("IsCode() should return true for matching code")
	}

	if IsCode(err, CodeAPIStatus) {
		t.Error("IsCode() should return false for non-matching code")
	}

	if IsCode(nil, CodeHistoryNotFound) {
		t.Error("IsCode() should return false for nil error")
	}
}

func TestErrorConstructors(t *testing.T) {
	t.Run("Unreachable", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := Unreachable("http://music.local:8338", cause)
		if !IsCode(err, CodeAPIUnreachable) {
			t.Errorf("Unreachable() code = %q, want %q", GetCode(err), CodeAPIUnreachable)
		}
		if err.Message != "server http://music.local:8338 could not be reached" {
			t.Errorf("Unreachable() message = %q", err.Message)
		}
		if err.Cause != cause {
			t.Error("Unreachable() should preserve cause")
		}
	})

	t.Run("Status", func(t *testing.T) {
		err := Status("GET", "/history", 500)
		if !IsCode(err, CodeAPIStatus) {
			t.Errorf("Status() code = %q, want %q", GetCode(err), CodeAPIStatus)
		}
		if err.Message != "GET /history returned status 500" {
			t.Errorf("Status() message = %q", err.Message)
		}
	})

	t.Run("ActionNotFound", func(t *testing.T) {
		err := ActionNotFound("act-42")
		if !IsCode(err, CodeHistoryNotFound) {
			t.Errorf("ActionNotFound() code = %q, want %q", GetCode(err), CodeHistoryNotFound)
		}
		if err.Message != "action act-42 not found in history" {
			t.Errorf("ActionNotFound() message = %q", err.Message)
		}
	})

	t.Run("ActionBusy", func(t *testing.T) {
		err := ActionBusy("act-42")
		if !IsCode(err, CodeHistoryBusy) {
			t.Errorf("ActionBusy() code = %q, want %q", GetCode(err), CodeHistoryBusy)
		}
	})

	t.Run("UndoFailed with server message", func(t *testing.T) {
		err := UndoFailed("act-42", "file is read-only")
		if !IsCode(err, CodeUndoFailed) {
			t.Errorf("UndoFailed() code = %q, want %q", GetCode(err), CodeUndoFailed)
		}
		if err.Message != "reversal of action act-42 failed: file is read-only" {
			t.Errorf("UndoFailed() message = %q", err.Message)
		}
	})

	t.Run("UndoFailed without server message", func(t *testing.T) {
		err := UndoFailed("act-42", "")
		if err.Message != "reversal of action act-42 failed" {
			t.Errorf("UndoFailed() message = %q", err.Message)
		}
	})

	t.Run("StaleLoad", func(t *testing.T) {
		err := StaleLoad(7)
		if !IsCode(err, CodeSessionStaleLoad) {
			t.Errorf("StaleLoad() code = %q, want %q", GetCode(err), CodeSessionStaleLoad)
		}
	})

	t.Run("ProfileNotFound", func(t *testing.T) {
		err := ProfileNotFound("den")
		if !IsCode(err, CodeProfilesNotFound) {
			t.Errorf("ProfileNotFound() code = %q, want %q", GetCode(err), CodeProfilesNotFound)
		}
		if err.Message != `server profile "den" not found` {
			t.Errorf("ProfileNotFound() message = %q", err.Message)
		}
	})

	t.Run("Internal", func(t *testing.T) {
		cause := errors.New("db connection lost")
		err := Internal("database error", cause)
		if !IsCode(err, CodeInternal) {
			t.Errorf("Internal() code = %q, want %q", GetCode(err), CodeInternal)
		}
		if err.Cause != cause {
			t.Error("Internal() should preserve cause")
		}
	})
}

func TestErrorsAs(t *testing.T) {
	// Test that errors.As works with wrapped errors
	cause := errors.New("original")
	coded := Wrap(CodeAPIStatus, "wrapped", cause)
	wrapped := Wrap(CodeInternal, "double wrapped", coded)

	var target *CodedError
	if !errors.As(wrapped, &target) {
		t.Error("errors.As should find CodedError in chain")
	}
	if target.Code != CodeInternal {
		t.Errorf("errors.As should find outermost CodedError, got code %q", target.Code)
	}
}

func TestErrorCodes(t *testing.T) {
	// Verify error code format is {domain}.{error}
	codes := []string{
		CodeAPIUnreachable,
		CodeAPITimeout,
		CodeAPIStatus,
		CodeAPIDecodeFailed,
		CodeAPINotFound,
		CodeAPIInvalidServer,
		CodeSessionNoFile,
		CodeSessionNoFolder,
		CodeSessionStaleLoad,
		CodeHistoryNotFound,
		CodeHistoryNoSelection,
		CodeHistoryBusy,
		CodeUndoFailed,
		CodeUndoPartial,
		CodeUndoNotAllowed,
		CodeConfigReadFailed,
		CodeConfigParseFailed,
		CodeConfigInvalid,
		CodeProfilesOpenFailed,
		CodeProfilesQueryFailed,
		CodeProfilesNotFound,
		CodeProfilesDuplicate,
		CodeDiscoveryFailed,
		CodeUnknown,
		CodeInternal,
	}

	for _, code := range codes {
		if code == "" {
			t.Error("error code should not be empty")
			continue
		}

		// Check format: should contain a dot
		hasDot := false
		for _, c := range code {
			if c == '.' {
				hasDot = true
				break
			}
		}
		if !hasDot {
			t.Errorf("error code %q should be in format {domain}.{error}", code)
		}
	}
}
