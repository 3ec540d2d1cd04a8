package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidLambda, "lambda %g", 1.5)

	if err.Code != ErrCodeInvalidLambda {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidLambda)
	}

	if err.Message != "lambda 1.5" {
		t.Errorf("Message = %v, want %v", err.Message, "lambda 1.5")
	}

	expected := "INVALID_LAMBDA: lambda 1.5"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("no such file")
	err := Wrap(ErrCodeFileNotFound, cause, "open dem.asc")

	if err.Code != ErrCodeFileNotFound {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeFileNotFound)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	if unwrapped := errors.Unwrap(err); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}

	want := "FILE_NOT_FOUND: open dem.asc: no such file"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeInvalidMetric, "test"),
			code:     ErrCodeInvalidMetric,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeInvalidMetric, "test"),
			code:     ErrCodeMissingNetwork,
			expected: false,
		},
		{
			name:     "wrapped with fmt",
			err:      fmt.Errorf("resolve: %w", New(ErrCodeDimensionMismatch, "inner")),
			code:     ErrCodeDimensionMismatch,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeInternal, "x")); got != ErrCodeInternal {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeInternal)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode(plain) = %q, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeInvalidPath, "bad path")); got != "bad path" {
		t.Errorf("UserMessage() = %q, want %q", got, "bad path")
	}
	if got := UserMessage(errors.New("plain")); got != "plain" {
		t.Errorf("UserMessage(plain) = %q, want %q", got, "plain")
	}
}

func TestIsConfig(t *testing.T) {
	tests := []struct {
		code Code
		want bool
	}{
		{ErrCodeInvalidLambda, true},
		{ErrCodeMissingNetwork, true},
		{ErrCodeInvalidMetric, true},
		{ErrCodeDimensionMismatch, true},
		{ErrCodeFileNotFound, false},
		{ErrCodeInternal, false},
	}
	for _, tt := range tests {
		if got := IsConfig(New(tt.code, "x")); got != tt.want {
			t.Errorf("IsConfig(%s) = %v, want %v", tt.code, got, tt.want)
		}
	}
}
