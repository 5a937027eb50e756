package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestExternalServiceError_WrapsAndUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewExternalServiceError("smoobu", cause)

	if !errors.Is(err, cause) {
		t.Error("Expected errors.Is to reach the cause")
	}
	if !IsExternal(err) {
		t.Error("Expected IsExternal to match")
	}
	if !IsExternal(fmt.Errorf("poll cycle: %w", err)) {
		t.Error("Expected IsExternal to match through wrapping")
	}

	var ext *ExternalServiceError
	if !errors.As(err, &ext) || ext.Service != "smoobu" {
		t.Errorf("Expected service name preserved, got %+v", ext)
	}
}

func TestNewExternalServiceError_NilPassthrough(t *testing.T) {
	if err := NewExternalServiceError("lark", nil); err != nil {
		t.Errorf("Expected nil for nil cause, got %v", err)
	}
}

func TestIsExternal_PlainError(t *testing.T) {
	if IsExternal(errors.New("plain")) {
		t.Error("Expected plain error to not match")
	}
	if IsExternal(ErrConflict) {
		t.Error("Expected sentinel to not match")
	}
}
