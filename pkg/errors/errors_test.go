package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeDanglingEdge, "edge %s references missing node %s", "e1", "ghost")

	if err.Code != ErrCodeDanglingEdge {
		t.Errorf("Code = %q, want %q", err.Code, ErrCodeDanglingEdge)
	}
	if !strings.Contains(err.Error(), "ghost") {
		t.Errorf("Error() = %q, want formatted message", err.Error())
	}
	if !strings.Contains(err.Error(), string(ErrCodeDanglingEdge)) {
		t.Errorf("Error() = %q, should contain the code", err.Error())
	}
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(ErrCodeAlgorithmUnavailable, cause, "load %s", "layered")

	if err.Cause != cause {
		t.Error("Cause not preserved")
	}
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("Error() = %q, should include cause", err.Error())
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{"MatchingCode", New(ErrCodeCyclicParentage, "cycle at n1"), ErrCodeCyclicParentage, true},
		{"DifferentCode", New(ErrCodeCyclicParentage, "cycle at n1"), ErrCodeDanglingEdge, false},
		{"WrappedInFmt", fmt.Errorf("layout: %w", New(ErrCodeInvalidGeometry, "empty path")), ErrCodeInvalidGeometry, true},
		{"PlainError", stderrors.New("plain"), ErrCodeInternal, false},
		{"NilError", nil, ErrCodeInternal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeNotFound, "layout missing")); got != ErrCodeNotFound {
		t.Errorf("GetCode = %q, want %q", got, ErrCodeNotFound)
	}
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("GetCode on plain error = %q, want empty", got)
	}
}
