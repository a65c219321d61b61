package ports

import (
	"errors"
	"fmt"
	"testing"
)

func TestCause(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"plain", errors.New("boom"), "boom"},
		{"store error", &StoreError{Op: "update media", Cause: CauseRecordNotFound}, CauseRecordNotFound},
		{"wrapped store error", fmt.Errorf("repo: %w", &StoreError{Op: "x", Cause: "c", Err: errors.New("inner")}), "c"},
		{"store error without cause", &StoreError{Op: "x", Err: errors.New("inner")}, "x: inner"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cause(tt.err); got != tt.want {
				t.Errorf("Cause() = %q, want %q", got, tt.want)
			}
		})
	}
}
