package types

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{"message only", NewAppError(ErrConfig, "missing key", nil), "missing key"},
		{"with details", NewAppErrorWithDetails(ErrParse, "bad markup", "no body", nil), "bad markup: no body"},
		{"with cause", NewAppError(ErrExtraction, "request failed", errors.New("timeout")), "request failed: timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCodeOf(t *testing.T) {
	cause := errors.New("boom")
	wrapped := fmt.Errorf("document a.pdf: %w", NewAppError(ErrTranslation, "chunk 2 failed", cause))

	if got := CodeOf(wrapped); got != ErrTranslation {
		t.Errorf("CodeOf(wrapped) = %s, want %s", got, ErrTranslation)
	}
	if !errors.Is(wrapped, cause) {
		t.Error("expected cause to be reachable through Unwrap")
	}
	if got := CodeOf(errors.New("plain")); got != ErrInternal {
		t.Errorf("CodeOf(plain) = %s, want %s", got, ErrInternal)
	}
	if IsCode(nil, ErrInternal) {
		t.Error("IsCode(nil) should be false")
	}
}

func TestErrorCode_IsFatal(t *testing.T) {
	fatal := map[ErrorCode]bool{
		ErrConfig:           true,
		ErrFilesystem:       true,
		ErrExtraction:       false,
		ErrParse:            false,
		ErrTranslation:      false,
		ErrTranslationQuota: false,
		ErrRender:           false,
		ErrInternal:         false,
	}
	for code, want := range fatal {
		if got := code.IsFatal(); got != want {
			t.Errorf("%s.IsFatal() = %v, want %v", code, got, want)
		}
	}
}

func TestHasCode(t *testing.T) {
	quota := NewAppError(ErrTranslationQuota, "quota exceeded", nil)
	wrapped := NewAppErrorWithDetails(ErrTranslation, "translation failed", "chunk 1 of 2", quota)

	if CodeOf(wrapped) != ErrTranslation {
		t.Errorf("CodeOf(wrapped) = %s", CodeOf(wrapped))
	}
	if !HasCode(wrapped, ErrTranslationQuota) {
		t.Error("expected quota code to be found in the chain")
	}
	if HasCode(wrapped, ErrParse) || HasCode(nil, ErrParse) {
		t.Error("unexpected code match")
	}
}
