package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestDownloadError_Is(t *testing.T) {
	cause := errors.New("timeout")

	failed := &DownloadError{Kind: DownloadFailed, Attempts: 3, Err: cause}
	if !errors.Is(failed, ErrRetriesExhausted) || errors.Is(failed, ErrSizeExceeded) {
		t.Error("failed download should match ErrRetriesExhausted only")
	}
	if !errors.Is(failed, cause) {
		t.Error("expected cause to be unwrapped")
	}

	tooLarge := fmt.Errorf("pipeline: %w", &DownloadError{Kind: DownloadTooLarge, Size: 60 << 20})
	if !errors.Is(tooLarge, ErrSizeExceeded) || errors.Is(tooLarge, ErrRetriesExhausted) {
		t.Error("oversized download should match ErrSizeExceeded only")
	}
}

func TestParseVariant(t *testing.T) {
	for _, v := range Variants {
		got, err := ParseVariant(string(v))
		if err != nil || got != v {
			t.Errorf("ParseVariant(%q) = %q, %v", v, got, err)
		}
	}
	if _, err := ParseVariant("gif"); !errors.Is(err, ErrUnknownVariant) {
		t.Errorf("expected ErrUnknownVariant, got %v", err)
	}
}
