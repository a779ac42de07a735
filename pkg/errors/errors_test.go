package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"
)

func TestCodeOf(t *testing.T) {
	if got := CodeOf(New(CodeNotFound, "missing")); got != CodeNotFound {
		t.Fatalf("got %s", got)
	}
	if got := CodeOf(stdErrors.New("plain")); got != CodeInternal {
		t.Fatalf("plain error should map to internal, got %s", got)
	}
	if got := CodeOf(nil); got != CodeInternal {
		t.Fatalf("nil should map to internal, got %s", got)
	}
}

func TestCodeSurvivesWrapping(t *testing.T) {
	inner := New(CodeUnauthorized, "please log in first")
	wrapped := fmt.Errorf("loading profile: %w", inner)

	if got := CodeOf(wrapped); got != CodeUnauthorized {
		t.Fatalf("got %s", got)
	}
	if As(wrapped) == nil {
		t.Fatal("As should find the coded error through wrapping")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("connection refused")
	err := Wrap(CodeRemote, cause, "request failed")

	if !stdErrors.Is(err, cause) {
		t.Fatal("cause lost in wrapping")
	}
	if err.Code() != CodeRemote {
		t.Fatalf("code %s", err.Code())
	}
}

func TestNoticePrefersMessage(t *testing.T) {
	if got := New(CodeValidation, "name is too short").Notice(); got != "name is too short" {
		t.Fatalf("got %q", got)
	}
	if got := New(CodeRemote, "").Notice(); got != MetadataFor(CodeRemote).Notice {
		t.Fatalf("got %q", got)
	}
}

func TestMetadataForUnknownCode(t *testing.T) {
	meta := MetadataFor(Code("MADE_UP"))
	if meta.Notice != MetadataFor(CodeInternal).Notice {
		t.Fatalf("unknown code should fall back to internal metadata, got %+v", meta)
	}
}

func TestDetailsRoundTrip(t *testing.T) {
	err := New(CodeValidation, "validation failed").WithDetails(map[string]string{"email": "must be a valid email"})
	fields, ok := err.Details().(map[string]string)
	if !ok || fields["email"] == "" {
		t.Fatalf("details %v", err.Details())
	}
}
