package apperrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		kind Kind
	}{
		{Validation("qty", "quantity must be greater than 0"), KindValidation},
		{Reference("itemId", "item does not exist"), KindReference},
		{NotFound("item", 7), KindNotFound},
		{Conflict("sku", "already exists"), KindConflict},
		{Unavailable("balances are unavailable", errors.New("view missing")), KindUnavailable},
	}

	for _, tt := range tests {
		kind, ok := KindOf(tt.err)
		if !ok || kind != tt.kind {
			t.Errorf("KindOf(%v) = (%v, %v), want (%v, true)", tt.err, kind, ok, tt.kind)
		}
	}
}

func TestKindOfUntyped(t *testing.T) {
	if _, ok := KindOf(errors.New("plain")); ok {
		t.Error("expected KindOf to reject an untyped error")
	}
	if _, ok := KindOf(nil); ok {
		t.Error("expected KindOf to reject nil")
	}
}

func TestKindOfWrapped(t *testing.T) {
	wrapped := fmt.Errorf("append failed: %w", Reference("locationId", "location does not exist"))
	if !Is(wrapped, KindReference) {
		t.Errorf("expected wrapped error to keep its kind, got %v", wrapped)
	}
}

func TestUnavailableKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Unavailable("balances are unavailable", cause)
	if !errors.Is(err, cause) {
		t.Error("expected Unavailable to wrap its cause")
	}
}

func TestErrorMessageIncludesField(t *testing.T) {
	err := Validation("qty", "quantity must be greater than 0")
	want := "validation: qty: quantity must be greater than 0"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	err = NotFound("move", 3)
	want = "not_found: move 3 not found"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
