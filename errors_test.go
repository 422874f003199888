package action

import (
	"errors"
	"strings"
	"testing"
)

func TestValidationAccumulator(t *testing.T) {
	t.Run("no errors yields nil", func(t *testing.T) {
		var acc ValidationAccumulator
		if acc.HasErrors() {
			t.Error("expected no errors")
		}
		if err := acc.Result(); err != nil {
			t.Errorf("expected nil result, got %v", err)
		}
	})

	t.Run("accumulates multiple fields before raising once", func(t *testing.T) {
		var acc ValidationAccumulator
		acc.AddError("name", "cannot be empty")
		acc.AddError("url", "malformed")

		err := acc.Result()
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("expected *ValidationError, got %T", err)
		}
		if len(ve.Errors) != 2 {
			t.Errorf("expected 2 field errors, got %d", len(ve.Errors))
		}
		if !errors.Is(err, ErrValidation) {
			t.Error("expected validation sentinel to match")
		}
	})
}

func TestErrorMessages(t *testing.T) {
	ve := &ValidationError{Errors: map[string]string{"url": "malformed", "name": "empty"}}
	msg := ve.Error()
	if !strings.Contains(msg, "name: empty") || !strings.Contains(msg, "url: malformed") {
		t.Errorf("expected both fields in message, got %q", msg)
	}
	// fields render sorted for stable logs
	if strings.Index(msg, "name") > strings.Index(msg, "url") {
		t.Errorf("expected sorted field order, got %q", msg)
	}

	ae := NewAuthorizationError("not a coordinator")
	if !errors.Is(ae, ErrAuthorization) {
		t.Error("expected authorization sentinel to match")
	}
	if !strings.Contains(ae.Error(), "not a coordinator") {
		t.Errorf("unexpected message %q", ae.Error())
	}

	inner := errors.New("bad context shape")
	ee := NewExecutionError("task strategy invoked without task context", inner)
	if !errors.Is(ee, inner) {
		t.Error("expected execution error to unwrap to cause")
	}
}
