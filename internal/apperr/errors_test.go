package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestInvalid(t *testing.T) {
	if Invalid(nil) != nil {
		t.Fatal("Invalid(nil) should be nil")
	}

	err := fmt.Errorf("create item: %w", Invalid(errors.New("title: cannot be blank.")))
	if !errors.Is(err, ErrValidation) {
		t.Error("wrapped validation error should match ErrValidation")
	}

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatal("expected *ValidationError in chain")
	}
	if ve.Msg != "title: cannot be blank." {
		t.Errorf("Msg = %q", ve.Msg)
	}
}

func TestNotFound(t *testing.T) {
	err := NotFound("blog post")
	if !errors.Is(err, ErrNotFound) {
		t.Error("NotFound should match ErrNotFound")
	}
	if err.Error() != "blog post not found" {
		t.Errorf("Error() = %q", err.Error())
	}
}
