package errs_test

import (
	"errors"
	"strings"
	"testing"

	"ludex/internal/errs"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("read /dev/null: boom")
	err := errs.Wrap(errs.ErrFileRead, "romid", "ps2 serial", "bounded read", base)
	if !errors.Is(err, errs.ErrFileRead) {
		t.Fatalf("expected ErrFileRead marker, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped cause to survive, got %v", err)
	}
	for _, fragment := range []string{"romid", "ps2 serial", "bounded read"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("expected %q in %q", fragment, err.Error())
		}
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := errs.Wrap(errs.ErrValidation, "scanner", "", "root is not a directory", nil)
	if !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("expected ErrValidation marker, got %v", err)
	}
}

func TestWrapNilMarkerDefaultsToValidation(t *testing.T) {
	err := errs.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("expected default marker, got %v", err)
	}
}
