package metronomeerr

import (
	"errors"
	"testing"
)

func TestUnwrapAndIs(t *testing.T) {
	cause := errors.New("disk full")
	err := IoError("could not write frame", cause)
	if !errors.Is(err, cause) {
		t.Fatal("errors.Is should see through Unwrap to the cause")
	}
}

func TestAsRecoversKind(t *testing.T) {
	err := error(InvalidState("not recording"))
	var me *Error
	if !errors.As(err, &me) {
		t.Fatal("errors.As should recover *Error")
	}
	if me.Kind != InvalidStateKind {
		t.Fatalf("Kind = %v, want InvalidStateKind", me.Kind)
	}
}
