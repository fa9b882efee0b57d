package errs

import (
	"errors"
	"testing"
)

func TestPipelineErrorUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(IO, "scratch.Write", "failed to persist raster", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("errors.Is should find the wrapped cause")
	}
	var pe *PipelineError
	if !errors.As(err, &pe) {
		t.Fatalf("errors.As should match *PipelineError")
	}
	if pe.Kind != IO || pe.Stage != "scratch.Write" {
		t.Fatalf("unexpected fields: %+v", pe)
	}
}

func TestPipelineErrorRetryable(t *testing.T) {
	err := New(Algorithmic, "tilestats.Select", "no heterogeneous tiles", nil).WithRetryable()
	if !err.Retryable {
		t.Fatalf("WithRetryable should set Retryable=true")
	}
}

func TestKindString(t *testing.T) {
	if Input.String() != "input" || Algorithmic.String() != "algorithmic" {
		t.Fatalf("unexpected Kind.String() values")
	}
}
