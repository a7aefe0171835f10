package errors

import (
	"fmt"
	"testing"
)

func TestWrapPreservesCause(t *testing.T) {
	t.Parallel()

	cause := New(ErrorTypeTruncatedInput, "input ends inside varint")
	err := Wrap(cause, ErrorTypeCorruptIndex, "column segment unreadable")

	if err.Unwrap() != cause {
		t.Error("Unwrap did not return the cause")
	}
	if !IsType(err, ErrorTypeCorruptIndex) {
		t.Error("outer type not reported")
	}
	want := "corrupt_index: column segment unreadable: truncated_input: input ends inside varint"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrapNil(t *testing.T) {
	t.Parallel()

	if Wrap(nil, ErrorTypeInternal, "ignored") != nil {
		t.Error("Wrap(nil) should return nil")
	}
}

func TestTypeOfForeignError(t *testing.T) {
	t.Parallel()

	if got := TypeOf(fmt.Errorf("plain")); got != ErrorTypeInternal {
		t.Errorf("TypeOf(plain) = %s, want internal", got)
	}
}

func TestIsCorruption(t *testing.T) {
	t.Parallel()

	corruption := []ErrorType{
		ErrorTypeBadMagic, ErrorTypeUnsupportedVersion, ErrorTypeTruncatedInput,
		ErrorTypeCorruptIndex, ErrorTypeIntegerOverflow,
	}
	for _, et := range corruption {
		if !IsCorruption(New(et, "x")) {
			t.Errorf("IsCorruption(%s) = false, want true", et)
		}
	}
	for _, et := range []ErrorType{ErrorTypeMalformedRecord, ErrorTypeConfig, ErrorTypeFile, ErrorTypeInternal} {
		if IsCorruption(New(et, "x")) {
			t.Errorf("IsCorruption(%s) = true, want false", et)
		}
	}
}

func TestNewfFormats(t *testing.T) {
	t.Parallel()

	err := Newf(ErrorTypeCorruptIndex, "index %d out of range for %d entries", 7, 2)
	want := "corrupt_index: index 7 out of range for 2 entries"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
