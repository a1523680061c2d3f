package keel

import (
	"errors"
	"fmt"
	"testing"
)

var errTestCause = errors.New("underlying cause")

func TestFrameworkError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *FrameworkError
		want string
	}{
		{
			name: "with cause",
			err:  NewFrameworkError(KindConfig, "load config", errTestCause),
			want: "load config: underlying cause",
		},
		{
			name: "without cause",
			err:  NewFrameworkError(KindComponent, "boot halted", nil),
			want: "boot halted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFrameworkError_Unwrap(t *testing.T) {
	err := NewFrameworkError(KindIO, "read source", errTestCause)

	if !errors.Is(err, errTestCause) {
		t.Error("errors.Is should see the cause through Unwrap")
	}

	var fe *FrameworkError
	if !errors.As(err, &fe) {
		t.Fatal("errors.As should extract *FrameworkError")
	}
	if fe.Kind() != KindIO {
		t.Errorf("Kind() = %v, want %v", fe.Kind(), KindIO)
	}
}

func TestFrameworkError_DoubleWrappedSentinels(t *testing.T) {
	// The framework wraps both a sentinel and the component's own error
	// into a single cause chain; errors.Is must see each of them.
	componentErr := errors.New("db connection refused")
	err := NewFrameworkError(KindComponent, `boot halted at component "database"`,
		fmt.Errorf("%w: %w", ErrComponentInitFailed, componentErr))

	if !errors.Is(err, ErrComponentInitFailed) {
		t.Error("expected errors.Is to match ErrComponentInitFailed")
	}
	if !errors.Is(err, componentErr) {
		t.Error("expected errors.Is to match the component's own error")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil error", nil, KindOther},
		{"plain error", errors.New("plain"), KindOther},
		{"config error", NewFrameworkError(KindConfig, "m", nil), KindConfig},
		{"component error", NewFrameworkError(KindComponent, "m", nil), KindComponent},
		{"io error", NewFrameworkError(KindIO, "m", nil), KindIO},
		{"parse error", NewFrameworkError(KindParse, "m", nil), KindParse},
		{
			name: "wrapped framework error",
			err:  fmt.Errorf("outer: %w", NewFrameworkError(KindParse, "m", nil)),
			want: KindParse,
		},
		{
			name: "outermost kind wins",
			err: NewFrameworkError(KindComponent, "outer",
				NewFrameworkError(KindConfig, "inner", nil)),
			want: KindComponent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorKind_String(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindOther, "other"},
		{KindConfig, "config"},
		{KindComponent, "component"},
		{KindIO, "io"},
		{KindParse, "parse"},
		{ErrorKind(42), "other"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", int(tt.kind), got, tt.want)
		}
	}
}
