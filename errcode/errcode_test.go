package errcode

import (
	"errors"
	"testing"
)

func TestOf(t *testing.T) {
	cause := errors.New("nack")
	cases := []struct {
		name string
		err  error
		want Code
	}{
		{"nil", nil, OK},
		{"bare code", StoreTooSmall, StoreTooSmall},
		{"wrapped", &E{C: StoreIO, Op: "persist.save", Err: cause}, StoreIO},
		{"foreign", cause, Error},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Of(tc.err); got != tc.want {
				t.Fatalf("Of(%v) = %q, want %q", tc.err, got, tc.want)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	if Wrap(StoreIO, "x", nil) != nil {
		t.Fatal("Wrap(nil) must be nil")
	}
	cause := errors.New("nack")
	err := Wrap(StoreIO, "persist.save", cause)
	if !errors.Is(err, cause) {
		t.Fatal("wrapped error must unwrap to its cause")
	}
	if got, want := err.Error(), "persist.save: store_io: nack"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}
