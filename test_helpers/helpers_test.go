package test_helpers_test

import (
	"testing"

	"github.com/brunokim/l0/test_helpers"
)

func TestDedent(t *testing.T) {
	tests := []struct {
		text, want string
	}{
		{"", ""},
		{"  a", "a"},
		{"\n    a\n      b\n    c\n  ", "a\n  b\nc"},
		{"\n\t\ta\n\n\t\t\tb", "a\n\n\tb"},
		{"\n\ta\n   \n\tb", "a\n\nb"},
	}
	for _, test := range tests {
		if got := test_helpers.Dedent(test.text); got != test.want {
			t.Errorf("Dedent(%q) = %q, want %q", test.text, got, test.want)
		}
	}
}
