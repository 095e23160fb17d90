package fuzz

import (
	"testing"
)

func TestFuzz(t *testing.T) {
	tests := []struct {
		data string
		want int
	}{
		{"f(X, g(X, a)) = f(b, Y).", 1},
		{"p(Z, h(Z, W), f(W)) = p(f(X), h(Y, f(a)), Y)", 1},
		{"f(a) = f(b)", 1},
		{"g(X, X) = g(f(Y), Y)", 1},
		{"f(a, g(a)) = f(b, g(b))", 1},
		{"g(f(X), h(f(X), c)) = g(f(a), h(Y, Y))", 1},
		{"'weird atom'(_, _) = 'weird atom'(a, _)", 1},
		{"X = f(a)", 0},
		{"f(a", 0},
	}
	for _, test := range tests {
		if got := Fuzz([]byte(test.data)); got != test.want {
			t.Errorf("Fuzz(%q) = %d, want %d", test.data, got, test.want)
		}
	}
}
