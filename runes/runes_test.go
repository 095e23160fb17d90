package runes_test

import (
	"testing"

	"github.com/brunokim/l0/runes"
)

func TestFirst(t *testing.T) {
	tests := []struct {
		s    string
		want rune
		ok   bool
	}{
		{"", 0, false},
		{"abc", 'a', true},
		{"ção", 'ç', true},
		{"\xff", 0, false},
	}
	for _, test := range tests {
		got, ok := runes.First(test.s)
		if got != test.want || ok != test.ok {
			t.Errorf("First(%q) = (%q, %v), want (%q, %v)", test.s, got, ok, test.want, test.ok)
		}
	}
}

func TestIsSpace(t *testing.T) {
	for _, r := range " \t\n\r\x00" {
		if !runes.IsSpace(r) {
			t.Errorf("IsSpace(%q) = false", r)
		}
	}
	for _, r := range "a_(,)'" {
		if runes.IsSpace(r) {
			t.Errorf("IsSpace(%q) = true", r)
		}
	}
}
