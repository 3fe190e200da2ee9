package canon_test

import (
	"testing"

	"thingsync/internal/canon"
)

func TestTitle(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "Buy Milk", "buy milk"},
		{"trims", "  buy milk  ", "buy milk"},
		{"collapses internal whitespace", "buy\t  milk\n now", "buy milk now"},
		{"empty", "", ""},
		{"whitespace only", " \t\n ", ""},
		{"preserves unicode", "Étude für Klavier", "étude für klavier"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := canon.Title(tt.in); got != tt.want {
				t.Errorf("Title(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTitleIdempotent(t *testing.T) {
	inputs := []string{"Buy Milk", "  A  B  C  ", "already canonical"}
	for _, in := range inputs {
		once := canon.Title(in)
		twice := canon.Title(once)
		if once != twice {
			t.Errorf("Title not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}
