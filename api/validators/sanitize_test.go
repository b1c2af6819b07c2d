package validators

import (
	"testing"
	"unicode/utf8"
)

func TestSanitizeString(t *testing.T) {
	cases := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{name: "trims", input: "  toy story ", maxLen: 50, want: "toy story"},
		{name: "no limit", input: " mulan ", maxLen: 0, want: "mulan"},
		{name: "cuts ascii", input: "frozen", maxLen: 3, want: "fro"},
		{name: "backs off a split rune", input: "Pequeño", maxLen: 6, want: "Peque"},
		{name: "keeps a whole rune", input: "Pequeño", maxLen: 7, want: "Pequeñ"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SanitizeString(tc.input, tc.maxLen)
			if got != tc.want {
				t.Fatalf("expected %q got %q", tc.want, got)
			}
			if !utf8.ValidString(got) {
				t.Fatalf("result is not valid utf-8: %q", got)
			}
		})
	}
}
