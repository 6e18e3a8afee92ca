package tsquery

import "testing"

func TestEscape(t *testing.T) {
	cases := []struct {
		raw     string
		escaped string
	}{
		{"plain", "plain"},
		{"two words", `two\swords`},
		{`back\slash`, `back\\slash`},
		{"a|b", `a\pb`},
		{"path/to", `path\/to`},
		{"line\nbreak", `line\nbreak`},
		{"tab\there", `tab\there`},
	}

	for _, tc := range cases {
		if got := Escape(tc.raw); got != tc.escaped {
			t.Fatalf("Escape(%q) = %q, want %q", tc.raw, got, tc.escaped)
		}
		if got := Unescape(tc.escaped); got != tc.raw {
			t.Fatalf("Unescape(%q) = %q, want %q", tc.escaped, got, tc.raw)
		}
	}
}

func TestUnescapeLiteralBackslashSequence(t *testing.T) {
	// Escaped backslash followed by a literal 's' must not decode as the
	// space sequence.
	if got := Unescape(`\\s`); got != `\s` {
		t.Fatalf(`Unescape(\\s) = %q, want \s`, got)
	}
}
