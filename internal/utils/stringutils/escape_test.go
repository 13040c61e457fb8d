package stringutils

import (
	"regexp"
	"testing"
)

func TestEscapeRegex(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text untouched", "hello world", "hello world"},
		{"dot and star", "a.b*c", `a\.b\*c`},
		{"anchors and classes", "^start[abc]end$", `\^start\[abc]end\$`},
		{"groups and alternation", "(one|two)", `\(one\|two\)`},
		{"braces and plus", "x{2,3}+?", `x\{2,3\}\+\?`},
		{"backslash", `a\b`, `a\\b`},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EscapeRegex(tt.input)
			if got != tt.want {
				t.Errorf("EscapeRegex(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestEscapeRegex_PlainStringsIdempotent(t *testing.T) {
	for _, s := range []string{"alice", "bob smith", "user_42", "", "日本語"} {
		once := EscapeRegex(s)
		twice := EscapeRegex(once)
		if once != s {
			t.Errorf("EscapeRegex(%q) changed a plain string to %q", s, once)
		}
		if twice != once {
			t.Errorf("EscapeRegex not idempotent on plain string %q", s)
		}
	}
}

// The escaped pattern must match the raw input literally and nothing else.
func TestEscapeRegex_CompiledPatternMatchesLiterally(t *testing.T) {
	inputs := []string{"a.b*c", "(one|two)", "x+y?", "[range]", "50% off $10", `back\slash`}
	for _, input := range inputs {
		pattern, err := regexp.Compile("^" + EscapeRegex(input) + "$")
		if err != nil {
			t.Fatalf("escaped pattern for %q does not compile: %v", input, err)
		}
		if !pattern.MatchString(input) {
			t.Errorf("escaped pattern does not match its own input %q", input)
		}
		if input == "a.b*c" && pattern.MatchString("axbc") {
			t.Errorf("escaped pattern for %q still behaves as a wildcard", input)
		}
	}
}
