// Package stringutils holds small string helpers shared across handlers and
// repositories.
package stringutils

import "regexp"

// regexSpecials matches every character that carries meaning inside a
// regular expression pattern.
var regexSpecials = regexp.MustCompile(`[.*+?^${}()|[\]\\]`)

// EscapeRegex escapes user-supplied text so it can be embedded in a
// case-insensitive database regex pattern without metacharacter expansion.
// The escape set is exactly [.*+?^${}()|[\]\\] -> \<char>. Idempotence does
// not hold for already-escaped input (a backslash is itself escaped), so
// callers must escape raw user input exactly once.
func EscapeRegex(s string) string {
	return regexSpecials.ReplaceAllString(s, `\${0}`)
}
