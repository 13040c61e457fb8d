// Package idgen mints the prefixed ULID identifiers used as public resource
// IDs (user_, ent_, chat_, msg_, mem_, fb_, sreq_, share_). ULIDs carry a
// timestamp component, so IDs sort by creation time.
package idgen

import (
	"strings"

	"github.com/oklog/ulid/v2"
)

// NewPublicID returns a "<prefix>_<ulid>" string with the ULID lowercased.
func NewPublicID(prefix string) string {
	return prefix + "_" + strings.ToLower(ulid.Make().String())
}

// IsValid reports whether value is a ULID carrying the prefix.
func IsValid(prefix, value string) bool {
	_, err := Parse(prefix, value)
	return err == nil
}

// Parse strips the prefix and returns the ULID.
func Parse(prefix, value string) (ulid.ULID, error) {
	value = strings.TrimSpace(value)
	value = strings.TrimPrefix(value, prefix+"_")
	return ulid.Parse(value)
}
