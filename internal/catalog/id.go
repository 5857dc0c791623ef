// Package catalog turns the nested prompt document into addressable records
// and provides the pure functions the browser views are built from: id
// derivation, flattening, label normalization and search.
package catalog

import (
	"strconv"
	"strings"
	"unicode/utf16"
)

const (
	// IDPrefix tags every derived catalog id
	IDPrefix = "p"

	// FieldDelimiter separates the four id fields before hashing. A field
	// that itself contains "::" can alias another split of the same text;
	// that case is accepted.
	FieldDelimiter = "::"
)

// DeriveID returns the stable short id of a catalog prompt.
//
// The id is a 32-bit polynomial rolling hash (h*31 + unit) over the UTF-16
// code units of the joined fields, rendered in base 36. It is
// deterministic but not collision free: distinct prompts can share an id.
func DeriveID(tab, section, category, text string) string {
	key := strings.Join([]string{tab, section, category, text}, FieldDelimiter)

	var h int32
	for _, unit := range utf16.Encode([]rune(key)) {
		h = h*31 + int32(unit)
	}

	abs := int64(h)
	if abs < 0 {
		abs = -abs
	}
	return IDPrefix + strconv.FormatInt(abs, 36)
}
