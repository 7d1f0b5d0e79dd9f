package dataset

import (
	"strings"
	"unicode/utf8"
)

// FIPSWidth is the canonical width of a county FIPS code.
const FIPSWidth = 5

// NormalizeFIPS left-pads id with zeros to FIPSWidth characters.
// Longer identifiers are returned unchanged.
func NormalizeFIPS(id string) string {
	n := utf8.RuneCountInString(id)
	if n >= FIPSWidth {
		return id
	}
	return strings.Repeat("0", FIPSWidth-n) + id
}
