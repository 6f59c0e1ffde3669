package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// segmentReplacer maps characters that break a path segment on common
// NAS filesystems. Separators become dashes; the rest are dropped.
var segmentReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", " -",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SafeSegment turns a provider title into a single path segment. The result
// is NFC-normalised, free of control characters and separators, has runs of
// whitespace collapsed, and carries no leading or trailing dots or spaces.
// An empty result means the title had nothing usable.
func SafeSegment(name string) string {
	name = norm.NFC.String(name)
	name = segmentReplacer.Replace(name)
	name = strings.Join(strings.Fields(name), " ")
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	return strings.Trim(name, ". ")
}
