package naming

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// ShowIdentity is the title and optional year parsed from a show directory name.
type ShowIdentity struct {
	Title string
	// Year is zero when the directory name carries no "(YYYY)" suffix.
	Year int
}

var (
	showPattern   = regexp.MustCompile(`^([^(]*)(?:\(\s*(\d{4})\s*\))?`)
	seasonPattern = regexp.MustCompile(`(?i)S(?:easons?)?\s*(\d{1,3})`)
	cjkSeason     = regexp.MustCompile(`第\s*(\d{1,3})\s*季`)
)

// fold narrows full-width ASCII (digits, latin letters, brackets, spaces) and
// leaves kana wide.
func fold(s string) string {
	return width.Fold.String(s)
}

// ParseShowIdentity splits "Title (YYYY)" into its parts. Interior whitespace
// in the title is kept verbatim; only the ends are trimmed. The result is
// false when no title characters precede the first parenthesis.
func ParseShowIdentity(name string) (ShowIdentity, bool) {
	m := showPattern.FindStringSubmatch(fold(name))
	if m == nil {
		return ShowIdentity{}, false
	}
	title := strings.TrimSpace(m[1])
	if title == "" {
		return ShowIdentity{}, false
	}
	id := ShowIdentity{Title: title}
	if m[2] != "" {
		id.Year, _ = strconv.Atoi(m[2])
	}
	return id, true
}

// ParseSeasonToken reads a season number from a sub-directory name such as
// "Season 2", "S03", "seasons 4" or "第2季".
func ParseSeasonToken(name string) (int, bool) {
	folded := fold(name)
	if m := seasonPattern.FindStringSubmatch(folded); m != nil {
		n, err := strconv.Atoi(m[1])
		return n, err == nil
	}
	if m := cjkSeason.FindStringSubmatch(folded); m != nil {
		n, err := strconv.Atoi(m[1])
		return n, err == nil
	}
	return 0, false
}
