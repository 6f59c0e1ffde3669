package naming

import (
	"fmt"
	"strconv"

	"showsync/internal/textutil"
)

// unnamed stands in for a title that sanitises to nothing.
const unnamed = "Unknown"

// ShowDirName is the library directory for a show: "Name (YYYY)", or just the
// name when no year is known. The title is made path-safe first.
func ShowDirName(name string, year int) string {
	name = safeTitle(name)
	if year <= 0 {
		return name
	}
	return fmt.Sprintf("%s (%d)", name, year)
}

// SeasonDirName is the library directory for a season, e.g. "Season 01".
func SeasonDirName(season int) string {
	return "Season " + pad2(season)
}

// EpisodeFileName is the canonical library file name for an episode, e.g.
// "Show.S01.E02.mkv". ParseEpisodeToken reads it back to the same numbers.
func EpisodeFileName(show string, season, episode int, ext string) string {
	return fmt.Sprintf("%s.S%s.E%s.%s", safeTitle(show), pad2(season), pad2(episode), ext)
}

func safeTitle(name string) string {
	if safe := textutil.SafeSegment(name); safe != "" {
		return safe
	}
	return unnamed
}

func pad2(n int) string {
	if n >= 0 && n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
