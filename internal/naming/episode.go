package naming

import (
	"regexp"
	"strconv"
	"strings"
)

// EpisodeToken is what a media file name says about its place in a show.
type EpisodeToken struct {
	Season    int
	HasSeason bool
	Episode   int
	// Extension is the text after the last dot, case preserved.
	Extension string
}

// MediaKind classifies a file by extension.
type MediaKind int

const (
	KindOther MediaKind = iota
	KindVideo
	KindSubtitle
)

func (k MediaKind) String() string {
	switch k {
	case KindVideo:
		return "video"
	case KindSubtitle:
		return "subtitle"
	default:
		return "other"
	}
}

var videoExtensions = map[string]struct{}{
	"3g2": {}, "3gp": {}, "3gp2": {}, "asf": {}, "avi": {}, "divx": {}, "flv": {},
	"iso": {}, "m4v": {}, "mk2": {}, "mk3d": {}, "mka": {}, "mkv": {}, "mov": {},
	"mp4": {}, "mp4a": {}, "mpeg": {}, "mpg": {}, "ogg": {}, "ogm": {}, "ogv": {},
	"qt": {}, "ra": {}, "ram": {}, "rm": {}, "ts": {}, "m2ts": {}, "vob": {},
	"wav": {}, "webm": {}, "wma": {}, "wmv": {},
}

var subtitleExtensions = map[string]struct{}{
	"srt": {}, "idx": {}, "sub": {}, "ssa": {}, "ass": {},
}

// ClassifyExtension reports the media kind for ext, ignoring case.
func ClassifyExtension(ext string) MediaKind {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if _, ok := videoExtensions[ext]; ok {
		return KindVideo
	}
	if _, ok := subtitleExtensions[ext]; ok {
		return KindSubtitle
	}
	return KindOther
}

var (
	// S01E02, S01.E02, S1 E2, Season 1 Ep 2. Trailing "-E03" ranges are ignored.
	seasonEpisodePattern = regexp.MustCompile(`(?i)\[?S(?:eason)?\s*(\d{1,3})\s*\]?\s*[._\- ]?\s*\[?(?:E|EP|Episode)\s*(\d{1,4})`)
	// 1x02
	crossPattern = regexp.MustCompile(`(?i)(?:^|[^0-9a-z])(\d{1,2})x(\d{1,3})(?:v\d+)?(?:[^0-9]|$)`)
	// E05, EP05, Ep.5
	episodeOnlyPattern = regexp.MustCompile(`(?i)(?:^|[^a-z])EP?\.?\s*(\d{1,4})(?:[^0-9]|$)`)
	// 第05集, 第5话
	cjkEpisodePattern = regexp.MustCompile(`第\s*(\d{1,4})\s*[集话話]`)
)

// ParseEpisodeToken reads season and episode numbers plus the extension from a
// file name. It returns false when the name has no extension or no episode
// number.
func ParseEpisodeToken(fileName string) (EpisodeToken, bool) {
	dot := strings.LastIndex(fileName, ".")
	if dot < 0 || dot == len(fileName)-1 {
		return EpisodeToken{}, false
	}
	token := EpisodeToken{Extension: fileName[dot+1:]}
	stem := fold(fileName[:dot])

	// Release names occasionally repeat the marker (a title containing S01E01
	// for instance); the last occurrence is the one describing the file.
	if m := lastSubmatch(seasonEpisodePattern, stem); m != nil {
		token.Season, token.HasSeason = atoi(m[1])
		token.Episode, _ = atoi(m[2])
		return token, true
	}
	if m := lastSubmatch(crossPattern, stem); m != nil {
		token.Season, token.HasSeason = atoi(m[1])
		token.Episode, _ = atoi(m[2])
		return token, true
	}
	if m := lastSubmatch(cjkEpisodePattern, stem); m != nil {
		token.Episode, _ = atoi(m[1])
		return token, true
	}
	if m := lastSubmatch(episodeOnlyPattern, stem); m != nil {
		token.Episode, _ = atoi(m[1])
		return token, true
	}
	return EpisodeToken{}, false
}

func lastSubmatch(re *regexp.Regexp, s string) []string {
	all := re.FindAllStringSubmatch(s, -1)
	if len(all) == 0 {
		return nil
	}
	return all[len(all)-1]
}

func atoi(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	return n, err == nil
}
