package library

import (
	"showsync/internal/filestore"
	"showsync/internal/naming"
)

// NoFallback disables the fallback season in Bucketize.
const NoFallback = -1

// EpisodeFile is a video file that parsed to a season and episode.
type EpisodeFile struct {
	FileName  string
	Season    int
	Episode   int
	Extension string
}

// SeasonBucket maps episode number to the file holding it.
type SeasonBucket map[int]EpisodeFile

// Buckets maps season number to its episodes.
type Buckets map[int]SeasonBucket

// Bucketize groups the video files of one listing by season and episode.
// Files without an explicit season land in fallback when fallback is not
// NoFallback, otherwise they are skipped. Directories, non-video files and
// unparsable names are skipped. When two files resolve to the same slot the
// later one in listing order wins.
func Bucketize(entries []filestore.Entry, fallback int) Buckets {
	buckets := make(Buckets)
	for _, entry := range entries {
		if entry.IsDir {
			continue
		}
		token, ok := naming.ParseEpisodeToken(entry.Name)
		if !ok || naming.ClassifyExtension(token.Extension) != naming.KindVideo {
			continue
		}
		season := token.Season
		if !token.HasSeason {
			if fallback == NoFallback {
				continue
			}
			season = fallback
		}
		bucket, ok := buckets[season]
		if !ok {
			bucket = make(SeasonBucket)
			buckets[season] = bucket
		}
		bucket[token.Episode] = EpisodeFile{
			FileName:  entry.Name,
			Season:    season,
			Episode:   token.Episode,
			Extension: token.Extension,
		}
	}
	return buckets
}

// Seasons returns the season numbers in ascending order.
func (b Buckets) Seasons() []int {
	return sortedKeys(b)
}

// Episodes returns the episode numbers in ascending order.
func (b SeasonBucket) Episodes() []int {
	return sortedKeys(b)
}
