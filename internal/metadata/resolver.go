package metadata

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"showsync/internal/logging"
	"showsync/internal/metadata/tmdb"
	"showsync/internal/naming"
	"showsync/internal/services"
)

// ShowInfo is the canonical identity of a show as the provider knows it.
type ShowInfo struct {
	ID   int64
	Name string
	// Year is the first-air year, zero when the provider does not know it.
	Year        int
	SeasonCount int
}

// DirName is the library directory name for the show.
func (s ShowInfo) DirName() string {
	return naming.ShowDirName(s.Name, s.Year)
}

// Resolver turns a parsed show identity into ShowInfo.
type Resolver struct {
	client tmdb.Searcher
	logger *slog.Logger
}

// NewResolver wires a resolver to a TMDB searcher.
func NewResolver(client tmdb.Searcher, logger *slog.Logger) *Resolver {
	return &Resolver{client: client, logger: logging.NewComponentLogger(logger, "metadata")}
}

// Resolve searches for the show, picks the best candidate and fetches its
// details. A search with no usable candidate yields services.ErrNotFound.
func (r *Resolver) Resolve(ctx context.Context, id naming.ShowIdentity) (ShowInfo, error) {
	logger := logging.WithContext(ctx, r.logger)

	resp, err := r.client.SearchTV(ctx, id.Title, tmdb.SearchOptions{Year: id.Year})
	if err != nil {
		return ShowInfo{}, err
	}
	results := resp.Results
	if len(results) == 0 && id.Year > 0 {
		logger.Debug("tmdb search retrying without year",
			logging.String("title", id.Title),
			logging.Int("year", id.Year),
		)
		resp, err = r.client.SearchTV(ctx, id.Title, tmdb.SearchOptions{})
		if err != nil {
			return ShowInfo{}, err
		}
		results = resp.Results
	}
	if len(results) == 0 {
		return ShowInfo{}, services.Wrap(services.ErrNotFound, "metadata", "search", "no tmdb match for "+strconv.Quote(id.Title), nil)
	}

	candidate := pickCandidate(id.Title, results)
	details, err := r.client.GetTVDetails(ctx, candidate.ID)
	if err != nil {
		return ShowInfo{}, err
	}

	info := ShowInfo{
		ID:          details.ID,
		Name:        strings.TrimSpace(details.Name),
		Year:        parseYear(details.FirstAirDate),
		SeasonCount: details.NumberOfSeasons,
	}
	if info.ID == 0 {
		info.ID = candidate.ID
	}
	if info.Name == "" {
		info.Name = strings.TrimSpace(candidate.Name)
	}
	if info.Name == "" {
		return ShowInfo{}, services.Wrap(services.ErrNotFound, "metadata", "details", "tmdb returned no name", nil)
	}
	if info.Year == 0 {
		info.Year = parseYear(candidate.FirstAirDate)
	}
	if info.Year == 0 {
		info.Year = id.Year
	}

	logger.Info("show resolved",
		logging.String("title", id.Title),
		logging.String("tmdb_name", info.Name),
		logging.Int64("tmdb_id", info.ID),
		logging.Int("year", info.Year),
		logging.Int("seasons", info.SeasonCount),
	)
	return info, nil
}

// pickCandidate prefers a result whose name or original name equals the
// query, ignoring case and spacing; otherwise the provider's first result.
func pickCandidate(title string, results []tmdb.Result) tmdb.Result {
	want := squash(title)
	for _, result := range results {
		if squash(result.Name) == want || squash(result.OriginalName) == want {
			return result
		}
	}
	return results[0]
}

func squash(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// parseYear reads the year prefix of a YYYY-MM-DD date.
func parseYear(date string) int {
	date = strings.TrimSpace(date)
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}
