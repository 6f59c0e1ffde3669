package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"showsync/internal/services"
)

// Result represents a single TMDB TV search match.
type Result struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	OriginalName string  `json:"original_name"`
	FirstAirDate string  `json:"first_air_date"`
	Popularity   float64 `json:"popularity"`
	VoteCount    int64   `json:"vote_count"`
}

// Response models the TMDB paginated search response.
type Response struct {
	Page         int      `json:"page"`
	Results      []Result `json:"results"`
	TotalPages   int      `json:"total_pages"`
	TotalResults int      `json:"total_results"`
}

// TVDetails is the subset of /tv/{id} used for library placement.
type TVDetails struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	OriginalName    string `json:"original_name"`
	FirstAirDate    string `json:"first_air_date"`
	NumberOfSeasons int    `json:"number_of_seasons"`
	Status          string `json:"status"`
}

// SearchOptions contains optional parameters for TMDB TV search.
type SearchOptions struct {
	Year int
}

// Searcher defines the TMDB operations used to resolve shows.
type Searcher interface {
	SearchTV(ctx context.Context, query string, opts SearchOptions) (*Response, error)
	GetTVDetails(ctx context.Context, showID int64) (*TVDetails, error)
}

// Client provides access to the TMDB API.
type Client struct {
	apiKey       string
	baseURL      string
	language     string
	includeAdult bool
	httpClient   *http.Client
	attempts     uint
	delay        time.Duration
}

var _ Searcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithIncludeAdult toggles the include_adult search flag.
func WithIncludeAdult(include bool) Option {
	return func(c *Client) { c.includeAdult = include }
}

// WithRetry sets how many times a failed GET is attempted.
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.attempts = attempts
		}
		c.delay = delay
	}
}

// New creates a TMDB client.
func New(apiKey, baseURL, language string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "tmdb", "init", "api key required", nil)
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "tmdb", "init", "base url required", nil)
	}
	client := &Client{
		apiKey:       apiKey,
		baseURL:      strings.TrimRight(baseURL, "/"),
		language:     strings.TrimSpace(language),
		includeAdult: true,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		attempts:     3,
		delay:        time.Second,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// SearchTV performs a TMDB TV search, optionally restricted to a first-air year.
func (c *Client) SearchTV(ctx context.Context, query string, opts SearchOptions) (*Response, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", "1")
	params.Set("include_adult", strconv.FormatBool(c.includeAdult))
	if opts.Year > 0 {
		params.Set("first_air_date_year", strconv.Itoa(opts.Year))
	}

	var payload Response
	if err := c.get(ctx, "/search/tv", params, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// GetTVDetails fetches TV show details by TMDB ID.
func (c *Client) GetTVDetails(ctx context.Context, showID int64) (*TVDetails, error) {
	if showID <= 0 {
		return nil, errors.New("show id must be positive")
	}
	var payload TVDetails
	if err := c.get(ctx, fmt.Sprintf("/tv/%d", showID), url.Values{}, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// errRetryable marks responses worth another attempt (429 and 5xx).
var errRetryable = errors.New("retryable")

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return services.Wrap(services.ErrInternal, "tmdb", path, "parse url", err)
	}
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	endpoint.RawQuery = params.Encode()

	return retry.Do(func() error {
		return c.fetch(ctx, endpoint.String(), path, out)
	},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool { return errors.Is(err, errRetryable) }),
	)
}

func (c *Client) fetch(ctx context.Context, endpoint, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return services.Wrap(services.ErrInternal, "tmdb", path, "build request", err)
	}
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		if ctx.Err() != nil {
			return services.Wrap(services.ErrInternal, "tmdb", path, "request cancelled", err)
		}
		return services.Wrap(services.ErrInternal, "tmdb", path,
			fmt.Sprintf("execute request (latency=%v)", latency), errors.Join(errRetryable, err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return services.Wrap(services.ErrNotFound, "tmdb", path, "returned 404", nil)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return services.Wrap(services.ErrInternal, "tmdb", path,
			fmt.Sprintf("returned %d (latency=%v)", resp.StatusCode, latency), errRetryable)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return services.Wrap(services.ErrInternal, "tmdb", path,
			fmt.Sprintf("returned %d (latency=%v): %s", resp.StatusCode, latency, strings.TrimSpace(string(body))), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrInternal, "tmdb", path, "decode response", err)
	}
	return nil
}
