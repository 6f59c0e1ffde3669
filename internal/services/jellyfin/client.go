package jellyfin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"showsync/internal/services"
)

// HTTPDoer describes the HTTP client used by the refresher.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Refresher asks a Jellyfin server to rescan its libraries.
type Refresher struct {
	baseURL string
	apiKey  string
	client  HTTPDoer
	delay   time.Duration
}

// Option customises a Refresher.
type Option func(*Refresher)

// WithHTTPClient swaps the HTTP client.
func WithHTTPClient(client HTTPDoer) Option {
	return func(r *Refresher) {
		if client != nil {
			r.client = client
		}
	}
}

// WithRetryDelay sets the base backoff between attempts.
func WithRetryDelay(delay time.Duration) Option {
	return func(r *Refresher) { r.delay = delay }
}

// New builds a refresher for the server at baseURL.
func New(baseURL, apiKey string, opts ...Option) (*Refresher, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	apiKey = strings.TrimSpace(apiKey)
	if baseURL == "" || apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "jellyfin", "init", "url and api_key required", nil)
	}
	r := &Refresher{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
		delay:   time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

var errRetryable = errors.New("retryable")

// RefreshLibrary triggers a full library scan. Server errors and transport
// failures are retried; client errors such as a bad key are not.
func (r *Refresher) RefreshLibrary(ctx context.Context) error {
	err := retry.Do(
		func() error { return r.refresh(ctx) },
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(r.delay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool { return errors.Is(err, errRetryable) }),
	)
	if err != nil {
		return services.Wrap(services.ErrInternal, "jellyfin", "refresh", "library refresh failed", err)
	}
	return nil
}

func (r *Refresher) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/Library/Refresh", nil)
	if err != nil {
		return fmt.Errorf("build refresh request: %w", err)
	}
	req.Header.Set("X-Emby-Token", r.apiKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", errRetryable, err)
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: status %d", errRetryable, resp.StatusCode)
	case resp.StatusCode >= http.StatusMultipleChoices:
		return fmt.Errorf("refresh returned status %d", resp.StatusCode)
	}
	return nil
}
