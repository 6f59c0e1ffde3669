package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"showsync/internal/config"
)

const userAgent = "showsync/1.0"

// Notifier delivers a plain-text message to the configured channel.
type Notifier interface {
	Send(ctx context.Context, message string) error
	Channel() string
}

type options struct {
	httpClient *http.Client
	baseURL    string
	clock      Clock
}

// Option customises notifier construction.
type Option func(*options)

// WithHTTPClient overrides the HTTP client used for delivery.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// WithBaseURL points the channel at a different API root (used in tests).
func WithBaseURL(baseURL string) Option {
	return func(o *options) { o.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithClock replaces the clock used for token expiry.
func WithClock(clock Clock) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// New builds the notifier selected by cfg.Push. An empty channel yields a
// notifier that accepts and drops every message.
func New(cfg *config.Config, opts ...Option) (Notifier, error) {
	o := options{clock: SystemClock{}}
	if cfg != nil {
		timeout := time.Duration(cfg.Sync.RequestTimeout) * time.Second
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		o.httpClient = &http.Client{Timeout: timeout}
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg == nil {
		return noopNotifier{}, nil
	}

	params := cfg.Push.Params
	switch cfg.Push.Channel {
	case config.ChannelNone:
		return noopNotifier{}, nil
	case config.ChannelTelegram:
		return newTelegram(params, o)
	case config.ChannelWecom:
		return newWecom(params, o)
	default:
		return nil, fmt.Errorf("unsupported push channel %q", cfg.Push.Channel)
	}
}

type noopNotifier struct{}

func (noopNotifier) Send(context.Context, string) error { return nil }

func (noopNotifier) Channel() string { return "none" }

// readSnippet returns a short prefix of a failed response body for error text.
func readSnippet(r io.Reader) string {
	body, _ := io.ReadAll(io.LimitReader(r, 512))
	return strings.TrimSpace(string(body))
}
