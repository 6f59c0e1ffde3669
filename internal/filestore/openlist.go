package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"showsync/internal/services"
)

// OpenList is a Store backed by the OpenList (formerly AList) fs API.
type OpenList struct {
	baseURL    string
	token      string
	refresh    bool
	httpClient *http.Client
	attempts   uint
	delay      time.Duration
}

var _ Store = (*OpenList)(nil)

// OpenListOption configures an OpenList store.
type OpenListOption func(*OpenList)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) OpenListOption {
	return func(o *OpenList) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// WithRefresh asks the server to bypass its listing cache.
func WithRefresh(refresh bool) OpenListOption {
	return func(o *OpenList) { o.refresh = refresh }
}

// WithRetry sets how often idempotent calls (list, mkdir) are attempted.
func WithRetry(attempts uint, delay time.Duration) OpenListOption {
	return func(o *OpenList) {
		if attempts > 0 {
			o.attempts = attempts
		}
		o.delay = delay
	}
}

// NewOpenList creates an OpenList store client.
func NewOpenList(baseURL, token string, opts ...OpenListOption) (*OpenList, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "openlist", "init", "base url required", nil)
	}
	o := &OpenList{
		baseURL:    baseURL,
		token:      strings.TrimSpace(token),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		attempts:   3,
		delay:      time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type listRequest struct {
	Path     string `json:"path"`
	Password string `json:"password"`
	Page     int    `json:"page"`
	PerPage  int    `json:"per_page"`
	Refresh  bool   `json:"refresh"`
}

type listResponse struct {
	Content []struct {
		Name     string    `json:"name"`
		Size     int64     `json:"size"`
		IsDir    bool      `json:"is_dir"`
		Modified time.Time `json:"modified"`
	} `json:"content"`
	Total int `json:"total"`
}

// List returns the entries of dir. A directory the server does not know
// yields an empty listing.
func (o *OpenList) List(ctx context.Context, dir string) ([]Entry, error) {
	var resp listResponse
	err := o.withRetry(ctx, func() error {
		return o.post(ctx, "/api/fs/list", listRequest{Path: dir, Page: 1, PerPage: 0, Refresh: o.refresh}, &resp)
	})
	if errors.Is(err, services.ErrNotFound) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(resp.Content))
	for _, item := range resp.Content {
		entries = append(entries, Entry{Name: item.Name, IsDir: item.IsDir, Size: item.Size, Modified: item.Modified})
	}
	return entries, nil
}

// Mkdir creates dir and any missing parents.
func (o *OpenList) Mkdir(ctx context.Context, dir string) error {
	return o.withRetry(ctx, func() error {
		return o.post(ctx, "/api/fs/mkdir", map[string]string{"path": dir}, nil)
	})
}

// Rename changes the base name of filePath.
func (o *OpenList) Rename(ctx context.Context, filePath, newName string) error {
	return o.post(ctx, "/api/fs/rename", map[string]string{"path": filePath, "name": newName}, nil)
}

// Move relocates name from srcDir into dstDir.
func (o *OpenList) Move(ctx context.Context, srcDir, dstDir, name string) error {
	payload := struct {
		SrcDir string   `json:"src_dir"`
		DstDir string   `json:"dst_dir"`
		Names  []string `json:"names"`
	}{SrcDir: srcDir, DstDir: dstDir, Names: []string{name}}
	return o.post(ctx, "/api/fs/move", payload, nil)
}

// withRetry replays fn on internal failures only; a not-found answer or a
// cancelled context ends the attempts.
func (o *OpenList) withRetry(ctx context.Context, fn func() error) error {
	return retry.Do(fn,
		retry.Context(ctx),
		retry.Attempts(o.attempts),
		retry.Delay(o.delay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, services.ErrNotFound) &&
				!errors.Is(err, context.Canceled) &&
				!errors.Is(err, context.DeadlineExceeded)
		}),
	)
}

func (o *OpenList) post(ctx context.Context, endpoint string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return services.Wrap(services.ErrInternal, "openlist", endpoint, "encode request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return services.Wrap(services.ErrInternal, "openlist", endpoint, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if o.token != "" {
		req.Header.Set("Authorization", o.token)
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrInternal, "openlist", endpoint, "execute request", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return services.Wrap(services.ErrInternal, "openlist", endpoint, "read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return services.Wrap(services.ErrInternal, "openlist", endpoint,
			fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))), nil)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return services.Wrap(services.ErrInternal, "openlist", endpoint, "decode envelope", err)
	}
	if env.Code != http.StatusOK {
		marker := services.ErrInternal
		if strings.Contains(strings.ToLower(env.Message), "not found") {
			marker = services.ErrNotFound
		}
		return services.Wrap(marker, "openlist", endpoint, fmt.Sprintf("code %d: %s", env.Code, env.Message), nil)
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return services.Wrap(services.ErrInternal, "openlist", endpoint, "decode data", err)
	}
	return nil
}
