package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"showsync/internal/services"
)

const defaultTelegramBaseURL = "https://api.telegram.org"

type telegramNotifier struct {
	baseURL string
	token   string
	chatID  string
	client  *http.Client
}

func newTelegram(params map[string]string, o options) (*telegramNotifier, error) {
	token, chatID := params["bot_token"], params["chat_id"]
	if token == "" || chatID == "" {
		return nil, services.Wrap(services.ErrConfiguration, "telegram", "init", "bot_token and chat_id required", nil)
	}
	baseURL := o.baseURL
	if baseURL == "" {
		baseURL = strings.TrimRight(params["base_url"], "/")
	}
	if baseURL == "" {
		baseURL = defaultTelegramBaseURL
	}
	return &telegramNotifier{baseURL: baseURL, token: token, chatID: chatID, client: o.httpClient}, nil
}

func (t *telegramNotifier) Channel() string { return "telegram" }

func (t *telegramNotifier) Send(ctx context.Context, message string) error {
	body, err := json.Marshal(map[string]string{"chat_id": t.chatID, "text": message})
	if err != nil {
		return fmt.Errorf("encode telegram payload: %w", err)
	}
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := t.client.Do(req)
	if err != nil {
		return services.Wrap(services.ErrInternal, "telegram", "sendMessage", "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return services.Wrap(services.ErrInternal, "telegram", "sendMessage",
			fmt.Sprintf("status %d: %s", resp.StatusCode, readSnippet(resp.Body)), nil)
	}
	var result struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil && !result.OK {
		return services.Wrap(services.ErrInternal, "telegram", "sendMessage", result.Description, nil)
	}
	return nil
}
