package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"showsync/internal/services"
)

const defaultWecomBaseURL = "https://qyapi.weixin.qq.com/cgi-bin"

// Error codes meaning the cached access token is no longer accepted.
var wecomTokenErrors = map[int]struct{}{40001: {}, 40014: {}, 42001: {}}

type wecomNotifier struct {
	baseURL    string
	corpID     string
	corpSecret string
	agentID    int64
	userID     string
	client     *http.Client
	tokens     *TokenCache
}

type wecomReply struct {
	ErrCode     int    `json:"errcode"`
	ErrMsg      string `json:"errmsg"`
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

func newWecom(params map[string]string, o options) (*wecomNotifier, error) {
	corpID, secret := params["corp_id"], params["corp_secret"]
	if corpID == "" || secret == "" || params["agent_id"] == "" {
		return nil, services.Wrap(services.ErrConfiguration, "wecom", "init", "corp_id, corp_secret and agent_id required", nil)
	}
	agentID, err := strconv.ParseInt(params["agent_id"], 10, 64)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "wecom", "init", "agent_id must be numeric", err)
	}
	userID := params["user_id"]
	if userID == "" {
		userID = "@all"
	}
	baseURL := o.baseURL
	if baseURL == "" {
		baseURL = strings.TrimRight(params["base_url"], "/")
	}
	if baseURL == "" {
		baseURL = defaultWecomBaseURL
	}
	w := &wecomNotifier{
		baseURL:    baseURL,
		corpID:     corpID,
		corpSecret: secret,
		agentID:    agentID,
		userID:     userID,
		client:     o.httpClient,
	}
	w.tokens = NewTokenCache(w.fetchToken, WithCacheClock(o.clock))
	return w, nil
}

func (w *wecomNotifier) Channel() string { return "wecom" }

// Send posts a text message, refreshing the access token once if the server
// rejects the cached one.
func (w *wecomNotifier) Send(ctx context.Context, message string) error {
	err := w.send(ctx, message)
	if errors.Is(err, errTokenRejected) {
		w.tokens.Invalidate()
		err = w.send(ctx, message)
	}
	return err
}

var errTokenRejected = errors.New("access token rejected")

func (w *wecomNotifier) send(ctx context.Context, message string) error {
	token, err := w.tokens.GetOrRefresh(ctx)
	if err != nil {
		return err
	}
	payload := map[string]any{
		"touser":                   w.userID,
		"agentid":                  w.agentID,
		"msgtype":                  "text",
		"text":                     map[string]string{"content": message},
		"duplicate_check_interval": 600,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode wecom payload: %w", err)
	}
	endpoint := w.baseURL + "/message/send?access_token=" + url.QueryEscape(token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build wecom request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	reply, err := w.do(req, "message/send")
	if err != nil {
		return err
	}
	if reply.ErrCode != 0 {
		if _, ok := wecomTokenErrors[reply.ErrCode]; ok {
			return services.Wrap(services.ErrInternal, "wecom", "message/send", reply.ErrMsg, errTokenRejected)
		}
		return services.Wrap(services.ErrInternal, "wecom", "message/send",
			fmt.Sprintf("errcode %d: %s", reply.ErrCode, reply.ErrMsg), nil)
	}
	return nil
}

func (w *wecomNotifier) fetchToken(ctx context.Context) (string, time.Duration, error) {
	query := url.Values{}
	query.Set("corpid", w.corpID)
	query.Set("corpsecret", w.corpSecret)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL+"/gettoken?"+query.Encode(), nil)
	if err != nil {
		return "", 0, fmt.Errorf("build wecom token request: %w", err)
	}
	reply, err := w.do(req, "gettoken")
	if err != nil {
		return "", 0, err
	}
	if reply.ErrCode != 0 || reply.AccessToken == "" {
		return "", 0, services.Wrap(services.ErrInternal, "wecom", "gettoken",
			fmt.Sprintf("errcode %d: %s", reply.ErrCode, reply.ErrMsg), nil)
	}
	return reply.AccessToken, time.Duration(reply.ExpiresIn) * time.Second, nil
}

func (w *wecomNotifier) do(req *http.Request, op string) (wecomReply, error) {
	resp, err := w.client.Do(req)
	if err != nil {
		return wecomReply{}, services.Wrap(services.ErrInternal, "wecom", op, "request failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return wecomReply{}, services.Wrap(services.ErrInternal, "wecom", op,
			fmt.Sprintf("status %d: %s", resp.StatusCode, readSnippet(resp.Body)), nil)
	}
	var reply wecomReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return wecomReply{}, services.Wrap(services.ErrInternal, "wecom", op, "decode response", err)
	}
	return reply, nil
}
