package notifications_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"showsync/internal/config"
	"showsync/internal/notifications"
	"showsync/internal/services"
)

func pushConfig(channel string, params map[string]string) *config.Config {
	cfg := config.Default()
	cfg.Push.Channel = channel
	cfg.Push.Params = params
	return &cfg
}

func TestNewReturnsNoopWhenChannelUnset(t *testing.T) {
	n, err := notifications.New(pushConfig("", nil))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if n.Channel() != "none" {
		t.Fatalf("unexpected channel %q", n.Channel())
	}
	if err := n.Send(context.Background(), "hello"); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNewRejectsUnknownChannel(t *testing.T) {
	if _, err := notifications.New(pushConfig("pager", nil)); err == nil {
		t.Fatal("expected error for unknown channel")
	}
}

func TestTelegramSend(t *testing.T) {
	var got map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/botTOKEN/sendMessage" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(server.Close)

	n, err := notifications.New(pushConfig("telegram", map[string]string{"bot_token": "TOKEN", "chat_id": "42"}),
		notifications.WithBaseURL(server.URL), notifications.WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := n.Send(context.Background(), "Show season 1 episode 1 ready"); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if got["chat_id"] != "42" || got["text"] != "Show season 1 episode 1 ready" {
		t.Fatalf("unexpected payload %v", got)
	}
}

func TestTelegramSendFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	}))
	t.Cleanup(server.Close)

	n, err := notifications.New(pushConfig("telegram", map[string]string{"bot_token": "T", "chat_id": "1"}),
		notifications.WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	err = n.Send(context.Background(), "x")
	if !errors.Is(err, services.ErrInternal) || !strings.Contains(err.Error(), "chat not found") {
		t.Fatalf("expected internal error with body, got %v", err)
	}
}

type wecomServer struct {
	tokenCalls atomic.Int32
	sendCalls  atomic.Int32
	rejectOnce atomic.Bool
	lastBody   map[string]any
}

func (s *wecomServer) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/gettoken":
			if r.URL.Query().Get("corpid") != "corp" || r.URL.Query().Get("corpsecret") != "secret" {
				t.Fatalf("unexpected token query %q", r.URL.RawQuery)
			}
			n := s.tokenCalls.Add(1)
			_ = json.NewEncoder(w).Encode(map[string]any{"errcode": 0, "access_token": "tok" + string(rune('0'+n)), "expires_in": 7200})
		case "/message/send":
			s.sendCalls.Add(1)
			if s.rejectOnce.CompareAndSwap(true, false) {
				_ = json.NewEncoder(w).Encode(map[string]any{"errcode": 42001, "errmsg": "access_token expired"})
				return
			}
			if err := json.NewDecoder(r.Body).Decode(&s.lastBody); err != nil {
				t.Fatalf("decode: %v", err)
			}
			s.lastBody["token"] = r.URL.Query().Get("access_token")
			_ = json.NewEncoder(w).Encode(map[string]any{"errcode": 0, "errmsg": "ok"})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}
}

func newWecom(t *testing.T, s *wecomServer) notifications.Notifier {
	t.Helper()
	server := httptest.NewServer(s.handler(t))
	t.Cleanup(server.Close)
	n, err := notifications.New(pushConfig("wecom", map[string]string{
		"corp_id": "corp", "corp_secret": "secret", "agent_id": "1000002",
	}), notifications.WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return n
}

func TestWecomSendCachesToken(t *testing.T) {
	s := &wecomServer{}
	n := newWecom(t, s)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := n.Send(ctx, "Show season 1 episodes 1–2 ready"); err != nil {
			t.Fatalf("Send returned error: %v", err)
		}
	}
	if s.tokenCalls.Load() != 1 {
		t.Fatalf("expected token fetched once, got %d", s.tokenCalls.Load())
	}
	if s.lastBody["touser"] != "@all" || s.lastBody["msgtype"] != "text" || s.lastBody["token"] != "tok1" {
		t.Fatalf("unexpected body %v", s.lastBody)
	}
	if agent, _ := s.lastBody["agentid"].(float64); agent != 1000002 {
		t.Fatalf("unexpected agent id %v", s.lastBody["agentid"])
	}
}

func TestWecomRefreshesRejectedToken(t *testing.T) {
	s := &wecomServer{}
	s.rejectOnce.Store(true)
	n := newWecom(t, s)

	if err := n.Send(context.Background(), "hello"); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if s.tokenCalls.Load() != 2 || s.sendCalls.Load() != 2 {
		t.Fatalf("expected one refresh and resend, got token=%d send=%d", s.tokenCalls.Load(), s.sendCalls.Load())
	}
	if s.lastBody["token"] != "tok2" {
		t.Fatalf("expected refreshed token, got %v", s.lastBody["token"])
	}
}

func TestWecomRequiresNumericAgent(t *testing.T) {
	cfg := pushConfig("wecom", map[string]string{"corp_id": "c", "corp_secret": "s", "agent_id": "x"})
	if _, err := notifications.New(cfg); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
