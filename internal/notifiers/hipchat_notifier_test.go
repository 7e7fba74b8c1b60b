package notifiers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ilindan-dev/seq-chat-bridge/internal/config"
	"github.com/ilindan-dev/seq-chat-bridge/internal/domain/model"
	"github.com/rs/zerolog"
)

func newTestNotifier(t *testing.T, srv *httptest.Server, room, token string) *HipChatNotifier {
	t.Helper()
	logger := zerolog.Nop()
	cfg := config.ChatConfig{NotificationBaseURL: srv.URL + "/v2/", RoomID: room, AuthToken: token}
	return NewHipChatNotifier(cfg, srv.Client(), &logger)
}

func TestHipChatSend_Request(t *testing.T) {
	var (
		method, path, token, accept, contentType, body string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
		token = r.URL.Query().Get("auth_token")
		accept = r.Header.Get("Accept")
		contentType = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := newTestNotifier(t, srv, "ops", "s3cr3t")
	err := n.Send(context.Background(), &model.Notification{
		EventID: "abc123",
		Color:   "yellow",
		Message: "<strong>Warning:</strong> disk low",
	})
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	if method != http.MethodPost {
		t.Errorf("method = %s, want POST", method)
	}
	if path != "/v2/room/ops/notification" {
		t.Errorf("path = %s", path)
	}
	if token != "s3cr3t" {
		t.Errorf("auth_token = %q", token)
	}
	if accept != "application/json" {
		t.Errorf("Accept = %q", accept)
	}
	if !strings.HasPrefix(contentType, "application/json") {
		t.Errorf("Content-Type = %q", contentType)
	}
	want := `{"color":"yellow","message":"<strong>Warning:</strong> disk low","notify":false}`
	if body != want {
		t.Errorf("body = %s\nwant   %s", body, want)
	}
}

func TestHipChatSend_BaseURLWithoutTrailingSlash(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
	}))
	defer srv.Close()

	logger := zerolog.Nop()
	n := NewHipChatNotifier(config.ChatConfig{NotificationBaseURL: srv.URL + "/v2", RoomID: "my room"}, srv.Client(), &logger)
	if err := n.Send(context.Background(), &model.Notification{Message: "m"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if path != "/v2/room/my room/notification" {
		t.Errorf("path = %q", path)
	}
}

func TestHipChatURL_Default(t *testing.T) {
	logger := zerolog.Nop()
	n := NewHipChatNotifier(config.ChatConfig{RoomID: "42", AuthToken: "t"}, nil, &logger)
	if got := n.URL(); got != "https://api.hipchat.com/v2/room/42/notification?auth_token=t" {
		t.Fatalf("URL() = %s", got)
	}
}

func TestHipChatSend_NonSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":{"message":"Invalid OAuth session"}}`)
	}))
	defer srv.Close()

	n := newTestNotifier(t, srv, "ops", "bad")
	err := n.Send(context.Background(), &model.Notification{Message: "m"})

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *StatusError, got %v", err)
	}
	if statusErr.StatusCode != 401 || statusErr.Status != "Unauthorized" {
		t.Errorf("status = %d %q", statusErr.StatusCode, statusErr.Status)
	}
	if statusErr.Body != `{"error":{"message":"Invalid OAuth session"}}` {
		t.Errorf("body = %q", statusErr.Body)
	}
	if strings.Contains(statusErr.URI, "bad") || !strings.Contains(statusErr.URI, "/v2/room/ops/notification") {
		t.Errorf("uri = %q, want token redacted", statusErr.URI)
	}
}

func TestHipChatSend_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	n := newTestNotifier(t, srv, "ops", "s3cr3t-value")
	srv.Close()

	err := n.Send(context.Background(), &model.Notification{Message: "m"})
	if err == nil {
		t.Fatal("expected transport error")
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		t.Fatal("transport error should not be a StatusError")
	}
	if strings.Contains(err.Error(), "s3cr3t-value") {
		t.Errorf("error leaks auth token: %v", err)
	}
}

func TestRedactURI(t *testing.T) {
	got := RedactURI("https://api.hipchat.com/v2/room/1/notification?auth_token=abc")
	if got != "https://api.hipchat.com/v2/room/1/notification?auth_token=REDACTED" {
		t.Fatalf("RedactURI = %s", got)
	}
	if got := RedactURI("https://example.com/x"); got != "https://example.com/x" {
		t.Fatalf("RedactURI without token = %s", got)
	}
}
