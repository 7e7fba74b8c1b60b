package notifiers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ilindan-dev/seq-chat-bridge/internal/config"
	"github.com/ilindan-dev/seq-chat-bridge/internal/domain/model"
	"github.com/rs/zerolog"
)

// DefaultHipChatBaseURL is the provider's canonical API root.
const DefaultHipChatBaseURL = "https://api.hipchat.com/v2/"

// ProviderHipChat is the name of the HipChat provider.
const ProviderHipChat = "hipchat"

// StatusError is returned when the provider answers with a non-success status.
type StatusError struct {
	URI        string
	StatusCode int
	Status     string // Reason phrase, e.g. "Unauthorized".
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("hipchat: server replied %d %s: %s", e.StatusCode, e.Status, e.Body)
}

// hipChatMessage is the JSON body of the room notification API.
type hipChatMessage struct {
	Color   string `json:"color"`
	Message string `json:"message"`
	Notify  bool   `json:"notify"`
}

// HipChatNotifier posts notifications to a single HipChat room.
type HipChatNotifier struct {
	client  *http.Client
	baseURL string
	roomID  string
	token   string
	logger  zerolog.Logger
}

// NewHipChatNotifier creates a new instance of HipChatNotifier.
// The configuration is used as-is: a bad room or token only shows up as a provider error.
func NewHipChatNotifier(cfg config.ChatConfig, client *http.Client, logger *zerolog.Logger) *HipChatNotifier {
	if client == nil {
		client = http.DefaultClient
	}
	base := cfg.NotificationBaseURL
	if strings.TrimSpace(base) == "" {
		base = DefaultHipChatBaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return &HipChatNotifier{
		client:  client,
		baseURL: base,
		roomID:  cfg.RoomID,
		token:   cfg.AuthToken,
		logger:  logger.With().Str("component", "hipchat_notifier").Logger(),
	}
}

// Name implements the Notifier interface.
func (n *HipChatNotifier) Name() string { return ProviderHipChat }

// URL returns the room notification endpoint, including the auth token.
func (n *HipChatNotifier) URL() string {
	return fmt.Sprintf("%sroom/%s/notification?auth_token=%s",
		n.baseURL, url.PathEscape(n.roomID), url.QueryEscape(n.token))
}

// Send implements the Notifier interface for HipChat.
func (n *HipChatNotifier) Send(ctx context.Context, notification *model.Notification) error {
	body, err := encodeMessage(hipChatMessage{
		Color:   notification.Color,
		Message: notification.Message,
		Notify:  notification.Notify,
	})
	if err != nil {
		return fmt.Errorf("hipchat: failed to encode message: %w", err)
	}

	target := n.URL()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("hipchat: failed to build request for %s: %w", RedactURI(target), err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := n.client.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			urlErr.URL = RedactURI(urlErr.URL)
		}
		return fmt.Errorf("hipchat: request to %s failed: %w", RedactURI(target), err)
	}
	defer resp.Body.Close()

	respBody, readErr := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text := string(respBody)
		if readErr != nil {
			text = fmt.Sprintf("(could not read response body: %v)", readErr)
		}
		return &StatusError{
			URI:        RedactURI(target),
			StatusCode: resp.StatusCode,
			Status:     reasonPhrase(resp),
			Body:       text,
		}
	}

	n.logger.Debug().Str("event_id", notification.EventID).Int("status_code", resp.StatusCode).Msg("hipchat notification sent")
	return nil
}

// encodeMessage marshals the body without escaping HTML, since messages carry markup.
func encodeMessage(msg hipChatMessage) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(msg); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// reasonPhrase extracts "Unauthorized" from a status line like "401 Unauthorized".
func reasonPhrase(resp *http.Response) string {
	phrase := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if phrase == "" {
		phrase = http.StatusText(resp.StatusCode)
	}
	return phrase
}

// RedactURI hides the auth_token query value so the URI can be logged.
func RedactURI(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	if q.Has("auth_token") {
		q.Set("auth_token", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
