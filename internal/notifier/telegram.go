package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const DefaultAPIBase = "https://api.telegram.org"

// TelegramClient talks to the Telegram Bot API.
type TelegramClient struct {
	BotToken string
	APIBase  string
	Client   *http.Client
}

// NewTelegramClient creates a client with optional proxy support. The HTTP
// timeout must exceed the long-poll timeout used by StartPolling.
func NewTelegramClient(botToken, proxyURL string) *TelegramClient {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &TelegramClient{
		BotToken: botToken,
		APIBase:  DefaultAPIBase,
		Client: &http.Client{
			Timeout:   35 * time.Second,
			Transport: transport,
		},
	}
}

func (t *TelegramClient) endpoint(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", strings.TrimRight(t.APIBase, "/"), t.BotToken, method)
}

// apiResponse is the envelope of every Bot API reply.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
	ErrorCode   int             `json:"error_code"`
}

// APIError is a Bot API reply with ok=false.
type APIError struct {
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram API error: %s (code %d)", e.Description, e.Code)
}

// isParseError reports whether Telegram rejected the Markdown entities of a text.
func isParseError(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && strings.Contains(ae.Description, "can't parse entities")
}

// call posts payload to method and decodes the result into out (may be nil).
func (t *TelegramClient) call(ctx context.Context, method string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint(method), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.Client.Do(req)
	if err != nil {
		// The URL carries the token; keep it out of the error text.
		if ue, ok := err.(*url.Error); ok {
			err = ue.Err
		}
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", method, err)
	}
	var env apiResponse
	if err := json.Unmarshal(respBody, &env); err != nil {
		return fmt.Errorf("telegram API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}
	if !env.OK {
		return &APIError{Code: env.ErrorCode, Description: env.Description}
	}
	if out != nil {
		if err := json.Unmarshal(env.Result, out); err != nil {
			return fmt.Errorf("decode %s result: %w", method, err)
		}
	}
	return nil
}

// sendText calls a text method with Markdown. If Telegram cannot parse the
// entities, the same text is sent once more without parse_mode.
func (t *TelegramClient) sendText(ctx context.Context, method string, payload map[string]any, out any) error {
	payload["parse_mode"] = "Markdown"
	err := t.call(ctx, method, payload, out)
	if !isParseError(err) {
		return err
	}
	log.Warn().Err(err).Str("method", method).Msg("markdown rejected, resending as plain text")
	delete(payload, "parse_mode")
	return t.call(ctx, method, payload, out)
}

// SendMessage sends text to chatID and returns the new message id.
func (t *TelegramClient) SendMessage(ctx context.Context, chatID int64, text string) (int, error) {
	var msg struct {
		MessageID int `json:"message_id"`
	}
	err := t.sendText(ctx, "sendMessage", map[string]any{
		"chat_id": chatID,
		"text":    text,
	}, &msg)
	if err != nil {
		return 0, fmt.Errorf("send message: %w", err)
	}
	return msg.MessageID, nil
}

// EditMessage replaces the text of a message sent earlier.
func (t *TelegramClient) EditMessage(ctx context.Context, chatID int64, messageID int, text string) error {
	if err := t.sendText(ctx, "editMessageText", map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
		"text":       text,
	}, nil); err != nil {
		return fmt.Errorf("edit message: %w", err)
	}
	return nil
}

// BotInfo is the subset of the getMe result the bot logs at startup.
type BotInfo struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
}

// GetMe verifies the token and returns the bot's identity.
func (t *TelegramClient) GetMe(ctx context.Context) (*BotInfo, error) {
	var info BotInfo
	if err := t.call(ctx, "getMe", struct{}{}, &info); err != nil {
		return nil, fmt.Errorf("bot connection failed: %w", err)
	}
	return &info, nil
}
