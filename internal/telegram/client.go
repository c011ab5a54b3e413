package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/DiscordantST/document-bot/internal/domain"
)

const (
	// DefaultBaseURL is the production Bot API endpoint.
	DefaultBaseURL = "https://api.telegram.org"
	// DefaultTimeout must exceed the long-poll hold time so getUpdates
	// calls are not cut off client-side.
	DefaultTimeout = 40 * time.Second
)

// Client is a minimal Bot API client covering the methods the bot uses.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client with default endpoint and timeout.
func NewClient(token string) *Client {
	return NewClientWithConfig(token, DefaultBaseURL, DefaultTimeout)
}

// NewClientWithConfig creates a client with a custom endpoint and timeout.
// Tests point baseURL at a local server.
func NewClientWithConfig(token, baseURL string, timeout time.Duration) *Client {
	return &Client{
		token:   token,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// call invokes one Bot API method and returns the raw result payload from
// the response envelope. A non-OK envelope is reported as a delivery error.
func (c *Client) call(ctx context.Context, method string, payload interface{}) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s request: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute %s: %w", method, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", method, err)
	}

	var envelope apiResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}
	if !envelope.OK {
		return nil, fmt.Errorf("%w: %s rejected (code %d): %s",
			domain.ErrDelivery, method, envelope.ErrorCode, envelope.Description)
	}
	return envelope.Result, nil
}

type getUpdatesRequest struct {
	Offset         int64    `json:"offset,omitempty"`
	Timeout        int      `json:"timeout,omitempty"`
	AllowedUpdates []string `json:"allowed_updates,omitempty"`
}

// GetUpdates long-polls for incoming updates starting at offset.
// timeoutSeconds is the server-side hold time; zero returns immediately.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeoutSeconds int) ([]Update, error) {
	request := getUpdatesRequest{
		Offset:         offset,
		Timeout:        timeoutSeconds,
		AllowedUpdates: []string{"message", "callback_query"},
	}

	raw, err := c.call(ctx, "getUpdates", request)
	if err != nil {
		return nil, err
	}

	var updates []Update
	if err := json.Unmarshal(raw, &updates); err != nil {
		return nil, fmt.Errorf("failed to parse updates: %w", err)
	}
	return updates, nil
}

type setWebhookRequest struct {
	URL            string   `json:"url"`
	SecretToken    string   `json:"secret_token,omitempty"`
	AllowedUpdates []string `json:"allowed_updates,omitempty"`
}

// SetWebhook registers url as the update destination. The secret, when
// set, is echoed back by Telegram on every delivery so the webhook server
// can authenticate requests.
func (c *Client) SetWebhook(ctx context.Context, url, secret string) error {
	request := setWebhookRequest{
		URL:            url,
		SecretToken:    secret,
		AllowedUpdates: []string{"message", "callback_query"},
	}

	_, err := c.call(ctx, "setWebhook", request)
	return err
}

// DeleteWebhook removes any registered webhook. getUpdates polling is
// rejected while a webhook is active, so polling mode clears it first.
func (c *Client) DeleteWebhook(ctx context.Context) error {
	_, err := c.call(ctx, "deleteWebhook", struct{}{})
	return err
}

type sendMessageRequest struct {
	ChatID      int64                 `json:"chat_id"`
	Text        string                `json:"text"`
	ParseMode   string                `json:"parse_mode,omitempty"`
	ReplyMarkup *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

// SendMessage sends a Markdown-formatted text message, optionally with an
// inline keyboard, and returns the sent message.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, keyboard *InlineKeyboardMarkup) (*Message, error) {
	request := sendMessageRequest{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   "Markdown",
		ReplyMarkup: keyboard,
	}

	raw, err := c.call(ctx, "sendMessage", request)
	if err != nil {
		return nil, err
	}

	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse sent message: %w", err)
	}
	return &msg, nil
}

type editMessageTextRequest struct {
	ChatID      int64                 `json:"chat_id"`
	MessageID   int64                 `json:"message_id"`
	Text        string                `json:"text"`
	ParseMode   string                `json:"parse_mode,omitempty"`
	ReplyMarkup *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

// EditMessageText replaces the text and keyboard of a previously sent message.
func (c *Client) EditMessageText(ctx context.Context, chatID, messageID int64, text string, keyboard *InlineKeyboardMarkup) error {
	request := editMessageTextRequest{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        text,
		ParseMode:   "Markdown",
		ReplyMarkup: keyboard,
	}

	_, err := c.call(ctx, "editMessageText", request)
	return err
}

type editMessageReplyMarkupRequest struct {
	ChatID      int64                 `json:"chat_id"`
	MessageID   int64                 `json:"message_id"`
	ReplyMarkup *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

// EditMessageReplyMarkup swaps only the keyboard of a sent message,
// leaving its text alone. Used when paging through a picker.
func (c *Client) EditMessageReplyMarkup(ctx context.Context, chatID, messageID int64, keyboard *InlineKeyboardMarkup) error {
	request := editMessageReplyMarkupRequest{
		ChatID:      chatID,
		MessageID:   messageID,
		ReplyMarkup: keyboard,
	}

	_, err := c.call(ctx, "editMessageReplyMarkup", request)
	return err
}

type answerCallbackQueryRequest struct {
	CallbackQueryID string `json:"callback_query_id"`
	Text            string `json:"text,omitempty"`
}

// AnswerCallbackQuery acknowledges a button press so the client stops
// showing a progress indicator. Text, when set, appears as a toast.
func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackID, text string) error {
	request := answerCallbackQueryRequest{
		CallbackQueryID: callbackID,
		Text:            text,
	}

	_, err := c.call(ctx, "answerCallbackQuery", request)
	return err
}

type sendDocumentRequest struct {
	ChatID   int64  `json:"chat_id"`
	Document string `json:"document"`
	Caption  string `json:"caption,omitempty"`
}

// SendDocument re-sends a stored file by its file_id. No file bytes pass
// through the bot.
func (c *Client) SendDocument(ctx context.Context, chatID int64, fileID, caption string) error {
	request := sendDocumentRequest{
		ChatID:   chatID,
		Document: fileID,
		Caption:  caption,
	}

	_, err := c.call(ctx, "sendDocument", request)
	return err
}

// IsNotModified reports whether err is the Bot API rejection for an edit
// that left the message unchanged. Refresh-style edits ignore it.
func IsNotModified(err error) bool {
	return err != nil && strings.Contains(err.Error(), "message is not modified")
}
