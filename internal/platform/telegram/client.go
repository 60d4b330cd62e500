package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultAPIURL = "https://api.telegram.org"

// Client выполняет запросы к Telegram Bot API
type Client struct {
	httpClient *http.Client
	token      string
	apiURL     string
}

func NewClient(token string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		token:  token,
		apiURL: defaultAPIURL,
	}
}

func (c *Client) GetMe(ctx context.Context) (*User, error) {
	var result struct {
		Ok          bool   `json:"ok"`
		Description string `json:"description,omitempty"`
		Result      User   `json:"result"`
	}

	if err := c.get(ctx, "getMe", nil, &result); err != nil {
		return nil, fmt.Errorf("failed to get bot info: %w", err)
	}
	if !result.Ok {
		return nil, fmt.Errorf("telegram API error: %s", result.Description)
	}

	return &result.Result, nil
}

// GetChat принимает @username или числовой ID канала
func (c *Client) GetChat(ctx context.Context, chatID string) (*Chat, error) {
	params := url.Values{
		"chat_id": {chatID},
	}

	var result struct {
		Ok          bool   `json:"ok"`
		Description string `json:"description,omitempty"`
		Result      Chat   `json:"result"`
	}

	if err := c.get(ctx, "getChat", params, &result); err != nil {
		return nil, fmt.Errorf("failed to get chat info: %w", err)
	}
	if !result.Ok {
		log.Debug().Str("chat_id", chatID).Str("description", result.Description).Msg("getChat returned not ok")
		return nil, fmt.Errorf("telegram API error: %s", result.Description)
	}

	return &result.Result, nil
}

func (c *Client) GetChatMember(ctx context.Context, chatID, userID int64) (*ChatMember, error) {
	params := url.Values{
		"chat_id": {strconv.FormatInt(chatID, 10)},
		"user_id": {strconv.FormatInt(userID, 10)},
	}

	var result struct {
		Ok          bool       `json:"ok"`
		Description string     `json:"description,omitempty"`
		Result      ChatMember `json:"result"`
	}

	if err := c.get(ctx, "getChatMember", params, &result); err != nil {
		return nil, fmt.Errorf("failed to get chat member: %w", err)
	}
	if !result.Ok {
		return nil, fmt.Errorf("telegram API error: %s", result.Description)
	}

	return &result.Result, nil
}

func (c *Client) GetChatMemberCount(ctx context.Context, chatID int64) (int, error) {
	params := url.Values{
		"chat_id": {strconv.FormatInt(chatID, 10)},
	}

	var result struct {
		Ok          bool   `json:"ok"`
		Description string `json:"description,omitempty"`
		Result      int    `json:"result"`
	}

	if err := c.get(ctx, "getChatMemberCount", params, &result); err != nil {
		return 0, fmt.Errorf("failed to get member count: %w", err)
	}
	if !result.Ok {
		return 0, fmt.Errorf("telegram API error: %s", result.Description)
	}

	return result.Result, nil
}

func (c *Client) ExportChatInviteLink(ctx context.Context, chatID int64) (string, error) {
	params := url.Values{
		"chat_id": {strconv.FormatInt(chatID, 10)},
	}

	var result struct {
		Ok          bool   `json:"ok"`
		Description string `json:"description,omitempty"`
		Result      string `json:"result"`
	}

	if err := c.get(ctx, "exportChatInviteLink", params, &result); err != nil {
		return "", fmt.Errorf("failed to export invite link: %w", err)
	}
	if !result.Ok {
		return "", fmt.Errorf("telegram API error: %s", result.Description)
	}

	return result.Result, nil
}

func (c *Client) GetFile(ctx context.Context, fileID string) (*File, error) {
	params := url.Values{
		"file_id": {fileID},
	}

	var result struct {
		Ok          bool   `json:"ok"`
		Description string `json:"description,omitempty"`
		Result      File   `json:"result"`
	}

	if err := c.get(ctx, "getFile", params, &result); err != nil {
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	if !result.Ok {
		return nil, fmt.Errorf("telegram API error: %s", result.Description)
	}

	return &result.Result, nil
}

// DownloadFile скачивает файл по file_path, полученному из getFile
func (c *Client) DownloadFile(ctx context.Context, filePath string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/file/bot%s/%s", c.apiURL, c.token, filePath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("file download failed: status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, markup *InlineKeyboardMarkup) error {
	payload := map[string]interface{}{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "HTML",
	}
	if markup != nil {
		payload["reply_markup"] = markup
	}

	var response struct {
		Ok          bool   `json:"ok"`
		Description string `json:"description,omitempty"`
	}

	if err := c.post(ctx, "sendMessage", payload, &response); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	if !response.Ok {
		return fmt.Errorf("telegram API error: %s", response.Description)
	}

	return nil
}

func (c *Client) EditMessageText(ctx context.Context, chatID, messageID int64, text string, markup *InlineKeyboardMarkup) error {
	payload := map[string]interface{}{
		"chat_id":    chatID,
		"message_id": messageID,
		"text":       text,
		"parse_mode": "HTML",
	}
	if markup != nil {
		payload["reply_markup"] = markup
	}

	var response struct {
		Ok          bool   `json:"ok"`
		Description string `json:"description,omitempty"`
	}

	if err := c.post(ctx, "editMessageText", payload, &response); err != nil {
		return fmt.Errorf("failed to edit message: %w", err)
	}
	if !response.Ok {
		return fmt.Errorf("telegram API error: %s", response.Description)
	}

	return nil
}

func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackID, text string, showAlert bool) error {
	payload := map[string]interface{}{
		"callback_query_id": callbackID,
		"text":              text,
		"show_alert":        showAlert,
	}

	var response struct {
		Ok          bool   `json:"ok"`
		Description string `json:"description,omitempty"`
	}

	if err := c.post(ctx, "answerCallbackQuery", payload, &response); err != nil {
		return fmt.Errorf("failed to answer callback: %w", err)
	}
	if !response.Ok {
		return fmt.Errorf("telegram API error: %s", response.Description)
	}

	return nil
}

func (c *Client) get(ctx context.Context, method string, params url.Values, result interface{}) error {
	endpoint := fmt.Sprintf("%s/bot%s/%s", c.apiURL, c.token, method)
	if len(params) > 0 {
		endpoint = fmt.Sprintf("%s?%s", endpoint, params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	return c.do(req, result)
}

func (c *Client) post(ctx context.Context, method string, payload interface{}, result interface{}) error {
	endpoint := fmt.Sprintf("%s/bot%s/%s", c.apiURL, c.token, method)

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, result)
}

func (c *Client) do(req *http.Request, result interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}
