package telegramrepo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"bookborrow/util/httpx"
)

const DefaultBaseURL = "https://api.telegram.org"

type Repo interface {
	Send(ctx context.Context, text string) error
}

type Options struct {
	BotToken string
	ChatID   string
	BaseURL  string
}

type httpRepo struct {
	token   string
	chatID  string
	baseURL string
	client  *http.Client
}

func NewHTTP(o Options) Repo {
	base := strings.TrimRight(o.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return &httpRepo{token: o.BotToken, chatID: o.ChatID, baseURL: base, client: httpx.Client()}
}

type sendMessageBody struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
	DisableNotification   bool   `json:"disable_notification"`
}

type apiResp struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (r *httpRepo) Send(ctx context.Context, text string) error {
	if r.token == "" || r.chatID == "" {
		return errors.New("telegram: bot token or chat id not configured")
	}
	url := fmt.Sprintf("%s/bot%s/sendMessage", r.baseURL, r.token)

	var out apiResp
	err := httpx.PostJSON(ctx, r.client, url, sendMessageBody{ChatID: r.chatID, Text: text}, &out, nil)
	if err != nil {
		var se *httpx.StatusError
		if errors.As(err, &se) && out.Description != "" {
			return fmt.Errorf("telegram: %s", out.Description)
		}
		return fmt.Errorf("telegram: %w", err)
	}
	if !out.OK {
		return fmt.Errorf("telegram: %s", out.Description)
	}
	return nil
}
