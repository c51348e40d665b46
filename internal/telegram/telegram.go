package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sanyoog/retro-cam/internal/httputil"
)

// Send posts a message to a Telegram chat via the Bot API.
func Send(ctx context.Context, token, chatID, message string) error {
	endpoint := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", token)
	return sendTo(ctx, endpoint, chatID, message)
}

// sendTo posts a message to the given endpoint. Extracted for testing.
func sendTo(ctx context.Context, endpoint, chatID, message string) error {
	form := url.Values{
		"chat_id": {chatID},
		"text":    {message},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("telegram: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := httputil.Client.Do(req)
	if err != nil {
		// The endpoint embeds the bot token; keep it out of the message.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return fmt.Errorf("telegram: post: %w", err)
	}
	defer resp.Body.Close()

	return httputil.CheckStatus(resp, "telegram: API")
}
