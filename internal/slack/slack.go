package slack

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sanyoog/retro-cam/internal/webhook"
)

// Send posts a message to a Slack channel via incoming webhook URL.
func Send(ctx context.Context, webhookURL, message string) error {
	body, err := json.Marshal(map[string]string{"text": message})
	if err != nil {
		return fmt.Errorf("slack: marshal: %w", err)
	}
	if err := webhook.Send(ctx, webhookURL, string(body), nil); err != nil {
		return fmt.Errorf("slack: %w", err)
	}
	return nil
}
