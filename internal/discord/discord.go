package discord

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sanyoog/retro-cam/internal/webhook"
)

// Send posts a message to a Discord channel via webhook URL.
func Send(ctx context.Context, webhookURL, message string) error {
	body, err := json.Marshal(map[string]string{"content": message})
	if err != nil {
		return fmt.Errorf("discord: marshal: %w", err)
	}
	if err := webhook.Send(ctx, webhookURL, string(body), nil); err != nil {
		return fmt.Errorf("discord: %w", err)
	}
	return nil
}
