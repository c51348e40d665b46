// Package natspub publishes a single message to a NATS server.
package natspub

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// Timeout bounds the connection attempt.
const Timeout = 5 * time.Second

// Publish connects to url, publishes payload on subject, waits for the
// server to acknowledge the flush, and disconnects.
func Publish(ctx context.Context, url, subject string, payload []byte) error {
	if subject == "" {
		return fmt.Errorf("nats: empty subject")
	}
	conn, err := nats.Connect(url,
		nats.Name("shipit"),
		nats.Timeout(Timeout),
		nats.NoReconnect(),
	)
	if err != nil {
		return fmt.Errorf("nats: connect: %w", err)
	}
	defer conn.Close()

	if err := conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("nats: publish: %w", err)
	}
	if err := conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("nats: flush: %w", err)
	}
	return nil
}
