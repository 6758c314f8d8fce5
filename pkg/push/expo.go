// Package push posts notifications to an Expo-compatible push endpoint.
package push

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Message is one batched notification. Every token in To receives the same content.
type Message struct {
	To    []string `json:"to"`
	Sound string   `json:"sound,omitempty"`
	Title string   `json:"title"`
	Body  string   `json:"body"`
}

// Sender delivers a batched notification.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ExpoClient posts messages in a single request. Receipts are not tracked.
type ExpoClient struct {
	endpoint string
	timeout  time.Duration
}

// NewExpoClient creates a client for endpoint.
func NewExpoClient(endpoint string, timeout time.Duration) *ExpoClient {
	return &ExpoClient{endpoint: endpoint, timeout: timeout}
}

// Send posts msg and fails on transport errors or a non-2xx status.
func (c *ExpoClient) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout || timeout <= 0 {
			timeout = remaining
		}
	}

	agent := fiber.Post(c.endpoint).
		Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON).
		Set(fiber.HeaderAcceptEncoding, "gzip, deflate").
		JSON(msg)
	if timeout > 0 {
		agent = agent.Timeout(timeout)
	}

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("post push batch: %w", errs[0])
	}
	if code < fiber.StatusOK || code >= fiber.StatusMultipleChoices {
		return fmt.Errorf("post push batch: unexpected status %d: %s", code, truncate(body, 256))
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
