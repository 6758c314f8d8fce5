package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// keepAliveInterval is how often an idle stream sends a comment line, which
// is also how a disconnected client is noticed.
const keepAliveInterval = 15 * time.Second

// streamEvents writes every value from values as a server-sent event until
// values closes or the client goes away, then calls cancel and closed.
func streamEvents[T any](c *fiber.Ctx, values <-chan T, cancel context.CancelFunc, closed func()) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	path := c.Path()
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer closed()
		defer cancel()

		ticker := time.NewTicker(keepAliveInterval)
		defer ticker.Stop()

		for {
			select {
			case v, ok := <-values:
				if !ok {
					return
				}
				data, err := json.Marshal(v)
				if err != nil {
					log.Error().Err(err).Str("path", path).Msg("failed to encode stream event")
					return
				}
				if _, err := w.WriteString("data: "); err != nil {
					return
				}
				_, _ = w.Write(data)
				_, _ = w.WriteString("\n\n")
			case <-ticker.C:
				_, _ = w.WriteString(": keep-alive\n\n")
			}
			if err := w.Flush(); err != nil {
				log.Debug().Err(err).Str("path", path).Msg("stream client disconnected")
				return
			}
		}
	})
	return nil
}
