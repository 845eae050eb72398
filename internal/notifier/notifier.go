package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Message is a notification with a short title and a multi-line body.
type Message struct {
	Title string
	Body  string
}

// Channel delivers a message over one transport. Send returns whether the
// message was actually delivered so the fan-out can fall back to stdout
// when no channel is reachable.
type Channel interface {
	Send(ctx context.Context, msg Message) error
	Name() string
}

// Notifier fans a message out to all configured channels.
type Notifier struct {
	channels []Channel
}

func New(channels ...Channel) *Notifier {
	return &Notifier{channels: channels}
}

// Send delivers msg over every channel. If no channel succeeds the message
// is printed to stdout so an operator still sees it.
func (n *Notifier) Send(ctx context.Context, msg Message) error {
	delivered := 0
	var lastErr error
	for _, ch := range n.channels {
		if err := ch.Send(ctx, msg); err != nil {
			log.Error().Err(err).Str("channel", ch.Name()).Msg("notification failed")
			lastErr = err
			continue
		}
		log.Info().Str("channel", ch.Name()).Msg("notification sent")
		delivered++
	}
	if delivered == 0 {
		fmt.Printf("=== %s ===\n%s\n", msg.Title, msg.Body)
		if lastErr != nil {
			return fmt.Errorf("no channel delivered: %w", lastErr)
		}
	}
	return nil
}

// SendWithRetry retries Send with exponential backoff.
func (n *Notifier) SendWithRetry(ctx context.Context, msg Message, maxRetries int) error {
	var err error
	for i := 0; i < maxRetries; i++ {
		if err = n.Send(ctx, msg); err == nil {
			return nil
		}
		if i < maxRetries-1 {
			delay := time.Duration(1<<i) * time.Second
			log.Warn().Err(err).Dur("retry_in", delay).Msg("notification retry")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return fmt.Errorf("notification failed after %d attempts: %w", maxRetries, err)
}
