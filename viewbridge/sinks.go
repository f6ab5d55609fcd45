package viewbridge

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/hazyhaar/overlay/viewbridge/internal/sink"
	"github.com/hazyhaar/overlay/viewbridge/viewstate"
)

// Sink receives every published snapshot.
type Sink = sink.Sink

// Hub is the websocket sink editors subscribe to.
type Hub = sink.Hub

// Command is an editor command received over the websocket.
type Command = sink.Command

// NewStdoutSink creates a stdout JSON-lines sink.
func NewStdoutSink(w io.Writer) Sink {
	return sink.NewStdout(w)
}

// WebhookOption tunes a webhook sink.
type WebhookOption = sink.WebhookOption

// WithWebhookRetries sets how many times a failed delivery is retried.
func WithWebhookRetries(n int) WebhookOption { return sink.WithWebhookRetries(n) }

// WithWebhookBackoff sets the first retry delay, doubled on each attempt.
func WithWebhookBackoff(d time.Duration) WebhookOption { return sink.WithWebhookBackoff(d) }

// NewWebhookSink creates a webhook POST sink with retry.
func NewWebhookSink(url string, logger *slog.Logger, opts ...WebhookOption) Sink {
	if logger == nil {
		logger = slog.Default()
	}
	opts = append([]WebhookOption{sink.WithWebhookLogger(logger)}, opts...)
	return sink.NewWebhook(url, opts...)
}

func webhookOptions(c SinkConfig) []WebhookOption {
	var opts []WebhookOption
	if c.Retries != nil {
		opts = append(opts, WithWebhookRetries(*c.Retries))
	}
	if c.Backoff > 0 {
		opts = append(opts, WithWebhookBackoff(c.Backoff))
	}
	return opts
}

// NewCallbackSink creates an in-process sink: zero serialisation.
func NewCallbackSink(fn func(ctx context.Context, snap viewstate.Snapshot) error) Sink {
	return sink.NewCallback(fn)
}

// NewHub creates a websocket hub. Route its commands to a Bridge with
// (*Bridge).HandleCommand once the bridge is installed.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return sink.NewHub(sink.WithHubLogger(logger))
}

// SinksFromConfig builds the configured sinks. The websocket sink is the
// given hub; it is skipped when hub is nil.
func SinksFromConfig(cfgs []SinkConfig, out io.Writer, hub *Hub, logger *slog.Logger) ([]Sink, error) {
	var sinks []Sink
	for _, c := range cfgs {
		switch c.Type {
		case "stdout":
			sinks = append(sinks, NewStdoutSink(out))
		case "webhook":
			sinks = append(sinks, NewWebhookSink(c.URL, logger, webhookOptions(c)...))
		case "websocket":
			if hub != nil {
				sinks = append(sinks, hub)
			}
		default:
			return nil, fmt.Errorf("viewbridge: unknown sink type %q", c.Type)
		}
	}
	return sinks, nil
}

// HandleCommand applies an editor command: "select" (nil node id clears)
// or "update".
func (b *Bridge) HandleCommand(ctx context.Context, cmd Command) error {
	switch cmd.Type {
	case "select":
		return b.SetSelection(ctx, cmd.NodeID)
	case "update":
		return b.Update(ctx)
	default:
		return fmt.Errorf("viewbridge: unknown command %q", cmd.Type)
	}
}
