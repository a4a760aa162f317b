package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/autogarden/thermctl/internal/climate"
)

// DiscordSink posts event messages to a Discord webhook. Deliveries are
// rate limited so a flapping sensor cannot spam the channel.
type DiscordSink struct {
	url      string
	username string
	client   *http.Client
	limiter  *rate.Limiter
}

// NewDiscordSink creates a sink for the given webhook URL.
func NewDiscordSink(url string) *DiscordSink {
	return &DiscordSink{
		url:      url,
		username: "Auto Garden Bot",
		client:   &http.Client{Timeout: 10 * time.Second},
		limiter:  rate.NewLimiter(rate.Every(5*time.Second), 5),
	}
}

// Name implements Sink.
func (s *DiscordSink) Name() string { return "discord" }

// Send posts the event message. Events over the rate limit are dropped
// rather than queued; the event log keeps the full history.
func (s *DiscordSink) Send(e climate.Event) error {
	if !s.limiter.Allow() {
		return fmt.Errorf("rate limited")
	}

	body, err := json.Marshal(map[string]string{
		"content":  s.decorate(e),
		"username": s.username,
	})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func (s *DiscordSink) decorate(e climate.Event) string {
	switch e.Type {
	case climate.EventTempAlert:
		return "🚨 " + e.Message
	case climate.EventSensorFault, climate.EventError:
		return "⚠️ " + e.Message
	case climate.EventScheduleApplied:
		return "🕐 " + e.Message
	case climate.EventStartup:
		return "✅ " + e.Message
	default:
		return e.Message
	}
}
