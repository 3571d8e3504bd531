package notifications

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"sheet_image_gen/internal/retry"

	"github.com/rs/zerolog/log"
)

// Client posts plain-text messages to an ntfy topic.
type Client struct {
	httpClient *http.Client
	baseURL    string
	topic      string
	enabled    bool
	priority   string
	retry      retry.Config
}

// RunSummary is what a finished run reports.
type RunSummary struct {
	Total       int
	Generated   int
	PassedOn    int
	Failed      int
	Embedded    bool
	EmbedFailed bool
}

type NotificationError struct {
	Type       string
	StatusCode int
	Underlying error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("notification failed [%s]: %v", e.Type, e.Underlying)
}

func (e *NotificationError) Unwrap() error { return e.Underlying }

func (e *NotificationError) IsRetryable() bool {
	switch e.Type {
	case "network", "server", "rate_limit":
		return true
	case "auth", "client":
		return false
	default:
		return e.StatusCode >= 500
	}
}

func NewClient(baseURL, topic string, enabled bool, priority string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		topic:    topic,
		enabled:  enabled,
		priority: priority,
		retry: retry.Config{
			Name:       "notification",
			MaxRetries: 3,
			BaseDelay:  time.Second,
			MaxDelay:   10 * time.Second,
			Timeout:    10 * time.Second,
		},
	}
}

func (c *Client) Enabled() bool {
	return c != nil && c.enabled
}

// SendNotification posts message, retrying network, 5xx and 429 failures.
func (c *Client) SendNotification(ctx context.Context, message string) error {
	if !c.Enabled() {
		log.Debug().Msg("Notifications disabled, skipping")
		return nil
	}

	_, err := retry.WithRetry(ctx, c.retry, func(ctx context.Context) (struct{}, error) {
		err := c.sendSingleNotification(ctx, message)
		if notifErr, ok := err.(*NotificationError); ok && !notifErr.IsRetryable() {
			return struct{}{}, retry.Permanent(err)
		}
		return struct{}{}, err
	})
	return err
}

func (c *Client) sendSingleNotification(ctx context.Context, message string) error {
	url := fmt.Sprintf("%s/%s", c.baseURL, c.topic)

	log.Debug().
		Str("url", url).
		Str("message", message).
		Msg("Sending notification")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBufferString(message))
	if err != nil {
		return &NotificationError{Type: "client", Underlying: err}
	}

	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Title", "Image generation run finished")
	if c.priority != "" {
		req.Header.Set("Priority", c.priority)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NotificationError{Type: "network", Underlying: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return &NotificationError{
			Type:       categorizeHTTPError(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Underlying: fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status),
		}
	}

	log.Debug().Int("status_code", resp.StatusCode).Msg("Notification sent successfully")
	return nil
}

// NotifyRunSummary sends the end-of-run report. Failures are logged, never returned.
func (c *Client) NotifyRunSummary(ctx context.Context, s RunSummary) {
	if !c.Enabled() {
		return
	}
	if err := c.SendNotification(ctx, FormatRunSummary(s)); err != nil {
		log.Warn().Err(err).Msg("Failed to send run summary")
	}
}

func FormatRunSummary(s RunSummary) string {
	var sb strings.Builder
	if s.Total == 1 {
		sb.WriteString("1 row processed\n")
	} else {
		sb.WriteString(fmt.Sprintf("%d rows processed\n", s.Total))
	}
	sb.WriteString(fmt.Sprintf("• %d generated\n", s.Generated))
	sb.WriteString(fmt.Sprintf("• %d already had a URL\n", s.PassedOn))
	if s.Failed > 0 {
		sb.WriteString(fmt.Sprintf("• %d failed or timed out\n", s.Failed))
	}
	switch {
	case s.EmbedFailed:
		sb.WriteString("Embedding images into the sheet stopped early")
	case s.Embedded:
		sb.WriteString("Images embedded into the sheet")
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func categorizeHTTPError(statusCode int) string {
	switch {
	case statusCode == 401 || statusCode == 403:
		return "auth"
	case statusCode == 429:
		return "rate_limit"
	case statusCode >= 400 && statusCode < 500:
		return "client"
	case statusCode >= 500:
		return "server"
	default:
		return "unknown"
	}
}
