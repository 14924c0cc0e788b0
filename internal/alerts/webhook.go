package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/jredh-dev/foodrescue/internal/events"
)

// WebhookNotifier posts a Slack-style {"text": ...} payload to a URL.
type WebhookNotifier struct {
	url        string
	httpClient *http.Client
}

// NewWebhookNotifier creates a WebhookNotifier for url.
func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url:        url,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type webhookPayload struct {
	Text       string  `json:"text"`
	DonationID string  `json:"donation_id"`
	Quantity   float64 `json:"quantity"`
}

// Text is the human-readable alert line for e.
func Text(e events.Event) string {
	return fmt.Sprintf("Urgent pickup: %gkg from %s needs collecting soon (donation %s)", e.Quantity, e.Actor, e.DonationID)
}

// Notify posts the alert. Any non-2xx response is an error.
func (n *WebhookNotifier) Notify(ctx context.Context, e events.Event) error {
	body, err := json.Marshal(webhookPayload{Text: Text(e), DonationID: e.DonationID, Quantity: e.Quantity})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// LogNotifier writes alerts to the default logger. It is used when no
// webhook is configured.
type LogNotifier struct{}

// Notify logs the alert.
func (LogNotifier) Notify(_ context.Context, e events.Event) error {
	slog.Warn("urgent donation", "alert", Text(e), "donation_id", e.DonationID)
	return nil
}
