package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/alexanderramin/tollgate/internal/domain"
)

const userAgent = "tollgate/0.1"

// NtfySink publishes intents to an ntfy topic URL.
type NtfySink struct {
	endpoint string
	client   *http.Client
}

func NewNtfySink(endpoint string, timeout time.Duration) *NtfySink {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &NtfySink{
		endpoint: strings.TrimSpace(endpoint),
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

func format(intent domain.NotificationIntent) payload {
	p := payload{
		title:   "Tollgate - " + intent.Title,
		message: intent.Message,
		tags:    []string{"tollgate", string(intent.Kind)},
	}
	if intent.RelatedKind != "" {
		p.tags = append(p.tags, string(intent.RelatedKind))
	}
	if intent.UserID != "" {
		p.message = fmt.Sprintf("@%s: %s", intent.UserID, intent.Message)
	}
	switch intent.Kind {
	case domain.NotifyOperatorAlert:
		p.priority = "urgent"
	case domain.NotifyTaskOverdue, domain.NotifyRequestRejected:
		p.priority = "high"
	}
	return p
}

func (n *NtfySink) Notify(ctx context.Context, intent domain.NotificationIntent) error {
	if n == nil || n.endpoint == "" {
		return nil
	}
	data := format(intent)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	req.Header.Set("Title", data.title)
	req.Header.Set("Tags", strings.Join(data.tags, ","))
	if data.priority != "" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
