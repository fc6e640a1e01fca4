// Package webhook delivers task list events to outgoing HTTP endpoints.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/felixgeelhaar/fortify/retry"

	"github.com/felixgeelhaar/taskboard/pkg/domain/events"
)

// SignatureHeader carries the HMAC-SHA256 of the body when a secret is set.
const SignatureHeader = "X-Taskboard-Signature"

// Endpoint is one webhook receiver.
type Endpoint struct {
	Name   string
	URL    string
	Secret string
	// Events limits delivery to these event types. Empty means all.
	Events     []string
	MaxRetries int
	RetryDelay time.Duration
}

// Notifier posts events to endpoints and dead-letters deliveries that keep failing.
type Notifier struct {
	endpoints  []Endpoint
	client     *http.Client
	deadLetter *DeadLetterStore
	logger     *slog.Logger
	wg         sync.WaitGroup
}

// NewNotifier creates a notifier. deadLetter and logger may be nil.
func NewNotifier(endpoints []Endpoint, deadLetter *DeadLetterStore, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		endpoints: endpoints,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		deadLetter: deadLetter,
		logger:     logger,
	}
}

// Payload is the JSON body sent to webhook endpoints.
type Payload struct {
	EventType events.Type  `json:"event_type"`
	Timestamp time.Time    `json:"timestamp"`
	Data      events.Event `json:"data"`
}

// Handler returns an events.Handler that hands each event to Notify.
func (n *Notifier) Handler() events.Handler {
	return func(e events.Event) error {
		n.Notify(context.Background(), e)
		return nil
	}
}

// Notify sends an event to all matching endpoints in the background.
func (n *Notifier) Notify(ctx context.Context, event events.Event) {
	body, err := json.Marshal(Payload{
		EventType: event.Type,
		Timestamp: event.Timestamp,
		Data:      event,
	})
	if err != nil {
		n.logger.Error("webhook payload", "event", event.Type, "error", err)
		return
	}

	for _, ep := range n.endpoints {
		if !matches(ep, event.Type) {
			continue
		}
		n.wg.Add(1)
		go func(ep Endpoint) {
			defer n.wg.Done()
			n.deliver(ctx, ep, event.Type, body)
		}(ep)
	}
}

// Wait blocks until in-flight deliveries finish.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

func matches(ep Endpoint, t events.Type) bool {
	if len(ep.Events) == 0 {
		return true
	}
	for _, f := range ep.Events {
		if f == string(t) {
			return true
		}
	}
	return false
}

func (n *Notifier) deliver(ctx context.Context, ep Endpoint, eventType events.Type, body []byte) {
	attempts := ep.MaxRetries
	if attempts <= 0 {
		attempts = 3
	}
	delay := ep.RetryDelay
	if delay <= 0 {
		delay = time.Second
	}

	r := retry.New[struct{}](retry.Config{
		MaxAttempts:   attempts,
		InitialDelay:  delay,
		BackoffPolicy: retry.BackoffExponential,
	})
	_, err := r.Do(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, n.send(ctx, ep, body)
	})
	if err == nil {
		return
	}

	n.logger.Warn("webhook delivery failed", "webhook", ep.Name, "event", eventType, "attempts", attempts, "error", err)
	if n.deadLetter == nil {
		return
	}
	dl := DeadLetter{
		Timestamp:   time.Now().UTC(),
		WebhookName: ep.Name,
		URL:         ep.URL,
		EventType:   string(eventType),
		Payload:     string(body),
		Error:       err.Error(),
		Attempts:    attempts,
	}
	if err := n.deadLetter.Append(dl); err != nil {
		n.logger.Error("dead letter append", "webhook", ep.Name, "error", err)
	}
}

func (n *Notifier) send(ctx context.Context, ep Endpoint, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ep.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Taskboard-Webhook/1.0")
	if ep.Secret != "" {
		req.Header.Set(SignatureHeader, Sign(body, ep.Secret))
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// Sign computes the HMAC-SHA256 of payload as "sha256=<hex>".
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
