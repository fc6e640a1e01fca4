package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/felixgeelhaar/taskboard/pkg/domain/events"
	"github.com/felixgeelhaar/taskboard/pkg/storage"
)

func TestNotifier_DeliverySuccess(t *testing.T) {
	var received atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := NewNotifier([]Endpoint{{Name: "test", URL: server.URL}}, nil, nil)
	n.Notify(context.Background(), events.New(events.TaskAdded, "k1", "Buy milk"))
	n.Wait()

	if received.Load() != 1 {
		t.Errorf("expected 1 delivery, got %d", received.Load())
	}
}

func TestNotifier_HMACSignature(t *testing.T) {
	secret := "test-secret"
	var (
		mu           sync.Mutex
		receivedSig  string
		receivedBody []byte
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		receivedSig = r.Header.Get(SignatureHeader)
		receivedBody = body
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := NewNotifier([]Endpoint{{Name: "test", URL: server.URL, Secret: secret}}, nil, nil)
	n.Notify(context.Background(), events.New(events.TaskToggled, "k1", "Buy milk"))
	n.Wait()

	mu.Lock()
	defer mu.Unlock()
	if receivedSig == "" {
		t.Fatalf("expected %s header", SignatureHeader)
	}
	if want := Sign(receivedBody, secret); receivedSig != want {
		t.Errorf("signature mismatch: got %s, want %s", receivedSig, want)
	}
}

func TestNotifier_RetryAndDeadLetter(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	dlStore := NewDeadLetterStore(filepath.Join(t.TempDir(), DeadLetterFile))
	ep := Endpoint{
		Name:       "test",
		URL:        server.URL,
		MaxRetries: 2,
		RetryDelay: 10 * time.Millisecond,
	}

	n := NewNotifier([]Endpoint{ep}, dlStore, nil)
	n.Notify(context.Background(), events.New(events.TaskRemoved, "k1", "Buy milk"))
	n.Wait()

	if attempts.Load() != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts.Load())
	}

	entries, err := dlStore.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 dead letter, got %d", len(entries))
	}
	if entries[0].EventType != string(events.TaskRemoved) || entries[0].Attempts != 2 {
		t.Errorf("unexpected dead letter %+v", entries[0])
	}
}

func TestNotifier_EventFilter(t *testing.T) {
	var received atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ep := Endpoint{Name: "test", URL: server.URL, Events: []string{string(events.AmountChanged)}}
	n := NewNotifier([]Endpoint{ep}, nil, nil)

	n.Notify(context.Background(), events.New(events.TaskAdded, "k1", "Buy milk"))
	n.Wait()
	if received.Load() != 0 {
		t.Errorf("expected 0 deliveries for filtered event, got %d", received.Load())
	}

	n.Notify(context.Background(), events.New(events.AmountChanged, "", "").With("amount", "5"))
	n.Wait()
	if received.Load() != 1 {
		t.Errorf("expected 1 delivery for matching event, got %d", received.Load())
	}
}

func TestNotifier_SubscribedToPublisher(t *testing.T) {
	payloads := make(chan Payload, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p Payload
		_ = json.NewDecoder(r.Body).Decode(&p)
		payloads <- p
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	n := NewNotifier([]Endpoint{{Name: "test", URL: server.URL}}, nil, nil)
	pub := storage.NewInMemoryPublisher(nil)
	pub.Subscribe(n.Handler())

	if err := pub.Publish(events.New(events.ListCleared, "", "")); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	n.Wait()

	select {
	case p := <-payloads:
		if p.EventType != events.ListCleared || p.Data.ID == "" {
			t.Errorf("unexpected payload %+v", p)
		}
	default:
		t.Fatal("no payload received")
	}
}
