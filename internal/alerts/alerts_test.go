package alerts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	kafka "github.com/segmentio/kafka-go"

	"github.com/jredh-dev/foodrescue/internal/events"
	"github.com/jredh-dev/foodrescue/internal/expiry"
	"github.com/jredh-dev/foodrescue/internal/models"
)

type fakeWriter struct {
	msgs []kafka.Message
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

type fakeNotifier struct {
	calls int
	fail  int // fail the first n calls
}

func (n *fakeNotifier) Notify(context.Context, events.Event) error {
	n.calls++
	if n.calls <= n.fail {
		return errors.New("unreachable")
	}
	return nil
}

func testConsumer(n Notifier) (*Consumer, *fakeWriter) {
	w := &fakeWriter{}
	return &Consumer{dlq: w, notifier: n, backoff: func(int) time.Duration { return 0 }}, w
}

func message(t *testing.T, typ events.Type, urgency expiry.Urgency) kafka.Message {
	t.Helper()
	d := &models.Donation{ID: "d-1", Urgency: urgency, Quantity: 3}
	m, err := events.Message(events.New(typ, d, "Hotel Grand", time.Now()))
	if err != nil {
		t.Fatalf("message: %v", err)
	}
	return m
}

func TestShouldAlert(t *testing.T) {
	tests := []struct {
		typ     events.Type
		urgency expiry.Urgency
		want    bool
	}{
		{events.TypeCreated, expiry.High, true},
		{events.TypeCreated, expiry.Medium, false},
		{events.TypeAccepted, expiry.High, false},
	}
	for _, tt := range tests {
		e := events.Event{Type: tt.typ, Urgency: string(tt.urgency)}
		if got := ShouldAlert(e); got != tt.want {
			t.Errorf("ShouldAlert(%s, %s) = %v, want %v", tt.typ, tt.urgency, got, tt.want)
		}
	}
}

func TestHandle(t *testing.T) {
	ctx := context.Background()

	t.Run("urgent is notified", func(t *testing.T) {
		n := &fakeNotifier{}
		c, dlq := testConsumer(n)
		if err := c.handle(ctx, message(t, events.TypeCreated, expiry.High)); err != nil {
			t.Fatalf("handle: %v", err)
		}
		if n.calls != 1 || len(dlq.msgs) != 0 {
			t.Errorf("calls=%d dlq=%d", n.calls, len(dlq.msgs))
		}
	})

	t.Run("not urgent is skipped", func(t *testing.T) {
		n := &fakeNotifier{}
		c, _ := testConsumer(n)
		if err := c.handle(ctx, message(t, events.TypeCreated, expiry.Low)); err != nil {
			t.Fatalf("handle: %v", err)
		}
		if n.calls != 0 {
			t.Errorf("calls = %d, want 0", n.calls)
		}
	})

	t.Run("retries then succeeds", func(t *testing.T) {
		n := &fakeNotifier{fail: 2}
		c, dlq := testConsumer(n)
		if err := c.handle(ctx, message(t, events.TypeCreated, expiry.High)); err != nil {
			t.Fatalf("handle: %v", err)
		}
		if n.calls != 3 || len(dlq.msgs) != 0 {
			t.Errorf("calls=%d dlq=%d", n.calls, len(dlq.msgs))
		}
	})

	t.Run("exhausted retries go to DLQ", func(t *testing.T) {
		n := &fakeNotifier{fail: maxRetries}
		c, dlq := testConsumer(n)
		if err := c.handle(ctx, message(t, events.TypeCreated, expiry.High)); err == nil {
			t.Fatal("expected error")
		}
		if len(dlq.msgs) != 1 || string(dlq.msgs[0].Key) != "d-1" {
			t.Fatalf("dlq = %+v", dlq.msgs)
		}
		last := dlq.msgs[0].Headers[len(dlq.msgs[0].Headers)-1]
		if last.Key != "error" || !strings.Contains(string(last.Value), "unreachable") {
			t.Errorf("error header = %+v", last)
		}
	})

	t.Run("garbage goes to DLQ", func(t *testing.T) {
		c, dlq := testConsumer(&fakeNotifier{})
		if err := c.handle(ctx, kafka.Message{Key: []byte("x"), Value: []byte("{")}); err == nil {
			t.Fatal("expected error")
		}
		if len(dlq.msgs) != 1 {
			t.Errorf("dlq = %d, want 1", len(dlq.msgs))
		}
	})
}

func TestWebhookNotifier(t *testing.T) {
	var got webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	e := events.Event{Type: events.TypeCreated, DonationID: "d-9", Actor: "Hotel Grand", Quantity: 2.5, Urgency: "HIGH"}
	if err := NewWebhookNotifier(srv.URL).Notify(context.Background(), e); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if got.DonationID != "d-9" || got.Text != "Urgent pickup: 2.5kg from Hotel Grand needs collecting soon (donation d-9)" {
		t.Errorf("payload = %+v", got)
	}
}

func TestWebhookNotifier_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewWebhookNotifier(srv.URL).Notify(context.Background(), events.Event{})
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Errorf("err = %v, want 502", err)
	}
}
