package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"disciple-assessment-service/internal/domain"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type recordingChannel struct {
	exchange string
	key      string
	msgs     []amqp091.Publishing
	err      error
	closed   bool
}

func (c *recordingChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	c.exchange = exchange
	c.key = key
	c.msgs = append(c.msgs, msg)
	return c.err
}

func (c *recordingChannel) Close() error {
	c.closed = true
	return nil
}

func TestDisabledPublisherIsNoop(t *testing.T) {
	p, err := NewPublisher("", "", nil)
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}
	if err := p.PublishCompleted(context.Background(), domain.Result{ID: "r1"}); err != nil {
		t.Fatalf("disabled publish should succeed, got %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestPublishCompletedPayload(t *testing.T) {
	ch := &recordingChannel{}
	p := &Publisher{channel: ch, exchange: "assessment.events", enabled: true, logger: zap.NewNop()}
	completed := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)

	err := p.PublishCompleted(context.Background(), domain.Result{
		ID:          "r1",
		UserID:      "user-1",
		Scores:      map[string]float64{"identity": 4},
		CompletedAt: completed,
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if ch.exchange != "assessment.events" || ch.key != RoutingKeyCompleted || len(ch.msgs) != 1 {
		t.Fatalf("unexpected publish exchange=%s key=%s msgs=%d", ch.exchange, ch.key, len(ch.msgs))
	}

	var event CompletedEvent
	if err := json.Unmarshal(ch.msgs[0].Body, &event); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if event.ResultID != "r1" || event.UserID != "user-1" || event.Scores["identity"] != 4 || !event.CompletedAt.Equal(completed) {
		t.Fatalf("unexpected event %+v", event)
	}
	if ch.msgs[0].DeliveryMode != amqp091.Persistent {
		t.Fatalf("expected persistent delivery")
	}

	if err := p.Close(); err != nil || !ch.closed {
		t.Fatalf("expected channel closed, err=%v", err)
	}
}

func TestPublishErrorIsReturned(t *testing.T) {
	p := &Publisher{channel: &recordingChannel{err: errors.New("channel closed")}, exchange: "x", enabled: true, logger: zap.NewNop()}
	if err := p.PublishCompleted(context.Background(), domain.Result{ID: "r1"}); err == nil {
		t.Fatalf("expected publish error")
	}
}
