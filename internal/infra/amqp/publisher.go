// Package amqp announces stored assessment results on a RabbitMQ topic exchange.
package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"disciple-assessment-service/internal/domain"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// RoutingKeyCompleted is the routing key of the completion event.
const RoutingKeyCompleted = "assessment.completed"

// CompletedEvent is the message body published for each stored result.
type CompletedEvent struct {
	EventType   string             `json:"event_type"`
	ResultID    string             `json:"result_id"`
	UserID      string             `json:"user_id"`
	Scores      map[string]float64 `json:"scores"`
	CompletedAt time.Time          `json:"completed_at"`
}

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Publisher sends completion events. With no broker URL it is disabled and
// every publish is a no-op.
type Publisher struct {
	conn     *amqp091.Connection
	channel  channel
	exchange string
	enabled  bool
	logger   *zap.Logger
}

func NewPublisher(url, exchange string, logger *zap.Logger) (*Publisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if exchange == "" {
		exchange = "assessment.events"
	}
	if url == "" {
		logger.Info("amqp url is empty, event publishing is disabled")
		return &Publisher{exchange: exchange, logger: logger}, nil
	}

	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	logger.Info("event publisher initialized", zap.String("exchange", exchange))
	return &Publisher{conn: conn, channel: ch, exchange: exchange, enabled: true, logger: logger}, nil
}

// PublishCompleted announces a durably stored result.
func (p *Publisher) PublishCompleted(ctx context.Context, r domain.Result) error {
	if !p.enabled {
		return nil
	}
	body, err := json.Marshal(CompletedEvent{
		EventType:   RoutingKeyCompleted,
		ResultID:    r.ID,
		UserID:      r.UserID,
		Scores:      r.Scores,
		CompletedAt: r.CompletedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	err = p.channel.PublishWithContext(ctx,
		p.exchange,          // exchange
		RoutingKeyCompleted, // routing key
		false,               // mandatory
		false,               // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
			Headers: amqp091.Table{
				"event_type": RoutingKeyCompleted,
				"user_id":    r.UserID,
			},
		},
	)
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	p.logger.Debug("published event", zap.String("result_id", r.ID))
	return nil
}

func (p *Publisher) Close() error {
	if !p.enabled {
		return nil
	}
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			p.logger.Warn("closing amqp channel failed", zap.Error(err))
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			return fmt.Errorf("close rabbitmq connection: %w", err)
		}
	}
	return nil
}
