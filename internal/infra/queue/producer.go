package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/xavierca1/quizlead-crm/internal/entity"
)

// Publisher is the part of *amqp.Channel the producer needs.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitMQProducer struct {
	Ch Publisher
}

func NewProducer(ch Publisher) *RabbitMQProducer {
	return &RabbitMQProducer{Ch: ch}
}

func (p *RabbitMQProducer) PublishLeadEvent(ctx context.Context, event entity.LeadEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("erro ao converter evento: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // Mandatory
		false, // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         event.Type,
			MessageId:    event.LeadID,
			Timestamp:    event.OccurredAt,
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("falha ao publicar no RabbitMQ: %w", err)
	}
	return nil
}

// InlinePublisher hands events straight to a handler on its own goroutine.
// Used when the service runs without a broker.
type InlinePublisher struct {
	Handler EventHandler
	Logger  *zap.Logger
}

func NewInlinePublisher(handler EventHandler, logger *zap.Logger) *InlinePublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InlinePublisher{Handler: handler, Logger: logger}
}

func (p *InlinePublisher) PublishLeadEvent(_ context.Context, event entity.LeadEvent) error {
	go func() {
		if err := p.Handler.HandleLeadEvent(context.Background(), event); err != nil {
			p.Logger.Error("❌ falha ao processar evento", zap.String("lead_id", event.LeadID), zap.Error(err))
		}
	}()
	return nil
}
