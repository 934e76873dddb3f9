package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/xavierca1/quizlead-crm/internal/entity"
)

// EventHandler reacts to lead events (welcome message, seller notification, alerts).
type EventHandler interface {
	HandleLeadEvent(ctx context.Context, event entity.LeadEvent) error
}

type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

type Worker struct {
	Channel *amqp.Channel
	Handler EventHandler
	Logger  *zap.Logger
	// OnProcessed observes every delivery outcome ("ok", "invalid", "failed").
	OnProcessed func(outcome string)
}

func NewWorker(ch *amqp.Channel, handler EventHandler, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{Channel: ch, Handler: handler, Logger: logger}
}

// Start consumes queueName until ctx is done or the channel closes.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	if err := w.Channel.Qos(10, 0, false); err != nil {
		return fmt.Errorf("falha ao configurar prefetch: %w", err)
	}
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // auto-ack (manual é mais seguro)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("falha ao registrar consumidor RabbitMQ: %w", err)
	}

	w.Logger.Info("📥 worker de eventos iniciado", zap.String("queue", queueName))
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("canal do RabbitMQ fechado")
			}
			w.handle(ctx, d.Body, d)
		}
	}
}

// handle processes one delivery. Broken or failing messages are rejected
// without requeue so they land in the DLQ instead of blocking the queue.
func (w *Worker) handle(ctx context.Context, body []byte, ack acknowledger) {
	var event entity.LeadEvent
	if err := json.Unmarshal(body, &event); err != nil {
		w.Logger.Error("❌ evento inválido", zap.Error(err))
		_ = ack.Nack(false, false)
		w.observe("invalid")
		return
	}

	if err := w.Handler.HandleLeadEvent(ctx, event); err != nil {
		w.Logger.Error("❌ falha ao processar evento",
			zap.String("type", event.Type),
			zap.String("lead_id", event.LeadID),
			zap.Error(err),
		)
		_ = ack.Nack(false, false)
		w.observe("failed")
		return
	}

	_ = ack.Ack(false)
	w.observe("ok")
}

func (w *Worker) observe(outcome string) {
	if w.OnProcessed != nil {
		w.OnProcessed(outcome)
	}
}
