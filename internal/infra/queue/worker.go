package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
	"github.com/xavierca1/leaddesk/internal/usecase"
)

type Notifier interface {
	Execute(ctx context.Context, leadID string) (*usecase.NotifyLeadOutput, error)
}

type Worker struct {
	Channel  *amqp.Channel
	Notifier Notifier
	Queue    string
}

func NewWorker(ch *amqp.Channel, notifier Notifier) *Worker {
	return &Worker{Channel: ch, Notifier: notifier, Queue: QueueName}
}

// Serve consome com ack manual até o ctx ser cancelado (suture.Service).
func (w *Worker) Serve(ctx context.Context) error {
	msgs, err := w.Channel.ConsumeWithContext(ctx, w.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("falha ao registrar consumidor RabbitMQ: %w", err)
	}

	log.Info().Str("queue", w.Queue).Msg("📥 Worker rodando e aguardando na fila")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("canal de consumo do RabbitMQ fechado")
			}
			w.handle(ctx, d)
		}
	}
}

func (w *Worker) String() string { return "rabbitmq-worker" }

// handle rejeita sem requeue tudo que falha: a mensagem vai para a DLQ.
func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	var payload NotifyPayload
	if err := json.Unmarshal(d.Body, &payload); err != nil || payload.LeadID == "" {
		log.Error().Err(err).Msg("❌ [WORKER] Mensagem inválida")
		_ = d.Nack(false, false)
		return
	}

	// Desligar o worker não interrompe uma notificação já em andamento
	if _, err := w.Notifier.Execute(context.WithoutCancel(ctx), payload.LeadID); err != nil {
		log.Error().Err(err).Str("lead_id", payload.LeadID).Msg("❌ [WORKER] Falha ao notificar lead")
		_ = d.Nack(false, false)
		return
	}

	log.Info().Str("lead_id", payload.LeadID).Msg("✅ [WORKER] Lead notificado")
	_ = d.Ack(false)
}
