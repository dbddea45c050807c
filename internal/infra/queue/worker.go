package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// MessageHandler processa uma mensagem recebida (o use case de atendimento).
type MessageHandler interface {
	Process(ctx context.Context, payload InboundMessagePayload) error
}

// Consumer é satisfeito por *amqp.Channel.
type Consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

type Worker struct {
	Channel Consumer
	Handler MessageHandler
	log     *zap.SugaredLogger
}

func NewWorker(ch Consumer, handler MessageHandler, log *zap.Logger) *Worker {
	return &Worker{
		Channel: ch,
		Handler: handler,
		log:     log.Sugar(),
	}
}

// Start consome a fila até o contexto ser cancelado ou o canal fechar.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("falha ao registrar consumidor RabbitMQ: %w", err)
	}

	w.log.Infof(" [*] Worker aguardando na fila '%s'", queueName)

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				w.log.Warn("⚠️ [WORKER] Canal de entregas fechado")
				return nil
			}
			w.handle(ctx, d)
		}
	}
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	w.log.Debugw("📥 [WORKER] Mensagem recebida", "delivery_tag", d.DeliveryTag)

	var payload InboundMessagePayload
	if err := json.Unmarshal(d.Body, &payload); err != nil {
		w.log.Errorw("❌ [WORKER] JSON inválido", "error", err)
		// Mensagem malformada vai direto para a DLQ.
		d.Nack(false, false)
		return
	}

	if err := w.Handler.Process(ctx, payload); err != nil {
		w.log.Errorw("❌ [WORKER] Falha ao processar mensagem", "phone", payload.Phone, "message_id", payload.MessageID, "error", err)
		d.Nack(false, false)
		return
	}

	w.log.Infow("✅ [WORKER] Mensagem processada", "phone", payload.Phone)
	d.Ack(false)
}
