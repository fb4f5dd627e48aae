// Package paymentgw requests charges from the payment gateway. Charge
// requests are published to a Kafka topic the gateway consumes; the outcome
// comes back asynchronously on the payment events topic.
package paymentgw

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"parcelbot/internal/core/ports"

	"github.com/IBM/sarama"
)

// IdempotencyKeyHeader carries the payment id; the gateway drops repeated
// requests with the same key.
const IdempotencyKeyHeader = "Idempotency-Key"

// ChargeMessage is the payload of a charge request.
type ChargeMessage struct {
	PaymentID   string    `json:"payment_id"`
	OrderID     string    `json:"order_id"`
	Description string    `json:"description"`
	AmountMinor int64     `json:"amount_minor"`
	Currency    string    `json:"currency"`
	RequestedAt time.Time `json:"requested_at"`
}

// KafkaGateway implements ports.PaymentGateway over a synchronous producer.
// The payment id doubles as the charge reference: it is what the gateway
// echoes back in its events.
type KafkaGateway struct {
	producer sarama.SyncProducer
	topic    string
	now      func() time.Time
}

func NewKafkaGateway(producer sarama.SyncProducer, topic string) *KafkaGateway {
	return &KafkaGateway{producer: producer, topic: topic, now: time.Now}
}

// NewSyncProducer builds an idempotent producer that waits for all in-sync
// replicas.
func NewSyncProducer(brokers []string) (sarama.SyncProducer, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_1_0_0
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Idempotent = true
	cfg.Producer.Retry.Max = 3
	cfg.Net.MaxOpenRequests = 1

	return sarama.NewSyncProducer(brokers, cfg)
}

func (g *KafkaGateway) CreateCharge(ctx context.Context, req ports.ChargeRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if req.AmountMinor <= 0 {
		return "", fmt.Errorf("%w: amount %d is not positive", ports.ErrChargeDeclined, req.AmountMinor)
	}

	reference := req.IdempotencyKey.String()
	payload, err := json.Marshal(ChargeMessage{
		PaymentID:   reference,
		OrderID:     req.OrderID.String(),
		Description: req.Description,
		AmountMinor: req.AmountMinor,
		Currency:    req.Currency,
		RequestedAt: g.now().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ports.ErrChargeDeclined, err)
	}

	_, _, err = g.producer.SendMessage(&sarama.ProducerMessage{
		Topic: g.topic,
		Key:   sarama.StringEncoder(req.OrderID.String()),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte(IdempotencyKeyHeader), Value: []byte(reference)},
		},
	})
	if err != nil {
		if isRejectedMessage(err) {
			return "", fmt.Errorf("%w: %w", ports.ErrChargeDeclined, err)
		}
		return "", fmt.Errorf("publish charge request: %w", err)
	}

	return reference, nil
}

// isRejectedMessage reports broker errors that no retry can fix.
func isRejectedMessage(err error) bool {
	return errors.Is(err, sarama.ErrMessageSizeTooLarge) ||
		errors.Is(err, sarama.ErrInvalidMessage) ||
		errors.Is(err, sarama.ErrInvalidMessageSize)
}
