// Package kafka consumes the payment gateway's outcome events and turns them
// into payment confirmations and failures.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"parcelbot/internal/core/application/usecases/commands"
	"parcelbot/internal/pkg/errs"

	"github.com/IBM/sarama"
)

// Event statuses published by the gateway.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Results of processing one event, used as the metric label.
const (
	ResultApplied    = "applied"
	ResultDuplicate  = "duplicate"
	ResultMalformed  = "malformed"
	ResultUnknownRef = "unknown_reference"
	ResultRejected   = "rejected"
)

// PaymentEvent is the payload of a gateway outcome event.
type PaymentEvent struct {
	ChargeReference string `json:"charge_reference"`
	Status          string `json:"status"`
	Reason          string `json:"reason,omitempty"`
}

type confirmHandler interface {
	Handle(ctx context.Context, cmd commands.ConfirmPaymentCommand) (commands.ConfirmPaymentResult, error)
}

type failHandler interface {
	Handle(ctx context.Context, cmd commands.FailPaymentCommand) error
}

type eventObserver interface {
	ObservePaymentEvent(status, result string)
}

// RetryPolicy bounds the in-place retries of one event. An unknown charge
// reference is retried because the event can overtake the write that
// attaches the reference; a version conflict is retried because another
// writer changed the order in between.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

var DefaultRetryPolicy = RetryPolicy{Attempts: 5, Delay: 200 * time.Millisecond}

// Consumer wraps a Sarama consumer group and dispatches events to the
// payment use cases.
type Consumer struct {
	group    sarama.ConsumerGroup
	topic    string
	confirm  confirmHandler
	fail     failHandler
	observer eventObserver
	retry    RetryPolicy
	logger   *slog.Logger
}

// NewConsumerGroup creates a consumer group reading from the oldest offset
// when the group has none committed.
func NewConsumerGroup(brokers []string, groupID string) (sarama.ConsumerGroup, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_1_0_0
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	return sarama.NewConsumerGroup(brokers, groupID, cfg)
}

func NewConsumer(
	group sarama.ConsumerGroup,
	topic string,
	confirm confirmHandler,
	fail failHandler,
	observer eventObserver,
	retry RetryPolicy,
	logger *slog.Logger,
) *Consumer {
	if retry.Attempts <= 0 {
		retry = DefaultRetryPolicy
	}
	return &Consumer{
		group:    group,
		topic:    topic,
		confirm:  confirm,
		fail:     fail,
		observer: observer,
		retry:    retry,
		logger:   logger.With("component", "payment-events-consumer"),
	}
}

// Run consumes until ctx is canceled. Consume returns on every rebalance, so
// it is called in a loop.
func (c *Consumer) Run(ctx context.Context) error {
	h := &groupHandler{c: c}

	for {
		if err := c.group.Consume(ctx, []string{c.topic}, h); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return err
			}
			c.logger.ErrorContext(ctx, "consume error", "error", err)
			if !sleepWithContext(ctx, time.Second) {
				return ctx.Err()
			}
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (c *Consumer) Close() error {
	return c.group.Close()
}

// Process applies one raw event. A nil error means the message is done and
// its offset may be committed; an error means it must be delivered again.
func (c *Consumer) Process(ctx context.Context, value []byte) error {
	var ev PaymentEvent
	if err := json.Unmarshal(value, &ev); err != nil {
		c.logger.WarnContext(ctx, "skipping malformed payment event", "error", err)
		c.observe("unknown", ResultMalformed)
		return nil
	}

	status := strings.ToLower(strings.TrimSpace(ev.Status))
	if status != StatusSucceeded && status != StatusFailed {
		c.logger.WarnContext(ctx, "skipping payment event with unknown status", "status", ev.Status)
		c.observe("unknown", ResultMalformed)
		return nil
	}

	var (
		result string
		err    error
	)
	for attempt := 1; attempt <= c.retry.Attempts; attempt++ {
		result, err = c.dispatch(ctx, status, ev)
		if err == nil || !isRetryable(err) || attempt == c.retry.Attempts {
			break
		}
		if !sleepWithContext(ctx, c.retry.Delay) {
			return ctx.Err()
		}
	}

	switch {
	case err == nil:
		c.observe(status, result)
		return nil
	case errors.Is(err, errs.ErrObjectNotFound):
		c.logger.WarnContext(ctx, "payment event for unknown charge reference",
			"charge_reference", ev.ChargeReference, "status", status)
		c.observe(status, ResultUnknownRef)
		return nil
	case errors.Is(err, errs.ErrValueIsInvalid), errors.Is(err, errs.ErrValueIsRequired):
		c.logger.WarnContext(ctx, "payment event rejected",
			"charge_reference", ev.ChargeReference, "status", status, "error", err)
		c.observe(status, ResultRejected)
		return nil
	default:
		return fmt.Errorf("process %s event for %s: %w", status, ev.ChargeReference, err)
	}
}

func (c *Consumer) dispatch(ctx context.Context, status string, ev PaymentEvent) (string, error) {
	if status == StatusSucceeded {
		cmd, err := commands.NewConfirmPaymentCommand(ev.ChargeReference)
		if err != nil {
			return "", err
		}
		res, err := c.confirm.Handle(ctx, cmd)
		if err != nil {
			return "", err
		}
		if res.AlreadyConfirmed {
			return ResultDuplicate, nil
		}
		return ResultApplied, nil
	}

	cmd, err := commands.NewFailPaymentCommand(ev.ChargeReference, ev.Reason)
	if err != nil {
		return "", err
	}
	if err = c.fail.Handle(ctx, cmd); err != nil {
		return "", err
	}
	return ResultApplied, nil
}

func (c *Consumer) observe(status, result string) {
	if c.observer != nil {
		c.observer.ObservePaymentEvent(status, result)
	}
}

func isRetryable(err error) bool {
	return errors.Is(err, errs.ErrObjectNotFound) || errors.Is(err, errs.ErrVersionIsInvalid)
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

type groupHandler struct{ c *Consumer }

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *groupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		if err := h.c.Process(sess.Context(), msg.Value); err != nil {
			h.c.logger.ErrorContext(sess.Context(), "payment event failed, will be redelivered",
				"partition", msg.Partition, "offset", msg.Offset, "error", err)
			return err
		}
		sess.MarkMessage(msg, "")
	}
	return nil
}
