package paymentgw

import (
	"context"
	"time"
)

var Backoff = backoff

// WithoutDelay makes g retry immediately and records the delays it would
// have waited.
func (g *RetryingGateway) WithoutDelay(delays *[]time.Duration) *RetryingGateway {
	g.wait = func(_ context.Context, d time.Duration) bool {
		*delays = append(*delays, d)
		return true
	}
	return g
}

func (g *KafkaGateway) WithNow(now func() time.Time) *KafkaGateway {
	g.now = now
	return g
}
