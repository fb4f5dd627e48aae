// Package payment provides the PendingPayment aggregate: the reserved intent
// of a paid action, held between asking the payment gateway for a charge and
// hearing back whether the customer paid.
//
// The package includes:
//   - Payment: the aggregate root recording what is being paid for, how much,
//     and the gateway's charge reference
//   - Purpose: what the payment buys (a tier upgrade or a reschedule top-up)
//   - Status: the payment state machine
//
// Key business rules:
//   - Amounts are positive, in minor currency units
//   - A tier upgrade payment names the tier it buys
//   - The order itself is changed only once the payment is confirmed
//   - Confirmation is idempotent, so at-least-once delivery of gateway events
//     never applies a paid change twice
package payment
