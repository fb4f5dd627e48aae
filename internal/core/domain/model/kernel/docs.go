// Package kernel holds the value objects shared by every aggregate of the
// rescheduling service.
//
// The package includes:
//   - UUID: identifier of pending payments, also used as the gateway idempotency key
//   - OrderID: opaque identifier of a parcel order as issued by the shipment registry
//   - Date: a calendar date with no time zone, the unit of every scheduling rule
//   - Slot: a delivery time window; four fixed slots are offered to customers
//
// All value objects are immutable. Their zero values are either invalid
// (UUID, OrderID, Date) or carry an explicit meaning (Slot: no slot chosen).
package kernel
