// Package order provides the Order aggregate: the parcel whose delivery tier,
// delivery date and slot a customer can change.
//
// The package includes:
//   - Order: the aggregate root holding tier, pickup date, delivery date,
//     delivery slot, remaining free reschedules and the store version
//   - Command: the closed set of mutations (SetTier, SetDeliveryDate, SetSlot,
//     ConsumeReschedule, TopUpReschedule) applied through Order.Apply
//
// Key business rules:
//   - A new order starts with MaxReschedules free reschedules
//   - Remaining reschedules never go below 0 and a top-up restores exactly
//     MaxReschedules
//   - Tiers only move up; setting the current tier again changes nothing
//   - Only slot-requiring tiers carry a slot, and only one of the fixed slots
//
// Order has value semantics. Apply never modifies its receiver; it returns
// the mutated copy, so a caller that is rejected still holds the snapshot it
// read and can simply drop it.
package order
