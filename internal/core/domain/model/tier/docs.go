// Package tier provides the delivery service levels and the tier catalog.
//
// The package includes:
//   - Tier: an ordered enumeration of delivery service levels
//   - WindowPolicy: the reschedule window offsets attached to each tier
//   - Catalog: the immutable price and window table loaded at startup
//
// Key business rules:
//   - Tiers are totally ordered: standard < express < timeslot <
//     14day-standard < 14day-timeslot
//   - timeslot and 14day-timeslot require one of the fixed delivery slots
//   - 14day-timeslot is terminal, there is nothing to upgrade to
//   - Prices never decrease along the tier order, so an upgrade never costs
//     a negative amount
package tier
