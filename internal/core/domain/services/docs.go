// Package services provides the decision rules that span the order, the
// tier catalog and "today": the scheduling policy, the reschedule quota and
// the tier upgrade state machine.
//
// The package includes:
//   - SchedulingPolicy: computes a tier's admissible delivery window and
//     validates reschedule requests against it
//   - RescheduleQuota: gates free reschedules and restores them after a top-up
//   - TierUpgrader: validates tier transitions and prices them
//   - Rescheduler: runs a reschedule request through quota, policy and order
//
// Every service is pure. Services read an Order snapshot and return either a
// rejection or a mutated copy; persisting the copy is the caller's job.
package services
