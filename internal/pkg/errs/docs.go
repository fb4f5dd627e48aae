// Package errs provides the typed errors shared by the domain model, the use
// cases and the adapters.
//
// Every error kind follows the same shape:
//   - a sentinel (ErrValueIsInvalid, ErrObjectNotFound, ...) usable with errors.Is
//   - a struct carrying the offending parameter and an optional cause
//   - constructors with and without a cause
//   - Unwrap returning the sentinel so callers never depend on message text
//
// VersionIsInvalidError doubles as the optimistic concurrency conflict raised
// when an order is written with a stale version.
package errs
