package queries

import (
	"errors"

	"parcelbot/internal/core/domain/model/decision"
	"parcelbot/internal/pkg/errs"
)

// storeError reports a failed read as decision.Unavailable so callers can
// retry. A missing row stays errs.ErrObjectNotFound.
func storeError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, errs.ErrObjectNotFound) || decision.IsRejected(err) {
		return err
	}
	return decision.Reject(decision.Unavailable, err)
}
