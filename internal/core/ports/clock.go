package ports

import (
	"time"

	"parcelbot/internal/core/domain/model/kernel"
)

// Clock tells the time in the service's configured time zone.
type Clock interface {
	Now() time.Time

	// Today is the current calendar date in the configured zone.
	Today() kernel.Date
}
