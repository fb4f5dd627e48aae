package clock_test

import (
	"testing"
	"time"

	"parcelbot/internal/adapters/out/clock"
	"parcelbot/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSystemClock_DefaultsToSingapore(t *testing.T) {
	c, err := clock.NewSystemClock("")

	require.NoError(t, err)
	assert.Equal(t, clock.DefaultTimezone, c.Location().String())
}

func TestNewSystemClock_UnknownZone(t *testing.T) {
	_, err := clock.NewSystemClock("Mars/Olympus_Mons")

	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestSystemClock_TodayFollowsLocalMidnight(t *testing.T) {
	c, err := clock.NewSystemClock("Asia/Singapore")
	require.NoError(t, err)

	// 16:30 UTC is 00:30 the next day in Singapore (UTC+8)
	c.WithNow(func() time.Time { return time.Date(2024, time.January, 1, 16, 30, 0, 0, time.UTC) })

	assert.Equal(t, "2024-01-02", c.Today().String())
	assert.Equal(t, 0, c.Now().Hour())

	// 15:59 UTC is still the same day
	c.WithNow(func() time.Time { return time.Date(2024, time.January, 1, 15, 59, 0, 0, time.UTC) })

	assert.Equal(t, "2024-01-01", c.Today().String())
}
