package services_test

import (
	"testing"
	"time"

	"parcelbot/internal/core/domain/model/kernel"
	"parcelbot/internal/core/domain/model/order"
	"parcelbot/internal/core/domain/model/tier"
	"parcelbot/internal/core/domain/services"

	"github.com/stretchr/testify/require"
)

var orderID = kernel.MustOrderID("NVSG0001")

func day(d int) kernel.Date {
	return kernel.MustDate(2024, time.January, d)
}

func mustOrder(t *testing.T, tr tier.Tier, pickup, delivery kernel.Date, slot kernel.Slot, remaining int) order.Order {
	t.Helper()
	o, err := order.RestoreOrder(orderID, tr, pickup, delivery, slot, remaining, 1)
	require.NoError(t, err)
	return o
}

func mustPolicy(t *testing.T) services.SchedulingPolicy {
	t.Helper()
	p, err := services.NewSchedulingPolicy(tier.DefaultCatalog())
	require.NoError(t, err)
	return p
}

func mustUpgrader(t *testing.T) services.TierUpgrader {
	t.Helper()
	u, err := services.NewTierUpgrader(tier.DefaultCatalog())
	require.NoError(t, err)
	return u
}
