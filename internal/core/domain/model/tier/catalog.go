package tier

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"parcelbot/internal/pkg/errs"
)

// WindowPolicy is the reschedule window of a tier, in days counted from the
// pickup date. The lower bound is additionally clamped to today by the
// scheduling policy; the upper bound is anchored on pickup only.
type WindowPolicy struct {
	MinOffsetDays int
	MaxOffsetDays int
}

// getWindowPolicies is the per-tier window table. Windows are fixed by the
// product; only prices are configurable.
func getWindowPolicies() map[Tier]WindowPolicy {
	//nolint:exhaustive // Unknown has no window
	return map[Tier]WindowPolicy{
		Standard:            {MinOffsetDays: 3, MaxOffsetDays: 7},
		Express:             {MinOffsetDays: 1, MaxOffsetDays: 7},
		Timeslot:            {MinOffsetDays: 1, MaxOffsetDays: 7},
		FourteenDayStandard: {MinOffsetDays: 3, MaxOffsetDays: 14},
		FourteenDayTimeslot: {MinOffsetDays: 1, MaxOffsetDays: 14},
	}
}

// DefaultCurrency is used when no currency is configured.
const DefaultCurrency = "SGD"

// DefaultTopUpPrice is the price of restoring the free reschedule quota.
const DefaultTopUpPrice int64 = 200

// DefaultPrices returns the stock price list in minor currency units.
func DefaultPrices() map[Tier]int64 {
	//nolint:exhaustive // Unknown has no price
	return map[Tier]int64{
		Standard:            0,
		Express:             300,
		Timeslot:            500,
		FourteenDayStandard: 700,
		FourteenDayTimeslot: 1000,
	}
}

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// Catalog is the immutable tier table: prices, windows and the price of a
// reschedule top-up. It is built once at startup and shared read-only.
//
// Invariants:
//   - every tier has a price
//   - prices are non-negative and non-decreasing in rank order
//   - currency is an ISO 4217 style three letter code
//   - the top-up price is positive
type Catalog struct {
	prices     map[Tier]int64
	windows    map[Tier]WindowPolicy
	currency   string
	topUpPrice int64
}

// NewCatalog validates and freezes a price list.
//
// Parameters:
//   - prices: price of every tier in minor units
//   - currency: three letter currency code, upper-cased before validation
//   - topUpPrice: price of a reschedule top-up in minor units
//
// Returns:
//   - *Catalog: the frozen catalog
//   - error: every violated invariant, joined
func NewCatalog(prices map[Tier]int64, currency string, topUpPrice int64) (*Catalog, error) {
	c := &Catalog{
		prices:   make(map[Tier]int64, len(All())),
		windows:  getWindowPolicies(),
		currency: strings.ToUpper(strings.TrimSpace(currency)),
	}

	if err := errors.Join(
		c.setPrices(prices),
		c.setCurrency(),
		c.setTopUpPrice(topUpPrice),
	); err != nil {
		return nil, err
	}

	return c, nil
}

// DefaultCatalog is the stock catalog: DefaultPrices in DefaultCurrency.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultPrices(), DefaultCurrency, DefaultTopUpPrice)
	if err != nil {
		panic(err)
	}
	return c
}

// ParsePrices keys a price list by Tier instead of by wire name, as decoded
// from the TIER_PRICES setting.
func ParsePrices(raw map[string]int64) (map[Tier]int64, error) {
	prices := make(map[Tier]int64, len(raw))
	var errList []error
	for name, price := range raw {
		t, err := Parse(name)
		if err != nil {
			errList = append(errList, err)
			continue
		}
		prices[t] = price
	}
	if err := errors.Join(errList...); err != nil {
		return nil, err
	}
	return prices, nil
}

// Price returns the price of t in minor units.
func (c *Catalog) Price(t Tier) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	return c.prices[t], nil
}

// Window returns the window policy of t.
func (c *Catalog) Window(t Tier) (WindowPolicy, error) {
	if err := t.Validate(); err != nil {
		return WindowPolicy{}, err
	}
	return c.windows[t], nil
}

// Tiers returns every tier in rank order.
func (c *Catalog) Tiers() []Tier {
	return All()
}

// Above returns the tiers ranked strictly above t, in rank order.
func (c *Catalog) Above(t Tier) []Tier {
	var above []Tier
	for _, candidate := range All() {
		if t.Less(candidate) {
			above = append(above, candidate)
		}
	}
	return above
}

func (c *Catalog) Currency() string {
	return c.currency
}

func (c *Catalog) TopUpPrice() int64 {
	return c.topUpPrice
}

func (c *Catalog) setPrices(prices map[Tier]int64) error {
	var errList []error
	var previous int64
	for _, t := range All() {
		price, ok := prices[t]
		if !ok {
			errList = append(errList, errs.NewValueIsRequiredError(fmt.Sprintf("price of %s", t)))
			continue
		}
		if price < 0 {
			errList = append(errList, errs.NewValueIsInvalidErrorWithCause(
				"price",
				fmt.Errorf("%s costs %d, prices cannot be negative", t, price),
			))
			continue
		}
		if price < previous {
			errList = append(errList, errs.NewValueIsInvalidErrorWithCause(
				"price",
				fmt.Errorf("%s costs %d, less than the tier below it (%d)", t, price, previous),
			))
		}
		previous = max(previous, price)
		c.prices[t] = price
	}
	return errors.Join(errList...)
}

func (c *Catalog) setCurrency() error {
	if !currencyPattern.MatchString(c.currency) {
		return errs.NewValueIsInvalidErrorWithCause("currency", fmt.Errorf("%q is not a three letter code", c.currency))
	}
	return nil
}

func (c *Catalog) setTopUpPrice(price int64) error {
	if price <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("top-up price", fmt.Errorf("%d is not greater than 0", price))
	}
	c.topUpPrice = price
	return nil
}
