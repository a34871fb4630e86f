package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire/storage format for calendar dates. Pricing works at
// day granularity; time-of-day is never significant.
const DateLayout = "2006-01-02"

type DiscountType string

const (
	DiscountFixed      DiscountType = "FIXED"
	DiscountPercentage DiscountType = "PERCENTAGE"
)

// Minimum-stay bounds accepted on period create/update.
const (
	MinNightsFloor = 1
	MinNightsCeil  = 30
)

// TariffPeriod is a named calendar date range with its own minimum-stay rule.
// StartDate and EndDate are inclusive and normalized to midnight UTC.
type TariffPeriod struct {
	ID        string
	Name      string
	StartDate time.Time
	EndDate   time.Time
	MinNights int
	IsSpecial bool
	Priority  int
	Color     *string
}

// Contains reports whether d falls inside the period's inclusive range,
// compared at day granularity.
func (p TariffPeriod) Contains(d time.Time) bool {
	day := DayOf(d)
	return !day.Before(DayOf(p.StartDate)) && !day.After(DayOf(p.EndDate))
}

// Overlaps reports whether two periods share at least one calendar day.
func (p TariffPeriod) Overlaps(o TariffPeriod) bool {
	return !DayOf(p.StartDate).After(DayOf(o.EndDate)) && !DayOf(o.StartDate).After(DayOf(p.EndDate))
}

// DayOf truncates a timestamp to its calendar day in UTC.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// PriceRule is the nightly price (per payment method) for one category and
// guest count within one tariff period. Prices are breakfast-inclusive; the
// breakfast discount derives the no-breakfast rate.
type PriceRule struct {
	ID              string
	TariffPeriodID  string
	CategoryID      string
	Guests          int
	PriceCreditCard decimal.Decimal
	PricePix        decimal.Decimal
	DiscountType    DiscountType
	DiscountValue   decimal.Decimal
}

// AccommodationCategory is a room type with an occupancy ceiling. The pricing
// engine only ever reads these.
type AccommodationCategory struct {
	ID        string
	Name      string
	MaxGuests int
}
