package domain

import "github.com/shopspring/decimal"

// PricingRequest carries the raw stay request. Dates arrive as DateLayout
// strings so the engine owns parse validation rather than the transport.
type PricingRequest struct {
	CheckIn          string
	CheckOut         string
	CategoryID       string
	Guests           int
	IncludeBreakfast bool
}

// MethodRates holds nightly rates for one payment method.
type MethodRates struct {
	WithBreakfast    decimal.Decimal
	WithoutBreakfast decimal.Decimal
}

// MethodTotals holds the selected nightly rate and stay total for one
// payment method.
type MethodTotals struct {
	Nightly decimal.Decimal
	Total   decimal.Decimal
}

// Quote is the full pricing breakdown: both with/without-breakfast nightly
// rates plus totals for the option the request selected, so a caller can
// render a comparison view without re-querying.
type Quote struct {
	Period           TariffPeriod
	Rule             PriceRule
	TotalNights      int
	IncludeBreakfast bool
	CreditCard       MethodRates
	Pix              MethodRates
	CreditCardTotals MethodTotals
	PixTotals        MethodTotals
}

// PricingOptions pairs the two quotes for a side-by-side breakfast
// comparison. Either quote may be absent when that option failed.
type PricingOptions struct {
	WithBreakfast    *Quote
	WithoutBreakfast *Quote
	WithErr          error
	WithoutErr       error
}
