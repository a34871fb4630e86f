package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"hotel_tarifas/internal/adapters/observability"
	"hotel_tarifas/internal/domain"
)

// PricingService is the quote engine: a pure computation over one catalog
// snapshot, with an optional read-through cache in front. Every failure is a
// typed, per-request domain.Error; nothing here is fatal.
type PricingService struct {
	repo     domain.CatalogRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewPricingService(r domain.CatalogRepository, c domain.Cache, ttl time.Duration) *PricingService {
	return &PricingService{repo: r, cache: c, cacheTTL: ttl}
}

// CalculatePrice runs the validation gates in order and short-circuits on
// the first failure. Catalog state is read once, as a snapshot, after the
// request itself is known to be well-formed.
func (s *PricingService) CalculatePrice(ctx context.Context, req domain.PricingRequest) (domain.Quote, error) {
	q, err := s.calculate(ctx, req)
	observability.ObservePricing(string(domain.KindOf(err)), err == nil)
	return q, err
}

func (s *PricingService) calculate(ctx context.Context, req domain.PricingRequest) (domain.Quote, error) {
	// 1) presence
	if strings.TrimSpace(req.CheckIn) == "" {
		return domain.Quote{}, domain.Validation("check_in", "check-in date is required")
	}
	if strings.TrimSpace(req.CheckOut) == "" {
		return domain.Quote{}, domain.Validation("check_out", "check-out date is required")
	}
	if strings.TrimSpace(req.CategoryID) == "" {
		return domain.Quote{}, domain.Validation("category_id", "accommodation category is required")
	}
	if req.Guests < 1 {
		return domain.Quote{}, domain.Validation("guests", "guest count must be at least 1")
	}

	// 2) date sanity
	checkIn, err := time.Parse(domain.DateLayout, req.CheckIn)
	if err != nil {
		return domain.Quote{}, domain.Validation("check_in", "invalid date format, want YYYY-MM-DD")
	}
	checkOut, err := time.Parse(domain.DateLayout, req.CheckOut)
	if err != nil {
		return domain.Quote{}, domain.Validation("check_out", "invalid date format, want YYYY-MM-DD")
	}
	if !domain.DayOf(checkOut).After(domain.DayOf(checkIn)) {
		return domain.Quote{}, domain.Validation("check_out", "check-out must be after check-in")
	}

	// 3) night count (gate 2 already excludes <= 0; keep the check anyway)
	nights := int(domain.DayOf(checkOut).Sub(domain.DayOf(checkIn)).Hours() / 24)
	if nights <= 0 {
		return domain.Quote{}, domain.Validation("check_out", "stay must cover at least one night")
	}

	snap, err := s.repo.Snapshot(ctx)
	if err != nil {
		log.Error().Err(err).Str("check_in", req.CheckIn).Str("category", req.CategoryID).
			Msg("catalog snapshot failed")
		return domain.Quote{}, domain.Internal(err)
	}

	key := quoteKey(snap.Version, req)
	if s.cache != nil {
		var cached domain.Quote
		if ok, _ := s.cache.Get(ctx, key, &cached); ok {
			return cached, nil
		}
	}

	// 4) tariff resolution on the check-in day
	period, ok := resolveTariffPeriod(snap.Periods, checkIn)
	if !ok {
		return domain.Quote{}, domain.NotFound("no tariff period configured for %s", req.CheckIn)
	}

	// 5) minimum stay
	if nights < period.MinNights {
		return domain.Quote{}, domain.Constraint(
			"period %q requires a minimum stay of %d nights, requested %d", period.Name, period.MinNights, nights)
	}

	// 6) price rule
	rule, ok := findPriceRule(snap.Rules, period.ID, req.CategoryID, req.Guests)
	if !ok {
		return domain.Quote{}, domain.NotFound(
			"no price rule for category %s with %d guests in period %q", req.CategoryID, req.Guests, period.Name)
	}

	// 7) discount & totals
	ccDiscount, pixDiscount := breakfastDiscount(rule)
	cc := domain.MethodRates{
		WithBreakfast:    rule.PriceCreditCard,
		WithoutBreakfast: floorZero(rule.PriceCreditCard.Sub(ccDiscount)),
	}
	pix := domain.MethodRates{
		WithBreakfast:    rule.PricePix,
		WithoutBreakfast: floorZero(rule.PricePix.Sub(pixDiscount)),
	}
	nightlyCC, nightlyPix := cc.WithBreakfast, pix.WithBreakfast
	if !req.IncludeBreakfast {
		nightlyCC, nightlyPix = cc.WithoutBreakfast, pix.WithoutBreakfast
	}
	n := decimal.NewFromInt(int64(nights))

	// 8) assembly
	q := domain.Quote{
		Period:           period,
		Rule:             rule,
		TotalNights:      nights,
		IncludeBreakfast: req.IncludeBreakfast,
		CreditCard:       cc,
		Pix:              pix,
		CreditCardTotals: domain.MethodTotals{Nightly: nightlyCC, Total: nightlyCC.Mul(n)},
		PixTotals:        domain.MethodTotals{Nightly: nightlyPix, Total: nightlyPix.Mul(n)},
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, q, int(s.cacheTTL.Seconds()))
	}
	return q, nil
}

// AllOptions computes the stay twice, breakfast toggled, for side-by-side
// comparison views. Each leg fails independently.
func (s *PricingService) AllOptions(ctx context.Context, checkIn, checkOut, categoryID string, guests int) domain.PricingOptions {
	base := domain.PricingRequest{CheckIn: checkIn, CheckOut: checkOut, CategoryID: categoryID, Guests: guests}

	var out domain.PricingOptions
	base.IncludeBreakfast = true
	if q, err := s.CalculatePrice(ctx, base); err != nil {
		out.WithErr = err
	} else {
		out.WithBreakfast = &q
	}
	base.IncludeBreakfast = false
	if q, err := s.CalculatePrice(ctx, base); err != nil {
		out.WithoutErr = err
	} else {
		out.WithoutBreakfast = &q
	}
	return out
}

// resolveTariffPeriod picks the covering period deterministically: higher
// priority wins, equal priorities fall back to the lowest id. This holds
// even for latent overlaps that slipped past write-time validation.
func resolveTariffPeriod(periods []domain.TariffPeriod, date time.Time) (domain.TariffPeriod, bool) {
	var best domain.TariffPeriod
	found := false
	for _, p := range periods {
		if !p.Contains(date) {
			continue
		}
		if !found || p.Priority > best.Priority || (p.Priority == best.Priority && p.ID < best.ID) {
			best = p
			found = true
		}
	}
	return best, found
}

// findPriceRule is an exact (period, category, guests) match; the catalog
// guarantees at most one rule per triple, so first match is the only match.
func findPriceRule(rules []domain.PriceRule, periodID, categoryID string, guests int) (domain.PriceRule, bool) {
	for _, r := range rules {
		if r.TariffPeriodID == periodID && r.CategoryID == categoryID && r.Guests == guests {
			return r, true
		}
	}
	return domain.PriceRule{}, false
}

// breakfastDiscount returns the per-method amount subtracted from the
// breakfast-inclusive rate. FIXED applies the same absolute amount to both
// methods; PERCENTAGE is computed off each method's own base rate.
func breakfastDiscount(r domain.PriceRule) (cc, pix decimal.Decimal) {
	if r.DiscountType == domain.DiscountPercentage {
		pct := r.DiscountValue.Div(decimal.NewFromInt(100))
		return r.PriceCreditCard.Mul(pct).Round(2), r.PricePix.Mul(pct).Round(2)
	}
	return r.DiscountValue, r.DiscountValue
}

func floorZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func quoteKey(version int64, req domain.PricingRequest) string {
	return fmt.Sprintf("quote:%d:%s:%s:%s:%d:%t",
		version, req.CheckIn, req.CheckOut, req.CategoryID, req.Guests, req.IncludeBreakfast)
}

// IsUnavailable reports whether err is a storage outage rather than a
// business rejection. Callers may retry; the engine has no side effects.
func IsUnavailable(err error) bool {
	return errors.Is(err, domain.ErrCatalogUnavailable)
}
