package app

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"hotel_tarifas/internal/adapters/observability"
	"hotel_tarifas/internal/domain"
)

// PeriodInput is the mutation payload for tariff periods. Dates arrive as
// YYYY-MM-DD strings; validation happens here, not in transports or storage.
type PeriodInput struct {
	Name      string
	StartDate string
	EndDate   string
	MinNights int
	IsSpecial bool
	Priority  int
	Color     *string
}

// RuleInput is the mutation payload for price rules.
type RuleInput struct {
	TariffPeriodID  string
	CategoryID      string
	Guests          int
	PriceCreditCard decimal.Decimal
	PricePix        decimal.Decimal
	DiscountType    string
	DiscountValue   decimal.Decimal
}

// CatalogService owns every catalog mutation. Writes are serialized through
// one mutex so the overlap and uniqueness invariants are checked against a
// stable view; reads go straight to the repository.
type CatalogService struct {
	repo domain.CatalogRepository
	mu   sync.Mutex
}

func NewCatalogService(r domain.CatalogRepository) *CatalogService {
	return &CatalogService{repo: r}
}

func (s *CatalogService) ListPeriods(ctx context.Context) ([]domain.TariffPeriod, error) {
	ps, err := s.repo.ListPeriods(ctx)
	if err != nil {
		return nil, domain.Internal(err)
	}
	sort.Slice(ps, func(i, j int) bool {
		if !ps[i].StartDate.Equal(ps[j].StartDate) {
			return ps[i].StartDate.Before(ps[j].StartDate)
		}
		return ps[i].ID < ps[j].ID
	})
	return ps, nil
}

func (s *CatalogService) GetPeriod(ctx context.Context, id string) (domain.TariffPeriod, error) {
	return s.repo.GetPeriod(ctx, id)
}

func (s *CatalogService) CreatePeriod(ctx context.Context, in PeriodInput) (domain.TariffPeriod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.validatePeriod(ctx, "", in)
	if err != nil {
		observability.ObserveCatalog("period", "create", "rejected")
		return domain.TariffPeriod{}, err
	}
	p.ID = uuid.NewString()
	if err := s.repo.InsertPeriod(ctx, p); err != nil {
		observability.ObserveCatalog("period", "create", "error")
		return domain.TariffPeriod{}, domain.Internal(err)
	}
	observability.ObserveCatalog("period", "create", "ok")
	return p, nil
}

func (s *CatalogService) UpdatePeriod(ctx context.Context, id string, in PeriodInput) (domain.TariffPeriod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.repo.GetPeriod(ctx, id); err != nil {
		return domain.TariffPeriod{}, err
	}
	p, err := s.validatePeriod(ctx, id, in)
	if err != nil {
		observability.ObserveCatalog("period", "update", "rejected")
		return domain.TariffPeriod{}, err
	}
	p.ID = id
	if err := s.repo.UpdatePeriod(ctx, p); err != nil {
		observability.ObserveCatalog("period", "update", "error")
		return domain.TariffPeriod{}, domain.Internal(err)
	}
	observability.ObserveCatalog("period", "update", "ok")
	return p, nil
}

// DeletePeriod blocks while any price rule references the period. Rules are
// never cascade-deleted; orphaning them silently is worse than making the
// operator clean up first.
func (s *CatalogService) DeletePeriod(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.repo.GetPeriod(ctx, id)
	if err != nil {
		return err
	}
	rules, err := s.repo.RulesForPeriod(ctx, id)
	if err != nil {
		return domain.Internal(err)
	}
	if len(rules) > 0 {
		observability.ObserveCatalog("period", "delete", "rejected")
		return domain.Constraint("period %q still has %d price rule(s); delete them first", p.Name, len(rules))
	}
	if err := s.repo.DeletePeriod(ctx, id); err != nil {
		observability.ObserveCatalog("period", "delete", "error")
		return domain.Internal(err)
	}
	observability.ObserveCatalog("period", "delete", "ok")
	return nil
}

func (s *CatalogService) ListRules(ctx context.Context) ([]domain.PriceRule, error) {
	rs, err := s.repo.ListRules(ctx)
	if err != nil {
		return nil, domain.Internal(err)
	}
	return rs, nil
}

func (s *CatalogService) CreateRule(ctx context.Context, in RuleInput) (domain.PriceRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.validateRule(ctx, "", in)
	if err != nil {
		observability.ObserveCatalog("rule", "create", "rejected")
		return domain.PriceRule{}, err
	}
	r.ID = uuid.NewString()
	if err := s.repo.InsertRule(ctx, r); err != nil {
		observability.ObserveCatalog("rule", "create", "error")
		return domain.PriceRule{}, domain.Internal(err)
	}
	observability.ObserveCatalog("rule", "create", "ok")
	return r, nil
}

func (s *CatalogService) UpdateRule(ctx context.Context, id string, in RuleInput) (domain.PriceRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.repo.GetRule(ctx, id); err != nil {
		return domain.PriceRule{}, err
	}
	r, err := s.validateRule(ctx, id, in)
	if err != nil {
		observability.ObserveCatalog("rule", "update", "rejected")
		return domain.PriceRule{}, err
	}
	r.ID = id
	if err := s.repo.UpdateRule(ctx, r); err != nil {
		observability.ObserveCatalog("rule", "update", "error")
		return domain.PriceRule{}, domain.Internal(err)
	}
	observability.ObserveCatalog("rule", "update", "ok")
	return r, nil
}

func (s *CatalogService) DeleteRule(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.repo.GetRule(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteRule(ctx, id); err != nil {
		observability.ObserveCatalog("rule", "delete", "error")
		return domain.Internal(err)
	}
	observability.ObserveCatalog("rule", "delete", "ok")
	return nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.AccommodationCategory, error) {
	cs, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, domain.Internal(err)
	}
	return cs, nil
}

// validatePeriod checks field sanity plus the pairwise overlap invariant.
// excludeID keeps an edited record from colliding with itself. Overlapping
// ranges are tolerated only when priorities differ, since resolution then
// stays deterministic.
func (s *CatalogService) validatePeriod(ctx context.Context, excludeID string, in PeriodInput) (domain.TariffPeriod, error) {
	if strings.TrimSpace(in.Name) == "" {
		return domain.TariffPeriod{}, domain.Validation("name", "period name is required")
	}
	start, err := time.Parse(domain.DateLayout, in.StartDate)
	if err != nil {
		return domain.TariffPeriod{}, domain.Validation("start_date", "invalid date format, want YYYY-MM-DD")
	}
	end, err := time.Parse(domain.DateLayout, in.EndDate)
	if err != nil {
		return domain.TariffPeriod{}, domain.Validation("end_date", "invalid date format, want YYYY-MM-DD")
	}
	if end.Before(start) {
		return domain.TariffPeriod{}, domain.Validation("end_date", "end date must not precede start date")
	}
	if in.MinNights < domain.MinNightsFloor || in.MinNights > domain.MinNightsCeil {
		return domain.TariffPeriod{}, domain.Validation("minimum_nights", "minimum nights must be between 1 and 30")
	}

	p := domain.TariffPeriod{
		Name:      strings.TrimSpace(in.Name),
		StartDate: domain.DayOf(start),
		EndDate:   domain.DayOf(end),
		MinNights: in.MinNights,
		IsSpecial: in.IsSpecial,
		Priority:  in.Priority,
		Color:     in.Color,
	}

	existing, err := s.repo.ListPeriods(ctx)
	if err != nil {
		return domain.TariffPeriod{}, domain.Internal(err)
	}
	for _, other := range existing {
		if other.ID == excludeID {
			continue
		}
		if p.Overlaps(other) && p.Priority == other.Priority {
			return domain.TariffPeriod{}, domain.Constraint(
				"dates overlap period %q (%s to %s) with the same priority",
				other.Name, other.StartDate.Format(domain.DateLayout), other.EndDate.Format(domain.DateLayout))
		}
	}
	return p, nil
}

// validateRule checks field sanity, referential integrity of the period and
// category ids, the category occupancy ceiling, and the one-rule-per-triple
// uniqueness invariant.
func (s *CatalogService) validateRule(ctx context.Context, excludeID string, in RuleInput) (domain.PriceRule, error) {
	if in.Guests < 1 {
		return domain.PriceRule{}, domain.Validation("number_of_guests", "guest count must be at least 1")
	}
	if in.PriceCreditCard.IsNegative() || in.PricePix.IsNegative() {
		return domain.PriceRule{}, domain.Validation("price", "prices must not be negative")
	}
	dt := domain.DiscountType(strings.ToUpper(strings.TrimSpace(in.DiscountType)))
	switch dt {
	case domain.DiscountFixed:
		if in.DiscountValue.IsNegative() {
			return domain.PriceRule{}, domain.Validation("breakfast_discount_value", "fixed discount must not be negative")
		}
	case domain.DiscountPercentage:
		if in.DiscountValue.IsNegative() || in.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
			return domain.PriceRule{}, domain.Validation("breakfast_discount_value", "percentage discount must be between 0 and 100")
		}
	default:
		return domain.PriceRule{}, domain.Validation("breakfast_discount_type", "discount type must be FIXED or PERCENTAGE")
	}

	period, err := s.repo.GetPeriod(ctx, in.TariffPeriodID)
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return domain.PriceRule{}, domain.Constraint("tariff period %s does not exist", in.TariffPeriodID)
		}
		return domain.PriceRule{}, domain.Internal(err)
	}
	cat, err := s.repo.GetCategory(ctx, in.CategoryID)
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return domain.PriceRule{}, domain.Constraint("accommodation category %s does not exist", in.CategoryID)
		}
		return domain.PriceRule{}, domain.Internal(err)
	}
	if in.Guests > cat.MaxGuests {
		return domain.PriceRule{}, domain.Constraint(
			"category %q holds at most %d guests", cat.Name, cat.MaxGuests)
	}

	siblings, err := s.repo.RulesForPeriod(ctx, period.ID)
	if err != nil {
		return domain.PriceRule{}, domain.Internal(err)
	}
	for _, other := range siblings {
		if other.ID == excludeID {
			continue
		}
		if other.CategoryID == in.CategoryID && other.Guests == in.Guests {
			return domain.PriceRule{}, domain.Constraint(
				"a rule for category %q with %d guests already exists in period %q", cat.Name, in.Guests, period.Name)
		}
	}

	return domain.PriceRule{
		TariffPeriodID:  in.TariffPeriodID,
		CategoryID:      in.CategoryID,
		Guests:          in.Guests,
		PriceCreditCard: in.PriceCreditCard,
		PricePix:        in.PricePix,
		DiscountType:    dt,
		DiscountValue:   in.DiscountValue,
	}, nil
}
