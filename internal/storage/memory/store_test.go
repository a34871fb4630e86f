package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"hotel_tarifas/internal/domain"
	"hotel_tarifas/internal/storage/memory"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	tm, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		t.Fatalf("bad date: %v", err)
	}
	return tm
}

func TestSnapshot_IsolatedFromLaterWrites(t *testing.T) {
	st := memory.New()
	ctx := context.Background()
	p := domain.TariffPeriod{ID: "p1", Name: "Baixa", StartDate: day(t, "2025-01-01"), EndDate: day(t, "2025-06-30"), MinNights: 1}
	if err := st.InsertPeriod(ctx, p); err != nil {
		t.Fatalf("insert: %v", err)
	}

	snap, err := st.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	p.Name = "Renamed"
	if err := st.UpdatePeriod(ctx, p); err != nil {
		t.Fatalf("update: %v", err)
	}

	if snap.Periods[0].Name != "Baixa" {
		t.Fatalf("snapshot mutated by later write: %+v", snap.Periods[0])
	}
}

func TestVersion_BumpsOnEveryWrite(t *testing.T) {
	st := memory.New()
	ctx := context.Background()

	v0, _ := st.Version(ctx)
	if err := st.InsertPeriod(ctx, domain.TariffPeriod{ID: "p1", Name: "X", StartDate: day(t, "2025-01-01"), EndDate: day(t, "2025-01-31"), MinNights: 1}); err != nil {
		t.Fatalf("insert period: %v", err)
	}
	if err := st.InsertRule(ctx, domain.PriceRule{ID: "r1", TariffPeriodID: "p1", CategoryID: "c1", Guests: 2,
		PriceCreditCard: decimal.NewFromInt(100), PricePix: decimal.NewFromInt(90), DiscountType: domain.DiscountFixed}); err != nil {
		t.Fatalf("insert rule: %v", err)
	}
	if err := st.DeleteRule(ctx, "r1"); err != nil {
		t.Fatalf("delete rule: %v", err)
	}

	v3, _ := st.Version(ctx)
	if v3 != v0+3 {
		t.Fatalf("expected 3 version bumps, got %d -> %d", v0, v3)
	}
}

func TestGets_ReturnNotFound(t *testing.T) {
	st := memory.New()
	ctx := context.Background()

	if _, err := st.GetPeriod(ctx, "nope"); !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("period: %v", err)
	}
	if _, err := st.GetRule(ctx, "nope"); !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("rule: %v", err)
	}
	if _, err := st.GetCategory(ctx, "nope"); !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("category: %v", err)
	}
	if err := st.DeletePeriod(ctx, "nope"); !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("delete period: %v", err)
	}
}

func TestRulesForPeriod_FiltersByOwner(t *testing.T) {
	st := memory.New()
	ctx := context.Background()
	for _, r := range []domain.PriceRule{
		{ID: "r1", TariffPeriodID: "p1", CategoryID: "c1", Guests: 1, PriceCreditCard: decimal.NewFromInt(10), PricePix: decimal.NewFromInt(9), DiscountType: domain.DiscountFixed},
		{ID: "r2", TariffPeriodID: "p2", CategoryID: "c1", Guests: 1, PriceCreditCard: decimal.NewFromInt(10), PricePix: decimal.NewFromInt(9), DiscountType: domain.DiscountFixed},
		{ID: "r3", TariffPeriodID: "p1", CategoryID: "c2", Guests: 2, PriceCreditCard: decimal.NewFromInt(10), PricePix: decimal.NewFromInt(9), DiscountType: domain.DiscountFixed},
	} {
		if err := st.InsertRule(ctx, r); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	rs, err := st.RulesForPeriod(ctx, "p1")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(rs) != 2 {
		t.Fatalf("expected 2 rules for p1, got %d", len(rs))
	}
}
