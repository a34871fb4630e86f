package app_test

import (
	"context"
	"testing"

	"hotel_tarifas/internal/adapters/ratefeed"
	"hotel_tarifas/internal/app"
)

type fakeFeed struct {
	periods    []map[string]any
	rules      map[string][]map[string]any
	periodsErr error
}

func (f *fakeFeed) GetTariffPeriods(_ context.Context) ([]map[string]any, error) {
	if f.periodsErr != nil {
		return nil, f.periodsErr
	}
	return f.periods, nil
}

func (f *fakeFeed) GetPriceRules(_ context.Context, periodID string) ([]map[string]any, error) {
	rs, ok := f.rules[periodID]
	if !ok {
		return nil, ratefeed.ErrNotFound
	}
	return rs, nil
}

func TestImportAll_HappyPath(t *testing.T) {
	feed := &fakeFeed{
		periods: []map[string]any{
			{"id": "feed-1", "name": "Baixa Temporada", "start_date": "2025-01-01", "end_date": "2025-06-30", "minimum_nights": float64(1)},
			// alias spellings must also work
			{"id": "feed-2", "title": "Alta Temporada", "from": "2025-07-01", "to": "2025-09-30", "minNights": float64(2), "rank": float64(3)},
		},
		rules: map[string][]map[string]any{
			"feed-1": {
				{"category_id": "cat-standard", "guests": float64(2), "price_credit_card": float64(200), "price_pix": float64(180), "discount_type": "FIXED", "discount_value": float64(25)},
				{"roomType": "cat-standard", "pax": float64(1), "card_price": "150.00", "pix_price": "135.00", "discountType": "PERCENTAGE", "discountValue": "10"},
			},
		},
	}
	svc, st := newCatalogService(t)
	imp := app.NewImportService(feed, svc)

	stats, err := imp.ImportAll(context.Background())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if stats.PeriodsCreated != 2 || stats.RulesCreated != 2 || stats.Skipped != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	snap, _ := st.Snapshot(context.Background())
	if len(snap.Periods) != 2 || len(snap.Rules) != 2 {
		t.Fatalf("catalog not populated: %d periods, %d rules", len(snap.Periods), len(snap.Rules))
	}
	for _, p := range snap.Periods {
		if p.Name == "Alta Temporada" && (p.MinNights != 2 || p.Priority != 3) {
			t.Fatalf("aliases not mapped: %+v", p)
		}
	}
}

func TestImportAll_SkipsRejectedRecords(t *testing.T) {
	feed := &fakeFeed{
		periods: []map[string]any{
			{"id": "feed-1", "name": "Baixa", "start_date": "2025-01-01", "end_date": "2025-06-30", "minimum_nights": float64(1)},
			// same range, same priority: violates the overlap invariant
			{"id": "feed-2", "name": "Baixa bis", "start_date": "2025-02-01", "end_date": "2025-03-31", "minimum_nights": float64(1)},
		},
		rules: map[string][]map[string]any{
			"feed-1": {
				{"category_id": "cat-standard", "guests": float64(2), "price_credit_card": float64(200), "price_pix": float64(180), "discount_type": "FIXED", "discount_value": float64(25)},
				// unknown category: referential integrity rejection
				{"category_id": "cat-ghost", "guests": float64(2), "price_credit_card": float64(100), "price_pix": float64(90), "discount_type": "FIXED", "discount_value": float64(0)},
			},
		},
	}
	svc, _ := newCatalogService(t)
	imp := app.NewImportService(feed, svc)

	stats, err := imp.ImportAll(context.Background())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if stats.PeriodsCreated != 1 || stats.RulesCreated != 1 || stats.Skipped != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestImportAll_FeedMissIsGraceful(t *testing.T) {
	feed := &fakeFeed{periodsErr: ratefeed.ErrNotFound}
	svc, _ := newCatalogService(t)
	imp := app.NewImportService(feed, svc)

	stats, err := imp.ImportAll(context.Background())
	if err != nil {
		t.Fatalf("a feed 404 must not fail the run: %v", err)
	}
	if stats.PeriodsCreated != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
