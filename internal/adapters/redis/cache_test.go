package redisad_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"

	redisad "hotel_tarifas/internal/adapters/redis"
	"hotel_tarifas/internal/domain"
)

func TestCache_RoundTripQuote(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redisad.New(mr.Addr(), "", 0)
	ctx := context.Background()

	q := domain.Quote{
		TotalNights:      3,
		IncludeBreakfast: true,
		CreditCardTotals: domain.MethodTotals{
			Nightly: decimal.RequireFromString("200"),
			Total:   decimal.RequireFromString("600"),
		},
	}
	if err := cache.Set(ctx, "quote:1:x", q, 60); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got domain.Quote
	ok, err := cache.Get(ctx, "quote:1:x", &got)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatalf("expected hit")
	}
	if got.TotalNights != 3 || !got.CreditCardTotals.Total.Equal(decimal.RequireFromString("600")) {
		t.Fatalf("unexpected quote: %+v", got)
	}
}

func TestCache_MissAndDelete(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redisad.New(mr.Addr(), "", 0)
	ctx := context.Background()

	var dst domain.Quote
	ok, err := cache.Get(ctx, "absent", &dst)
	if err != nil || ok {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}

	if err := cache.Set(ctx, "k", domain.Quote{TotalNights: 1}, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := cache.Del(ctx, "k"); err != nil {
		t.Fatalf("del: %v", err)
	}
	ok, _ = cache.Get(ctx, "k", &dst)
	if ok {
		t.Fatalf("expected miss after delete")
	}
}
