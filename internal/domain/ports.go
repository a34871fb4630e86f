package domain

import (
	"context"
	"fmt"
)

// CatalogSnapshot is an immutable copy of the catalog taken at one version.
// A pricing calculation works entirely off one snapshot, so concurrent
// catalog edits can never make it observe a half-written period or rule.
type CatalogSnapshot struct {
	Version    int64
	Periods    []TariffPeriod
	Rules      []PriceRule
	Categories []AccommodationCategory
}

type CatalogRepository interface {
	// Read paths
	Snapshot(ctx context.Context) (CatalogSnapshot, error)
	Version(ctx context.Context) (int64, error)
	ListPeriods(ctx context.Context) ([]TariffPeriod, error)
	GetPeriod(ctx context.Context, id string) (TariffPeriod, error)
	ListRules(ctx context.Context) ([]PriceRule, error)
	GetRule(ctx context.Context, id string) (PriceRule, error)
	RulesForPeriod(ctx context.Context, periodID string) ([]PriceRule, error)
	ListCategories(ctx context.Context) ([]AccommodationCategory, error)
	GetCategory(ctx context.Context, id string) (AccommodationCategory, error)

	// Write paths. Each successful mutation bumps the catalog version.
	InsertPeriod(ctx context.Context, p TariffPeriod) error
	UpdatePeriod(ctx context.Context, p TariffPeriod) error
	DeletePeriod(ctx context.Context, id string) error
	InsertRule(ctx context.Context, r PriceRule) error
	UpdateRule(ctx context.Context, r PriceRule) error
	DeleteRule(ctx context.Context, id string) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// RateFeed pulls tariff data from an external channel-manager feed. Payloads
// are loosely typed; the importer's mappers normalize field aliases.
type RateFeed interface {
	GetTariffPeriods(ctx context.Context) ([]map[string]any, error)
	GetPriceRules(ctx context.Context, periodID string) ([]map[string]any, error)
}

// Unavailable tags a storage error as ErrCatalogUnavailable while keeping
// the cause in the message.
func Unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
}
