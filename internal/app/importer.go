package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"hotel_tarifas/internal/adapters/ratefeed"
	"hotel_tarifas/internal/domain"
)

// ImportService bulk-loads tariff periods and price rules from an external
// rate feed. Every record goes through the CatalogService write path, so
// imported data obeys the same overlap and uniqueness invariants as records
// entered by hand. Rejected records are skipped and counted, never forced in.
type ImportService struct {
	feed    domain.RateFeed
	catalog *CatalogService
}

func NewImportService(f domain.RateFeed, c *CatalogService) *ImportService {
	return &ImportService{feed: f, catalog: c}
}

// ImportedPeriod links a created catalog period back to the feed's own id,
// which keys the rule fetch.
type ImportedPeriod struct {
	FeedID   string
	PeriodID string
	Name     string
}

type ImportStats struct {
	PeriodsCreated int
	RulesCreated   int
	Skipped        int
}

// ImportPeriods fetches and creates the feed's periods sequentially; the
// overlap check must see each accepted period before judging the next one.
// Known feed misses (404/401/403) yield an empty result, not an error.
func (s *ImportService) ImportPeriods(ctx context.Context) ([]ImportedPeriod, int, error) {
	payloads, err := s.feed.GetTariffPeriods(ctx)
	if err != nil {
		if isFeedMiss(err) {
			log.Warn().Err(err).Msg("rate feed has no tariff periods")
			return nil, 0, nil
		}
		return nil, 0, err
	}

	var created []ImportedPeriod
	skipped := 0
	for _, p := range payloads {
		in, feedID := mapFeedPeriod(p)
		period, err := s.catalog.CreatePeriod(ctx, in)
		if err != nil {
			if rejected(err) {
				skipped++
				log.Warn().Err(err).Str("feed_period", feedID).Str("name", in.Name).Msg("period rejected, skipping")
				continue
			}
			return created, skipped, fmt.Errorf("import period %q: %w", in.Name, err)
		}
		created = append(created, ImportedPeriod{FeedID: feedID, PeriodID: period.ID, Name: period.Name})
	}
	return created, skipped, nil
}

// ImportRules fetches and creates one period's rules. Safe to call
// concurrently for different periods; catalog writes serialize internally.
func (s *ImportService) ImportRules(ctx context.Context, ip ImportedPeriod) (created, skipped int, err error) {
	if ip.FeedID == "" {
		return 0, 0, nil // nothing to key the rule fetch on
	}
	payloads, err := s.feed.GetPriceRules(ctx, ip.FeedID)
	if err != nil {
		if isFeedMiss(err) {
			log.Warn().Str("feed_period", ip.FeedID).Msg("no price rules in feed for period")
			return 0, 0, nil
		}
		return 0, 0, err
	}

	for _, r := range payloads {
		in := mapFeedRule(r, ip.PeriodID)
		if _, err := s.catalog.CreateRule(ctx, in); err != nil {
			if rejected(err) {
				skipped++
				log.Warn().Err(err).Str("period", ip.Name).Str("category", in.CategoryID).Int("guests", in.Guests).
					Msg("rule rejected, skipping")
				continue
			}
			return created, skipped, fmt.Errorf("import rule for category %s: %w", in.CategoryID, err)
		}
		created++
	}
	return created, skipped, nil
}

// ImportAll runs both phases sequentially.
func (s *ImportService) ImportAll(ctx context.Context) (ImportStats, error) {
	var stats ImportStats

	periods, skipped, err := s.ImportPeriods(ctx)
	stats.PeriodsCreated = len(periods)
	stats.Skipped += skipped
	if err != nil {
		return stats, err
	}

	for _, ip := range periods {
		created, skipped, err := s.ImportRules(ctx, ip)
		stats.RulesCreated += created
		stats.Skipped += skipped
		if err != nil {
			return stats, err
		}
	}

	log.Info().
		Int("periods", stats.PeriodsCreated).
		Int("rules", stats.RulesCreated).
		Int("skipped", stats.Skipped).
		Msg("rate feed import finished")
	return stats, nil
}

// rejected reports a validation/constraint rejection, which the importer
// skips, as opposed to an internal failure, which aborts the run.
func rejected(err error) bool {
	return domain.IsKind(err, domain.KindValidation) || domain.IsKind(err, domain.KindConstraint)
}

func isFeedMiss(err error) bool {
	if errors.Is(err, ratefeed.ErrNotFound) ||
		errors.Is(err, ratefeed.ErrUnauthorized) ||
		errors.Is(err, ratefeed.ErrForbidden) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "not found") ||
		strings.Contains(low, "unauthorized") ||
		strings.Contains(low, "forbidden")
}
