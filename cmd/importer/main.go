package main

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"hotel_tarifas/internal/adapters/observability"
	"hotel_tarifas/internal/adapters/ratefeed"
	"hotel_tarifas/internal/app"
	"hotel_tarifas/internal/shared"
	mysqlrepo "hotel_tarifas/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv, "tarifas-importer")

	log.Info().
		Str("base", cfg.FeedBase).
		Int("workers", cfg.Workers).
		Msg("importer starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	catalog := app.NewCatalogService(repo)

	feed, err := ratefeed.New(cfg.FeedBase, cfg.FeedKey, cfg.FeedRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize rate feed client")
	}
	imp := app.NewImportService(feed, catalog)

	// Periods go in one at a time; the overlap check needs to see each
	// accepted period before judging the next.
	periods, skippedPeriods, err := imp.ImportPeriods(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("period import failed")
	}

	// Rule imports fan out per period.
	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup
	var rules, skippedRules int64

	for _, ip := range periods {
		ip := ip

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)
			created, skipped, err := imp.ImportRules(ctx, ip)
			atomic.AddInt64(&rules, int64(created))
			atomic.AddInt64(&skippedRules, int64(skipped))
			if err != nil {
				log.Error().Err(err).Str("period", ip.Name).Msg("rule import failed")
			}
		}()
	}
	wg.Wait()

	log.Info().
		Int("periods", len(periods)).
		Int("periods_skipped", skippedPeriods).
		Int64("rules", atomic.LoadInt64(&rules)).
		Int64("rules_skipped", atomic.LoadInt64(&skippedRules)).
		Msg("import finished")
}
