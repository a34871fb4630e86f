package main

import (
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "hotel_tarifas/internal/adapters/http_server"
	"hotel_tarifas/internal/adapters/observability"
	redisad "hotel_tarifas/internal/adapters/redis"
	"hotel_tarifas/internal/app"
	"hotel_tarifas/internal/domain"
	"hotel_tarifas/internal/shared"
	"hotel_tarifas/internal/storage/memory"
	mysqlrepo "hotel_tarifas/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, "tarifas-api")

	observability.Serve()

	repo := openCatalog(cfg)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	pricing := app.NewPricingService(repo, cache, cfg.CacheTTL)
	catalog := app.NewCatalogService(repo)

	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Pricing: pricing, Catalog: catalog})

	log.Info().Str("addr", cfg.HTTPAddr).Str("catalog", cfg.CatalogDriver).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}

// openCatalog picks the catalog store by configuration. The memory driver is
// for dev only and must be asked for explicitly; a broken MySQL connection
// fails startup instead of degrading silently.
func openCatalog(cfg shared.Config) domain.CatalogRepository {
	if cfg.CatalogDriver == "memory" {
		log.Warn().Msg("using in-memory catalog; data will not survive restarts")
		st := memory.New()
		st.SeedCategories(
			domain.AccommodationCategory{ID: "cat-standard", Name: "Standard", MaxGuests: 3},
			domain.AccommodationCategory{ID: "cat-luxo", Name: "Luxo", MaxGuests: 4},
			domain.AccommodationCategory{ID: "cat-master", Name: "Master", MaxGuests: 5},
		)
		return st
	}

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")
	return mysqlrepo.New(db)
}
