package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv        string
	HTTPAddr      string
	MetricsAddr   string
	CatalogDriver string // mysql | memory
	MySQLDSN      string
	RedisAddr     string
	RedisDB       int
	RedisPass     string
	FeedBase      string
	FeedKey       string
	FeedRPS       int
	Workers       int
	CacheTTL      time.Duration
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:        env("APP_ENV", "prod"),
		HTTPAddr:      env("HTTP_ADDR", ":8080"),
		MetricsAddr:   env("METRICS_ADDR", ":9100"),
		CatalogDriver: env("CATALOG_DRIVER", "mysql"),
		MySQLDSN:      env("MYSQL_DSN", "root:root@tcp(localhost:3306)/tarifas?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:     env("REDIS_ADDR", "localhost:6379"),
		RedisPass:     env("REDIS_PASSWORD", ""),
		RedisDB:       atoi("REDIS_DB", 0),
		FeedBase:      env("RATEFEED_BASE_URL", "https://rates.example.test/api"),
		FeedKey:       env("RATEFEED_API_KEY", ""),
		FeedRPS:       atoi("RATEFEED_RPS", 5),
		Workers:       atoi("IMPORT_WORKERS", 4),
		CacheTTL:      time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
	}
	if c.CatalogDriver != "mysql" && c.CatalogDriver != "memory" {
		log.Warn().Str("driver", c.CatalogDriver).Msg("unknown CATALOG_DRIVER, falling back to mysql")
		c.CatalogDriver = "mysql"
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
