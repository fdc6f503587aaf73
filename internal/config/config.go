package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort      string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL   string `env:"DATABASE_URL,required,notEmpty"`
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	JWTSecret     string `env:"JWT_SECRET"`

	TraitCacheTTL        time.Duration `env:"TRAIT_CACHE_TTL" envDefault:"15m"`
	TraitLookupBatchSize int           `env:"TRAIT_LOOKUP_BATCH_SIZE" envDefault:"1000"`
	MatchWorkers         int           `env:"MATCH_WORKERS" envDefault:"8"`
	RecommendCandidates  int           `env:"RECOMMEND_CANDIDATES" envDefault:"50"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
