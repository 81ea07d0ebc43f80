package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Redis    RedisConfig
	Reco     RecoConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey string
}

type RedisConfig struct {
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
}

type RecoConfig struct {
	// opaque refresh tokens are AES encrypted with this key (16/24/32 bytes)
	TokenEncryptionKey string
	BatchWorkers       int
	MaxItems           int
	SilenceCheck       bool
	CacheTTLMinutes    int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, errors.New("invalid redis database")
	}

	batchWorkers, err := strconv.Atoi(getEnv("RECO_BATCH_WORKERS", "4"))
	if err != nil || batchWorkers < 1 {
		return nil, errors.New("invalid reco batch workers")
	}

	maxItems, err := strconv.Atoi(getEnv("RECO_MAX_ITEMS", "3"))
	if err != nil || maxItems < 1 {
		return nil, errors.New("invalid reco max items")
	}

	cacheTTL, err := strconv.Atoi(getEnv("RECO_CACHE_TTL_MINUTES", "60"))
	if err != nil {
		return nil, errors.New("invalid reco cache ttl")
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Vintner CRM"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "vintner_crm"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET", ""),
		},
		Redis: RedisConfig{
			RedisHost:     getEnv("REDIS_HOST", "localhost"),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       redisDB,
		},
		Reco: RecoConfig{
			TokenEncryptionKey: getEnv("RECO_TOKEN_KEY", ""),
			BatchWorkers:       batchWorkers,
			MaxItems:           maxItems,
			SilenceCheck:       getEnv("RECO_SILENCE_CHECK", "true") == "true",
			CacheTTLMinutes:    cacheTTL,
		},
	}

	if cfg.JWT.SecretKey == "" {
		return nil, errors.New("missing jwt secret")
	}

	if cfg.Database.Password == "" {
		return nil, errors.New("missing database password")
	}

	if len(cfg.Reco.TokenEncryptionKey) != 16 && len(cfg.Reco.TokenEncryptionKey) != 24 && len(cfg.Reco.TokenEncryptionKey) != 32 {
		return nil, errors.New("reco token key must be 16, 24 or 32 bytes")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}
