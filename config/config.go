package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	Storage     Storage
	Postgres    Postgres
	Sqlite      Sqlite
	Redis       Redis
	API         API
	Cache       Cache
	Jobs        Jobs
	Portfolio   Portfolio
	HTTP        HTTP
	GoogleDrive GoogleDrive
}

type Storage struct {
	// memory, sqlite, postgres or redis
	Driver        string `env:"STORAGE_DRIVER" envDefault:"sqlite"`
	EncryptionKey string `env:"STORAGE_ENCRYPTION_KEY" envDefault:""`
	KeyPrefix     string `env:"STORAGE_KEY_PREFIX" envDefault:"invest_tracker"`
}

type Postgres struct {
	Host            string `env:"PG_HOST" envDefault:"localhost"`
	Port            int    `env:"PG_PORT" envDefault:"5432"`
	DbName          string `env:"PG_DB_NAME" envDefault:"invest_tracker"`
	Password        string `env:"PG_PASSWORD" envDefault:""`
	User            string `env:"PG_USER" envDefault:"postgres"`
	MaxOpenConns    int    `env:"PG_MAX_OPEN_CONNS" envDefault:"10"`
	ConnMaxLifetime int    `env:"PG_CONN_MAX_LIFETIME" envDefault:"300"`
	MaxIdleConns    int    `env:"PG_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxIdleTime int    `env:"PG_CONN_MAX_IDLE_TIME" envDefault:"60"`
	MigrationDir    string `env:"PG_MIGRATION_DIR" envDefault:"data/migrations/postgres"`
}

type Sqlite struct {
	Path string `env:"SQLITE_PATH" envDefault:"invest_tracker.db"`
}

type Redis struct {
	Host     string `env:"REDIS_HOST" envDefault:""`
	Port     int    `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type API struct {
	Debug        bool          `env:"API_DEBUG" envDefault:"false"`
	Timeout      time.Duration `env:"API_TIMEOUT" envDefault:"10s"`
	AlphaVantage AlphaVantage
	CoinGecko    CoinGecko
}

type AlphaVantage struct {
	Url string `env:"ALPHA_VANTAGE_URL" envDefault:"https://www.alphavantage.co"`
	Key string `env:"ALPHA_VANTAGE_API_KEY" envDefault:"demo"`
}

type CoinGecko struct {
	Url string `env:"COINGECKO_URL" envDefault:"https://api.coingecko.com/api/v3"`
}

type Cache struct {
	QuotesExpiration time.Duration `env:"CACHE_QUOTES_EXPIRATION" envDefault:"10m"`
}

type Jobs struct {
	RevalueInterval       time.Duration `env:"REVALUE_JOB_INTERVAL" envDefault:"30s"`
	RefreshPricesInterval time.Duration `env:"REFRESH_PRICES_JOB_INTERVAL" envDefault:"30s"`
	RefreshConcurrency    int           `env:"REFRESH_PRICES_CONCURRENCY" envDefault:"4"`
	DeleteOldReportsCron  string        `env:"DELETE_OLD_REPORTS_CRONTAB" envDefault:"0 3 * * *"`
	PersistRetryBackoff   time.Duration `env:"PERSIST_RETRY_BACKOFF" envDefault:"2s"`
}

type Portfolio struct {
	DefaultName   string  `env:"PORTFOLIO_DEFAULT_NAME" envDefault:"Main"`
	RiskFreeRate  float64 `env:"PORTFOLIO_RISK_FREE_RATE" envDefault:"2.0"`
	MaxSnapshots  int     `env:"PORTFOLIO_MAX_SNAPSHOTS" envDefault:"0"`
	CommandBuffer int     `env:"PORTFOLIO_COMMAND_BUFFER" envDefault:"64"`
}

type HTTP struct {
	Addr           string        `env:"HTTP_ADDR" envDefault:":8080"`
	AllowedOrigins []string      `env:"HTTP_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	ReadTimeout    time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout   time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"15s"`
}

type GoogleDrive struct {
	CredentialsFile string        `env:"GOOGLE_DRIVE_CREDENTIALS_FILE" envDefault:""`
	FileTTL         time.Duration `env:"GOOGLE_DRIVE_FILE_TTL" envDefault:"24h"`
}

func MustLoad() *Config {
	_ = godotenv.Load(".env")

	cfg, err := Load()
	if err != nil {
		log.Fatalf("parse config error: %s", err)
	}

	return cfg
}

func Load() (*Config, error) {
	cfg := &Config{}

	opts := env.Options{RequiredIfNoDef: true}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, err
	}

	return cfg, nil
}
