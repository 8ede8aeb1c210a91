package config

import (
	"flag"
	"os"
	"sync"

	"github.com/joho/godotenv"
)

const (
	defaultServerAddress = ":8080"
	defaultDatabaseDSN   = ""
	defaultLogLevel      = "debug"
	defaultCurrency      = "inr"
)

type Config struct {
	ServerAddr      string
	DatabaseDSN     string
	StripeSecretKey string
	AuthTokenKey    string
	LogLevel        string
	Currency        string
}

var (
	once      sync.Once
	singleton *Config
)

// New returns new Config. It parses command line and environment variables
// only once. With an empty DatabaseDSN the server runs on the in-memory
// store.
func New() (*Config, error) {
	once.Do(func() {
		// .env is optional
		_ = godotenv.Load()

		cfg := Config{Currency: defaultCurrency}

		// initialize flags
		flag.StringVar(&cfg.ServerAddr, "a", defaultServerAddress, "server address")
		flag.StringVar(&cfg.DatabaseDSN, "d", defaultDatabaseDSN, "database DSN")
		flag.StringVar(&cfg.LogLevel, "l", defaultLogLevel, "log level")

		flag.Parse()

		// if environment variable is set, then using it
		if runAddrEnv := os.Getenv("RUN_ADDRESS"); runAddrEnv != "" {
			cfg.ServerAddr = runAddrEnv
		}
		if databaseURIEnv := os.Getenv("DATABASE_URI"); databaseURIEnv != "" {
			cfg.DatabaseDSN = databaseURIEnv
		}
		if logLevelEnv := os.Getenv("LOG_LEVEL"); logLevelEnv != "" {
			cfg.LogLevel = logLevelEnv
		}
		if currencyEnv := os.Getenv("CURRENCY"); currencyEnv != "" {
			cfg.Currency = currencyEnv
		}
		cfg.StripeSecretKey = os.Getenv("STRIPE_SECRET_KEY")
		cfg.AuthTokenKey = os.Getenv("AUTH_TOKEN_KEY")

		singleton = &cfg
	})

	return singleton, nil
}
