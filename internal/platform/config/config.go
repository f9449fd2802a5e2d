package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Store names for the LEDGER_STORE setting.
const (
	StorePgsql = "pgsql"
	StoreFile  = "file"
)

// Config holds application configuration.
type Config struct {
	Port          string
	IsProduction  bool
	DatabaseURL   string
	EnableDBCheck bool

	// LedgerStore selects the persistence backend: "pgsql" or "file".
	LedgerStore    string
	LedgerFilePath string

	// InitialBalance is the starting virtual cash for a fresh account.
	InitialBalance decimal.Decimal

	// RateLimit uses the limiter formatted syntax, e.g. "100-M" for 100 req/min.
	RateLimit string

	CORSAllowOrigins []string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("LEDGER_STORE", StoreFile)
	viper.SetDefault("LEDGER_FILE_PATH", "data/account.json")
	viper.SetDefault("INITIAL_BALANCE", "10000000")
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("CORS_ALLOW_ORIGINS", "http://localhost:3000")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	cfg.CORSAllowOrigins = viper.GetStringSlice("CORS_ALLOW_ORIGINS")

	cfg.LedgerStore = viper.GetString("LEDGER_STORE")
	switch cfg.LedgerStore {
	case StorePgsql:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("LEDGER_STORE is %q but PGSQL_URL is not set", StorePgsql)
		}
	case StoreFile:
		// nothing else required
	default:
		return nil, fmt.Errorf("invalid LEDGER_STORE %q: want %q or %q", cfg.LedgerStore, StorePgsql, StoreFile)
	}

	cfg.LedgerFilePath = viper.GetString("LEDGER_FILE_PATH")
	if cfg.LedgerFilePath == "" && cfg.LedgerStore == StoreFile {
		cfg.LedgerFilePath = "data/account.json"
		log.Printf("Warning: LEDGER_FILE_PATH not set. Defaulting to %s\n", cfg.LedgerFilePath)
	}

	initialBalanceStr := viper.GetString("INITIAL_BALANCE")
	initialBalance, err := decimal.NewFromString(initialBalanceStr)
	if err != nil || !initialBalance.IsPositive() {
		return nil, fmt.Errorf("invalid INITIAL_BALANCE %q: want a positive decimal", initialBalanceStr)
	}
	cfg.InitialBalance = initialBalance

	return cfg, nil
}
