package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Port               string
	IsProduction       bool
	DatabaseURL        string
	LedgerID           string
	SnapshotInterval   time.Duration // Zero disables the autosave job
	RateLimit          string        // ulule/limiter format, e.g. "100-M"
	LogLevel           slog.Level
	TaxInclusive       bool
	CORSAllowedOrigins []string
	Postings           domain.PostingAccounts
}

// postingKeys maps each posting role to its environment key.
var postingKeys = map[string]func(*domain.PostingAccounts) *string{
	"POSTING_CASH_CODE":           func(p *domain.PostingAccounts) *string { return &p.Cash },
	"POSTING_BANK_CODE":           func(p *domain.PostingAccounts) *string { return &p.Bank },
	"POSTING_AR_CODE":             func(p *domain.PostingAccounts) *string { return &p.Receivable },
	"POSTING_AP_CODE":             func(p *domain.PostingAccounts) *string { return &p.Payable },
	"POSTING_INVENTORY_CODE":      func(p *domain.PostingAccounts) *string { return &p.Inventory },
	"POSTING_TAX_PAYABLE_CODE":    func(p *domain.PostingAccounts) *string { return &p.TaxPayable },
	"POSTING_REVENUE_CODE":        func(p *domain.PostingAccounts) *string { return &p.Revenue },
	"POSTING_COGS_CODE":           func(p *domain.PostingAccounts) *string { return &p.COGS },
	"POSTING_OPENING_EQUITY_CODE": func(p *domain.PostingAccounts) *string { return &p.OpeningEquity },
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("LEDGER_ID", "default")
	v.SetDefault("SNAPSHOT_INTERVAL", "5m")
	v.SetDefault("RATE_LIMIT", "600-M")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("TAX_INCLUSIVE", false)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	defaults := domain.DefaultPostingAccounts()
	for key, field := range postingKeys {
		v.SetDefault(key, *field(&defaults))
	}

	v.AutomaticEnv()

	cfg := &Config{
		Port:         v.GetString("PORT"),
		IsProduction: v.GetBool("IS_PRODUCTION"),
		DatabaseURL:  v.GetString("PGSQL_URL"),
		LedgerID:     v.GetString("LEDGER_ID"),
		RateLimit:    v.GetString("RATE_LIMIT"),
		TaxInclusive: v.GetBool("TAX_INCLUSIVE"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.LedgerID == "" {
		return nil, fmt.Errorf("LEDGER_ID must not be empty")
	}

	interval, err := time.ParseDuration(v.GetString("SNAPSHOT_INTERVAL"))
	if err != nil {
		return nil, fmt.Errorf("invalid SNAPSHOT_INTERVAL %q: %w", v.GetString("SNAPSHOT_INTERVAL"), err)
	}
	if interval < 0 {
		return nil, fmt.Errorf("SNAPSHOT_INTERVAL must not be negative")
	}
	cfg.SnapshotInterval = interval

	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString("LOG_LEVEL"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", v.GetString("LOG_LEVEL"), err)
	}

	for _, origin := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	for key, field := range postingKeys {
		code := strings.TrimSpace(v.GetString(key))
		if code == "" {
			return nil, fmt.Errorf("%s must not be empty", key)
		}
		*field(&cfg.Postings) = code
	}

	return cfg, nil
}
