package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string `mapstructure:"PORT"`
	Env         string `mapstructure:"ENV"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32  `mapstructure:"DB_MIN_CONNS"`

	SignEndpoints  bool   `mapstructure:"SIGN_ENDPOINTS"`
	PrivateKeyPath string `mapstructure:"PRIVATE_KEY_PATH"`

	ImportKeepGenerations int `mapstructure:"IMPORT_KEEP_GENERATIONS"`

	AddressingAdapter string `mapstructure:"ADDRESSING_ADAPTER"`
	FinderAdapter     string `mapstructure:"FINDER_ADAPTER"`
	AllowSearchBypass bool   `mapstructure:"ALLOW_SEARCH_BYPASS"`
	MockBaseURL       string `mapstructure:"MOCK_BASE_URL"`

	ZorgABBaseURL       string `mapstructure:"ZORGAB_BASE_URL"`
	ZorgABMTLSCertFile  string `mapstructure:"ZORGAB_MTLS_CERT_FILE"`
	ZorgABMTLSKeyFile   string `mapstructure:"ZORGAB_MTLS_KEY_FILE"`
	ZorgABMTLSChainFile string `mapstructure:"ZORGAB_MTLS_CHAIN_FILE"`
	ZorgABProxy         string `mapstructure:"ZORGAB_PROXY"`

	AuthSecret string `mapstructure:"AUTH_SECRET"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("SIGN_ENDPOINTS", false)
	v.SetDefault("IMPORT_KEEP_GENERATIONS", 2)
	v.SetDefault("ADDRESSING_ADAPTER", "zal")
	v.SetDefault("FINDER_ADAPTER", "mock")
	v.SetDefault("ALLOW_SEARCH_BYPASS", false)
	v.SetDefault("MOCK_BASE_URL", "http://localhost:8001")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("SIGN_ENDPOINTS")
	v.BindEnv("PRIVATE_KEY_PATH")
	v.BindEnv("IMPORT_KEEP_GENERATIONS")
	v.BindEnv("ADDRESSING_ADAPTER")
	v.BindEnv("FINDER_ADAPTER")
	v.BindEnv("ALLOW_SEARCH_BYPASS")
	v.BindEnv("MOCK_BASE_URL")
	v.BindEnv("ZORGAB_BASE_URL")
	v.BindEnv("ZORGAB_MTLS_CERT_FILE")
	v.BindEnv("ZORGAB_MTLS_KEY_FILE")
	v.BindEnv("ZORGAB_MTLS_CHAIN_FILE")
	v.BindEnv("ZORGAB_PROXY")
	v.BindEnv("AUTH_SECRET")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the service is configured for production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run with.
func (c *Config) Validate() error {
	if c.SignEndpoints && c.PrivateKeyPath == "" {
		return fmt.Errorf("PRIVATE_KEY_PATH is required when SIGN_ENDPOINTS is true")
	}

	switch c.AddressingAdapter {
	case "zal", "mock":
	default:
		return fmt.Errorf("ADDRESSING_ADAPTER must be \"zal\" or \"mock\", got %q", c.AddressingAdapter)
	}

	switch c.FinderAdapter {
	case "mock", "zorgab", "mock_zorgab_hydrated":
	default:
		return fmt.Errorf(
			"FINDER_ADAPTER must be \"mock\", \"zorgab\", or \"mock_zorgab_hydrated\", got %q", c.FinderAdapter)
	}

	if c.FinderAdapter == "zorgab" && c.ZorgABBaseURL == "" {
		return fmt.Errorf("ZORGAB_BASE_URL is required when FINDER_ADAPTER is \"zorgab\"")
	}

	if c.ImportKeepGenerations < 1 {
		return fmt.Errorf("IMPORT_KEEP_GENERATIONS must be at least 1, got %d", c.ImportKeepGenerations)
	}

	if c.IsProduction() && c.AuthSecret == "" {
		return fmt.Errorf("AUTH_SECRET is required in production")
	}

	return nil
}
