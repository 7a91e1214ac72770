package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	Port          string `mapstructure:"PORT"`
	AllowedOrigin string `mapstructure:"ALLOWED_ORIGIN"`
	ShopName      string `mapstructure:"SHOP_NAME"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`
	SQLitePath  string `mapstructure:"SQLITE_PATH"`

	RedisAddr             string `mapstructure:"REDIS_ADDR"`
	RedisPassword         string `mapstructure:"REDIS_PASSWORD"`
	RedisDB               int    `mapstructure:"REDIS_DB"`
	ReportCacheTTLSeconds int    `mapstructure:"REPORT_CACHE_TTL_SECONDS"`

	Partners                string `mapstructure:"PARTNERS"`
	ExpenseCategories       string `mapstructure:"EXPENSE_CATEGORIES"`
	MerchandiseCategory     string `mapstructure:"MERCHANDISE_CATEGORY"`
	BreakEvenFallbackTicket string `mapstructure:"BREAK_EVEN_FALLBACK_TICKET"`
	Timezone                string `mapstructure:"TIMEZONE"`

	LogLevel       string `mapstructure:"LOG_LEVEL"`
	LogFormat      string `mapstructure:"LOG_FORMAT"`
	MetricsEnabled bool   `mapstructure:"METRICS_ENABLED"`
}

// Load reads configuration from the environment and an optional .env file
// in the working directory. Environment variables win over the file.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ALLOWED_ORIGIN", "http://127.0.0.1:3000")
	v.SetDefault("SHOP_NAME", "ORVANN")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("SQLITE_PATH", "data/orvann.db")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REPORT_CACHE_TTL_SECONDS", 60)
	v.SetDefault("PARTNERS", "JP,KATHE,ANDRES")
	v.SetDefault("EXPENSE_CATEGORIES", "Arriendo,Servicios,Nomina,Transporte,Publicidad,Software,Mantenimiento,Otros")
	v.SetDefault("MERCHANDISE_CATEGORY", "Merchandise")
	v.SetDefault("BREAK_EVEN_FALLBACK_TICKET", "100000")
	v.SetDefault("TIMEZONE", "America/Bogota")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("METRICS_ENABLED", true)

	if err := v.ReadInConfig(); err != nil {
		var missing viper.ConfigFileNotFoundError
		if !errors.As(err, &missing) {
			return Config{}, fmt.Errorf("read .env: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	if len(c.PartnerList()) == 0 {
		return errors.New("PARTNERS must name at least one partner")
	}
	seen := map[string]bool{}
	for _, p := range c.PartnerList() {
		if seen[p] {
			return fmt.Errorf("PARTNERS lists %q twice", p)
		}
		seen[p] = true
	}
	if strings.TrimSpace(c.MerchandiseCategory) == "" {
		return errors.New("MERCHANDISE_CATEGORY must be set")
	}
	if c.DatabaseURL == "" && strings.TrimSpace(c.SQLitePath) == "" {
		return errors.New("either DATABASE_URL or SQLITE_PATH must be set")
	}
	if c.ReportCacheTTLSeconds < 0 {
		return errors.New("REPORT_CACHE_TTL_SECONDS must not be negative")
	}
	if _, err := c.FallbackTicket(); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case "console", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be console or json, got %q", c.LogFormat)
	}
	return nil
}

func (c Config) PartnerList() []string {
	return splitList(c.Partners)
}

func (c Config) CategoryList() []string {
	return splitList(c.ExpenseCategories)
}

func (c Config) ReportTTL() time.Duration {
	return time.Duration(c.ReportCacheTTLSeconds) * time.Second
}

func (c Config) FallbackTicket() (decimal.Decimal, error) {
	ticket, err := decimal.NewFromString(strings.TrimSpace(c.BreakEvenFallbackTicket))
	if err != nil || !ticket.IsPositive() {
		return decimal.Zero, fmt.Errorf("BREAK_EVEN_FALLBACK_TICKET must be a positive number, got %q", c.BreakEvenFallbackTicket)
	}
	return ticket, nil
}

func (c Config) Location() (*time.Location, error) {
	if strings.TrimSpace(c.Timezone) == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE: %w", err)
	}
	return loc, nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
