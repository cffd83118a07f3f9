package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	// HTTP Server
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RateLimit       int           `mapstructure:"rate_limit_per_minute"`
	LogLevel        string        `mapstructure:"log_level"`
	LogFormat       string        `mapstructure:"log_format"`
	// CORSAllowOrigin lets a UI served from another origin call the API.
	CORSAllowOrigin string `mapstructure:"cors_allow_origin"`
	// TrustedProxies is a comma-separated CIDR list added to the private
	// ranges whose X-Forwarded-For header is honored.
	TrustedProxies string `mapstructure:"trusted_proxies"`

	// Backend selection
	DataBackend string `mapstructure:"data_backend"`
	SeedFile    string `mapstructure:"seed_file"`

	// Database
	SQLiteDBPath string `mapstructure:"sqlite_db_path"`
	PostgresURL  string `mapstructure:"postgres_url"`

	// Google Sheets
	GoogleSpreadsheetID     string `mapstructure:"google_spreadsheet_id"`
	GoogleTransactionsSheet string `mapstructure:"google_transactions_sheet"`
	GoogleCategoriesSheet   string `mapstructure:"google_categories_sheet"`
	GoogleCredentialsFile   string `mapstructure:"google_credentials_file"`
	GoogleCredentialsJSON   string `mapstructure:"google_credentials_json"`
	GoogleOAuthClientFile   string `mapstructure:"google_oauth_client_file"`
	GoogleOAuthClientJSON   string `mapstructure:"google_oauth_client_json"`
	GoogleOAuthTokenFile    string `mapstructure:"google_oauth_token_file"`
	GoogleOAuthTokenJSON    string `mapstructure:"google_oauth_token_json"`

	// AMQP, optional
	AMQPURL      string `mapstructure:"amqp_url"`
	AMQPExchange string `mapstructure:"amqp_exchange"`
	InstanceID   string `mapstructure:"instance_id"`

	// Market data
	FXAPIURL      string        `mapstructure:"fx_api_url"`
	CoinGeckoURL  string        `mapstructure:"coingecko_url"`
	WorldBankURL  string        `mapstructure:"worldbank_url"`
	MarketTimeout time.Duration `mapstructure:"market_timeout"`

	// Cache
	CacheTTL             time.Duration `mapstructure:"cache_ttl"`
	CacheCleanupInterval time.Duration `mapstructure:"cache_cleanup_interval"`
}

var ValidBackends = []string{"memory", "sqlite", "postgres", "sheets"}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8081")
	v.SetDefault("shutdown_timeout", 30*time.Second)
	v.SetDefault("rate_limit_per_minute", 60)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("cors_allow_origin", "")
	v.SetDefault("trusted_proxies", "")

	v.SetDefault("data_backend", "memory")
	v.SetDefault("seed_file", "data/seed.json")
	v.SetDefault("sqlite_db_path", "./data/fintrack.db")
	v.SetDefault("postgres_url", "")

	v.SetDefault("google_spreadsheet_id", "")
	v.SetDefault("google_transactions_sheet", "Transactions")
	v.SetDefault("google_categories_sheet", "Categories")
	v.SetDefault("google_credentials_file", "")
	v.SetDefault("google_credentials_json", "")
	v.SetDefault("google_oauth_client_file", "")
	v.SetDefault("google_oauth_client_json", "")
	v.SetDefault("google_oauth_token_file", "")
	v.SetDefault("google_oauth_token_json", "")

	v.SetDefault("amqp_url", "")
	v.SetDefault("amqp_exchange", "fintrack.cache")
	v.SetDefault("instance_id", "")

	v.SetDefault("fx_api_url", "")
	v.SetDefault("coingecko_url", "https://api.coingecko.com/api/v3")
	v.SetDefault("worldbank_url", "https://api.worldbank.org/v2")
	v.SetDefault("market_timeout", 8*time.Second)

	v.SetDefault("cache_ttl", 5*time.Minute)
	v.SetDefault("cache_cleanup_interval", time.Minute)
}

// Load reads .env (if present), then FINTRACK_CONFIG (a TOML file, if set),
// then the environment. Environment variables use the upper-case key, e.g.
// DATA_BACKEND or CACHE_TTL.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path := os.Getenv("FINTRACK_CONFIG"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.InstanceID == "" {
		c.InstanceID, _ = os.Hostname()
	}
	return &c, nil
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	isValidBackend := false
	for _, backend := range ValidBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, ValidBackends))
	}

	switch c.DataBackend {
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	case "postgres":
		if c.PostgresURL == "" {
			errors = append(errors, "POSTGRES_URL is required when using postgres backend")
		} else if u, err := url.Parse(c.PostgresURL); err != nil || (u.Scheme != "postgres" && u.Scheme != "postgresql") {
			errors = append(errors, fmt.Sprintf("invalid POSTGRES_URL '%s': scheme must be 'postgres' or 'postgresql'", c.PostgresURL))
		}
	case "sheets":
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
		}
		hasFile := c.GoogleCredentialsFile != ""
		hasOAuth := c.GoogleOAuthClientFile != "" || c.GoogleOAuthClientJSON != ""
		if !hasFile && c.GoogleCredentialsJSON == "" && !hasOAuth {
			errors = append(errors, "either GOOGLE_CREDENTIALS_FILE or GOOGLE_CREDENTIALS_JSON must be provided for sheets backend")
		}
		if hasOAuth && c.GoogleOAuthTokenFile == "" && c.GoogleOAuthTokenJSON == "" {
			errors = append(errors, "either GOOGLE_OAUTH_TOKEN_FILE or GOOGLE_OAUTH_TOKEN_JSON must be provided with an OAuth client")
		}
		if hasFile {
			if _, err := os.Stat(c.GoogleCredentialsFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google credentials file does not exist: %s", c.GoogleCredentialsFile))
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	for name, raw := range map[string]string{"FX_API_URL": c.FXAPIURL, "COINGECKO_URL": c.CoinGeckoURL, "WORLDBANK_URL": c.WorldBankURL} {
		if raw == "" {
			continue
		}
		if u, err := url.Parse(raw); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errors = append(errors, fmt.Sprintf("invalid %s '%s': must be an http(s) URL", name, raw))
		}
	}

	if c.LogFormat != "" && c.LogFormat != "text" && c.LogFormat != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}
	for _, cidr := range c.TrustedProxyList() {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			errors = append(errors, fmt.Sprintf("invalid trusted proxy '%s': must be a CIDR", cidr))
		}
	}
	if c.RateLimit < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimit))
	}
	if c.CacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must be at least 1 second", c.CacheTTL))
	}
	if c.CacheCleanupInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid cache cleanup interval %v: must be at least 1 second", c.CacheCleanupInterval))
	}
	if c.MarketTimeout < 100*time.Millisecond || c.MarketTimeout > time.Minute {
		errors = append(errors, fmt.Sprintf("invalid market timeout %v: must be between 100ms and 1m", c.MarketTimeout))
	}
	if c.ShutdownTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid shutdown timeout %v: must be at least 1 second", c.ShutdownTimeout))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// TrustedProxyList splits TrustedProxies, skipping blanks.
func (c *Config) TrustedProxyList() []string {
	var out []string
	for _, part := range strings.Split(c.TrustedProxies, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
