// Package config defines the complete runtime configuration for the service
// and the viper-based loading machinery.  Configuration is read from a YAML
// file and overridden by environment variables with the PATLYTICS_ prefix.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration aggregate.  It is loaded once at startup
// and passed to components via constructor injection; no component reads
// configuration from globals.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	OpenSearch OpenSearchConfig `mapstructure:"opensearch"`
	Model      ModelConfig      `mapstructure:"model"`
	Resolver   ResolverConfig   `mapstructure:"resolver"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Log        LogConfig        `mapstructure:"log"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// CORSAllowedOrigins lists origins permitted by the CORS middleware.
	// A single "*" entry allows every origin.
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

// Addr returns the host:port listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`

	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`

	// MigrationsPath points at the directory of SQL migration files,
	// e.g. "file://migrations".
	MigrationsPath string `mapstructure:"migrations_path"`
	// AutoMigrate applies pending migrations at startup when true.
	AutoMigrate bool `mapstructure:"auto_migrate"`
}

// DSN returns a PostgreSQL connection string suitable for pgxpool.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

// OpenSearchConfig holds OpenSearch cluster connection parameters and the
// index names used by the company and patent catalogs.
type OpenSearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	// InsecureSkipTLSVerify disables certificate verification.  Only for
	// local development clusters with self-signed certificates.
	InsecureSkipTLSVerify bool `mapstructure:"insecure_skip_tls_verify"`

	// CompanyIndex is the alias the company-products documents live behind.
	CompanyIndex string `mapstructure:"company_index"`
	// PatentIndex is the alias the patent documents live behind.
	PatentIndex string `mapstructure:"patent_index"`

	// RequestTimeout bounds every search and indexing call.  An elapsed
	// timeout is treated as index unavailability, not as an empty result.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`

	HealthCheckInterval time.Duration `mapstructure:"health_check_interval"`
	MaxRetries          int           `mapstructure:"max_retries"`
}

// ModelProvider identifies which language-model backend to construct.
type ModelProvider string

const (
	ProviderAnthropic ModelProvider = "anthropic"
	ProviderOpenAI    ModelProvider = "openai"
)

// ModelConfig holds language-model backend parameters.
type ModelConfig struct {
	Provider ModelProvider `mapstructure:"provider"`

	// APIKey authenticates against the selected provider.
	APIKey string `mapstructure:"api_key"`
	// Model names the provider-specific model identifier.
	Model string `mapstructure:"model"`
	// BaseURL overrides the provider endpoint; empty means the provider
	// default.
	BaseURL string `mapstructure:"base_url"`

	// MaxTokens caps the generated completion length.
	MaxTokens int `mapstructure:"max_tokens"`
	// Temperature controls sampling randomness.  Kept low so repeated
	// assessments of the same inputs stay stable.
	Temperature float64 `mapstructure:"temperature"`

	// RequestTimeout bounds every model invocation.  An elapsed timeout is
	// reported as a model invocation failure.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// ResolverConfig holds the tuning knobs for two-tier company name
// resolution.
type ResolverConfig struct {
	// MinScore is the minimum OpenSearch relevance score a hit must reach
	// to be considered a match.
	MinScore float64 `mapstructure:"min_score"`
	// Fuzziness is the Levenshtein edit-distance budget of the index fuzzy
	// clause.
	Fuzziness int `mapstructure:"fuzziness"`
	// PrefixLength is the number of leading characters that must match
	// exactly in the index fuzzy clause.
	PrefixLength int `mapstructure:"prefix_length"`
	// MaxAlternatives caps how many runner-up candidates are surfaced
	// alongside the selected match.
	MaxAlternatives int `mapstructure:"max_alternatives"`

	// LocalRatioThreshold is the minimum similarity ratio (0-100) a company
	// name must reach in the local fallback tier.
	LocalRatioThreshold int `mapstructure:"local_ratio_threshold"`
}

// CatalogConfig selects the catalog backend used for exact patent and
// company lookups.
type CatalogConfig struct {
	// Backend is "opensearch" or "file".
	Backend string `mapstructure:"backend"`
	// PatentsFile and CompaniesFile locate the JSON datasets for the file
	// backend.
	PatentsFile   string `mapstructure:"patents_file"`
	CompaniesFile string `mapstructure:"companies_file"`
}

// AuthConfig holds JWT signing and credential-hashing parameters.
type AuthConfig struct {
	// JWTSecret signs access and refresh tokens with HMAC-SHA256.
	JWTSecret string `mapstructure:"jwt_secret"`
	// AccessTokenTTL is the lifetime of access tokens.
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
	// RefreshTokenTTL is the lifetime of refresh tokens.
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
	// BcryptCost is the bcrypt work factor for password hashing.
	BcryptCost int `mapstructure:"bcrypt_cost"`
}

// LogConfig holds logging parameters.  It mirrors logging.Config but lives
// here so the config package stays free of logging imports.
type LogConfig struct {
	Level            string   `mapstructure:"level"`
	Format           string   `mapstructure:"format"`
	OutputPaths      []string `mapstructure:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths"`
}

// Validate checks the configuration for values that would make the service
// unable to operate.  It returns the first problem found.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port must be in (0, 65535], got %d", c.Server.Port)
	}
	if c.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("config: database.database is required")
	}
	if len(c.OpenSearch.Addresses) == 0 && c.Catalog.Backend == "opensearch" {
		return fmt.Errorf("config: opensearch.addresses is required when catalog.backend is opensearch")
	}
	if c.OpenSearch.RequestTimeout <= 0 {
		return fmt.Errorf("config: opensearch.request_timeout must be positive")
	}
	switch c.Model.Provider {
	case ProviderAnthropic, ProviderOpenAI:
	default:
		return fmt.Errorf("config: model.provider must be %q or %q, got %q",
			ProviderAnthropic, ProviderOpenAI, c.Model.Provider)
	}
	if c.Model.APIKey == "" {
		return fmt.Errorf("config: model.api_key is required")
	}
	if c.Model.RequestTimeout <= 0 {
		return fmt.Errorf("config: model.request_timeout must be positive")
	}
	if c.Resolver.MinScore < 0 {
		return fmt.Errorf("config: resolver.min_score must be non-negative")
	}
	if c.Resolver.LocalRatioThreshold < 0 || c.Resolver.LocalRatioThreshold > 100 {
		return fmt.Errorf("config: resolver.local_ratio_threshold must be in [0, 100]")
	}
	switch c.Catalog.Backend {
	case "opensearch":
	case "file":
		if c.Catalog.PatentsFile == "" || c.Catalog.CompaniesFile == "" {
			return fmt.Errorf("config: catalog.patents_file and catalog.companies_file are required for the file backend")
		}
	default:
		return fmt.Errorf("config: catalog.backend must be \"opensearch\" or \"file\", got %q", c.Catalog.Backend)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("config: auth.jwt_secret is required")
	}
	if c.Auth.AccessTokenTTL <= 0 || c.Auth.RefreshTokenTTL <= 0 {
		return fmt.Errorf("config: auth token TTLs must be positive")
	}
	return nil
}
