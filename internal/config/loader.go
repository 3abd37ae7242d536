package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const envPrefix = "PATLYTICS"

// Load reads configuration from the given file path (optional) and the
// environment, applies defaults, and validates the result.  Environment
// variables override file values: server.port becomes PATLYTICS_SERVER_PORT.
func Load(path string) (*Config, error) {
	v := viper.New()

	applyDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshaling: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad is Load for call sites that cannot proceed without configuration,
// such as test harnesses and one-shot tools.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Watch re-reads the configuration file whenever it changes on disk and
// invokes onChange with the freshly validated configuration.  Invalid
// updates are discarded and reported through onError.
func Watch(path string, onChange func(*Config), onError func(error)) error {
	if path == "" {
		return fmt.Errorf("config: watch requires a config file path")
	}
	v := viper.New()
	applyDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: reading %s: %w", path, err)
	}

	v.OnConfigChange(func(_ fsnotify.Event) {
		var cfg Config
		if err := v.Unmarshal(&cfg); err != nil {
			onError(fmt.Errorf("config: reload unmarshal: %w", err))
			return
		}
		if err := cfg.Validate(); err != nil {
			onError(err)
			return
		}
		onChange(&cfg)
	})
	v.WatchConfig()
	return nil
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 90*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)
	v.SetDefault("server.cors_allowed_origins", []string{"*"})

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "patlytics")
	v.SetDefault("database.database", "patlytics")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", time.Hour)
	v.SetDefault("database.connect_timeout", 10*time.Second)
	v.SetDefault("database.migrations_path", "file://migrations")
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("opensearch.addresses", []string{"http://localhost:9200"})
	v.SetDefault("opensearch.company_index", "company-products")
	v.SetDefault("opensearch.patent_index", "patents")
	v.SetDefault("opensearch.request_timeout", 10*time.Second)
	v.SetDefault("opensearch.health_check_interval", 30*time.Second)
	v.SetDefault("opensearch.max_retries", 3)

	v.SetDefault("model.provider", string(ProviderAnthropic))
	v.SetDefault("model.model", "claude-3-5-sonnet-20240620")
	v.SetDefault("model.max_tokens", 4096)
	v.SetDefault("model.temperature", 0.2)
	v.SetDefault("model.request_timeout", 60*time.Second)

	v.SetDefault("resolver.min_score", 5.0)
	v.SetDefault("resolver.fuzziness", 2)
	v.SetDefault("resolver.prefix_length", 2)
	v.SetDefault("resolver.max_alternatives", 2)
	v.SetDefault("resolver.local_ratio_threshold", 80)

	v.SetDefault("catalog.backend", "opensearch")

	v.SetDefault("auth.access_token_ttl", 30*time.Minute)
	v.SetDefault("auth.refresh_token_ttl", 7*24*time.Hour)
	v.SetDefault("auth.bcrypt_cost", 12)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}
