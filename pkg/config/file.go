package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. LS_BUSINESS_COMMON_JWT_SECRET.
const EnvPrefix = "LS"

// FileLoader loads configuration from YAML files and environment variables.
type FileLoader struct {
	configPath string
	validator  *Validator
}

// NewFileLoader creates a new file loader.
func NewFileLoader(configPath string) *FileLoader {
	return &FileLoader{
		configPath: configPath,
		validator:  NewValidator(),
	}
}

// Load reads the file (optional when every value comes from env), applies
// defaults and validates the infrastructure section. Business values are
// validated by Load after the Consul overlay.
func (l *FileLoader) Load() (*Config, error) {
	v := viper.New()

	if l.configPath != "" {
		v.SetConfigFile(l.configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := l.validator.ValidateInfrastructure(&config.Infrastructure); err != nil {
		return nil, fmt.Errorf("invalid infrastructure config: %w", err)
	}

	return &config, nil
}

// setDefaults registers every key so AutomaticEnv can resolve it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("infrastructure.postgres.host", "localhost")
	v.SetDefault("infrastructure.postgres.port", 5432)
	v.SetDefault("infrastructure.postgres.user", "postgres")
	v.SetDefault("infrastructure.postgres.password", "")
	v.SetDefault("infrastructure.postgres.database", "music")
	v.SetDefault("infrastructure.postgres.ssl_mode", "disable")
	v.SetDefault("infrastructure.postgres.max_conns", 25)
	v.SetDefault("infrastructure.postgres.min_conns", 5)
	v.SetDefault("infrastructure.postgres.conn_max_lifetime", time.Hour)
	v.SetDefault("infrastructure.postgres.conn_max_idle_time", 30*time.Minute)

	v.SetDefault("infrastructure.redis.enabled", true)
	v.SetDefault("infrastructure.redis.host", "localhost")
	v.SetDefault("infrastructure.redis.port", 6379)
	v.SetDefault("infrastructure.redis.password", "")
	v.SetDefault("infrastructure.redis.db", 0)
	v.SetDefault("infrastructure.redis.pool_size", 10)
	v.SetDefault("infrastructure.redis.min_idle_conns", 2)
	v.SetDefault("infrastructure.redis.dial_timeout", 5*time.Second)
	v.SetDefault("infrastructure.redis.read_timeout", 3*time.Second)
	v.SetDefault("infrastructure.redis.write_timeout", 3*time.Second)

	v.SetDefault("infrastructure.consul.address", "")
	v.SetDefault("infrastructure.consul.scheme", "http")
	v.SetDefault("infrastructure.consul.token", "")
	v.SetDefault("infrastructure.consul.datacenter", "")
	v.SetDefault("infrastructure.consul.timeout", 5*time.Second)
	v.SetDefault("infrastructure.consul.kv_prefix", "music-svc")
	v.SetDefault("infrastructure.consul.watch_interval", 0)
	v.SetDefault("infrastructure.consul.register", false)
	v.SetDefault("infrastructure.consul.service_address", "")
	v.SetDefault("infrastructure.consul.service_tags", []string{"http", "api"})

	v.SetDefault("infrastructure.server.http_port", 3000)
	v.SetDefault("infrastructure.server.read_timeout", 30*time.Second)
	v.SetDefault("infrastructure.server.write_timeout", 60*time.Second)
	v.SetDefault("infrastructure.server.idle_timeout", 60*time.Second)
	v.SetDefault("infrastructure.server.shutdown_timeout", 30*time.Second)
	v.SetDefault("infrastructure.server.upload_dir", "uploads")
	v.SetDefault("infrastructure.server.max_upload_size", 50<<20)
	v.SetDefault("infrastructure.server.upload_ttl", time.Hour)
	v.SetDefault("infrastructure.server.upload_sweep_spec", "*/30 * * * *")

	v.SetDefault("infrastructure.telemetry.enabled", false)
	v.SetDefault("infrastructure.telemetry.otlp_endpoint", "")
	v.SetDefault("infrastructure.telemetry.environment", "development")
	v.SetDefault("infrastructure.telemetry.service_version", "1.0.0")

	v.SetDefault("infrastructure.log.level", "info")
	v.SetDefault("infrastructure.log.caller", true)

	v.SetDefault("business.common.jwt_secret", "")
	v.SetDefault("business.common.jwt_issuer", "music-svc")
	v.SetDefault("business.common.jwt_expiry", 7*24*time.Hour)

	v.SetDefault("business.media.url", "")
	v.SetDefault("business.media.cloud_name", "")
	v.SetDefault("business.media.api_key", "")
	v.SetDefault("business.media.api_secret", "")
	v.SetDefault("business.media.folder", "Songs")
	v.SetDefault("business.media.breaker_max_failures", 5)
	v.SetDefault("business.media.breaker_cooldown", 30*time.Second)

	v.SetDefault("business.security.login_max_attempts", 10)
	v.SetDefault("business.security.login_window", 15*time.Minute)
	v.SetDefault("business.security.rate_limit_enabled", true)
	v.SetDefault("business.security.ip_rate_per_second", 20)
	v.SetDefault("business.security.ip_burst", 40)
}
