package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

// Validator checks loaded configuration against the `validate` struct tags
// plus a few cross-field rules that tags cannot express.
type Validator struct {
	v *validator.Validate
}

// NewValidator creates a validator. Field names in errors use the mapstructure
// keys, so messages read like the YAML ("postgres.port", "common.jwt_secret").
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("cronspec", func(fl validator.FieldLevel) bool {
		_, err := cron.ParseStandard(fl.Field().String())
		return err == nil
	})
	v.RegisterStructValidation(validatePostgres, PostgresConfig{})
	v.RegisterStructValidation(validateRedis, RedisConfig{})
	v.RegisterStructValidation(validateSecurity, SecurityConfig{})
	return &Validator{v: v}
}

// ValidateInfrastructure checks everything needed to reach the database and serve HTTP.
func (v *Validator) ValidateInfrastructure(cfg *InfrastructureConfig) error {
	return v.check(cfg)
}

// ValidateBusiness checks signing and throttling settings. It runs after the
// Consul overlay, since the signing secret usually lives there.
func (v *Validator) ValidateBusiness(cfg *BusinessConfig) error {
	return v.check(cfg)
}

// ValidateConsul is only called when a Consul address is configured.
func (v *Validator) ValidateConsul(cfg *ConsulConfig) error {
	return v.check(cfg)
}

func (v *Validator) check(s any) error {
	err := v.v.Struct(s)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "cronspec":
		return fmt.Sprintf("%s %q is not a valid cron expression", field, fe.Value())
	case "ltefield":
		return fmt.Sprintf("%s cannot exceed %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}

func validatePostgres(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(PostgresConfig)
	if cfg.MaxConns > 0 && cfg.MinConns > cfg.MaxConns {
		sl.ReportError(cfg.MinConns, "min_conns", "MinConns", "ltefield", "max_conns")
	}
}

func validateRedis(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(RedisConfig)
	if !cfg.Enabled {
		return
	}
	if cfg.Host == "" {
		sl.ReportError(cfg.Host, "host", "Host", "required", "")
	}
	if cfg.Port < 1 {
		sl.ReportError(cfg.Port, "port", "Port", "min", "1")
	}
	if cfg.Port > 65535 {
		sl.ReportError(cfg.Port, "port", "Port", "max", "65535")
	}
}

func validateSecurity(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(SecurityConfig)
	if !cfg.RateLimitEnabled {
		return
	}
	if cfg.IPRatePerSecond < 1 {
		sl.ReportError(cfg.IPRatePerSecond, "ip_rate_per_second", "IPRatePerSecond", "min", "1")
	}
	if cfg.IPBurst < 1 {
		sl.ReportError(cfg.IPBurst, "ip_burst", "IPBurst", "min", "1")
	}
}
