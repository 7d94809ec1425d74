package config

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/consul/api"
)

// KVGetter is the subset of the Consul KV API used by ConsulLoader.
type KVGetter interface {
	Get(key string, q *api.QueryOptions) (*api.KVPair, *api.QueryMeta, error)
	List(prefix string, q *api.QueryOptions) (api.KVPairs, *api.QueryMeta, error)
}

// ConsulLoader overlays business configuration from Consul KV.
//
// Layout under the prefix:
//
//	<prefix>/common/jwt_secret
//	<prefix>/common/jwt_expiry      (Go duration, e.g. 168h)
//	<prefix>/media/{url,cloud_name,api_key,api_secret,folder}
//	<prefix>/security/{login_max_attempts,login_window,rate_limit_enabled}
//
// Missing keys leave the file/env value untouched.
type ConsulLoader struct {
	kv       KVGetter
	kvPrefix string
}

// NewConsulClient builds an API client from cfg.
func NewConsulClient(cfg *ConsulConfig) (*api.Client, error) {
	if err := NewValidator().ValidateConsul(cfg); err != nil {
		return nil, fmt.Errorf("invalid consul config: %w", err)
	}

	apiCfg := api.DefaultConfig()
	apiCfg.Address = cfg.Address
	if cfg.Scheme != "" {
		apiCfg.Scheme = cfg.Scheme
	}
	apiCfg.Token = cfg.Token
	apiCfg.Datacenter = cfg.Datacenter
	if cfg.Timeout > 0 {
		apiCfg.WaitTime = cfg.Timeout
	}

	client, err := api.NewClient(apiCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create consul client: %w", err)
	}
	return client, nil
}

// NewConsulLoader creates a new Consul KV loader.
func NewConsulLoader(cfg *ConsulConfig) (*ConsulLoader, error) {
	client, err := NewConsulClient(cfg)
	if err != nil {
		return nil, err
	}
	return NewConsulLoaderWithKV(client.KV(), cfg.KVPrefix), nil
}

// NewConsulLoaderWithKV builds a loader over an existing KV client.
func NewConsulLoaderWithKV(kv KVGetter, prefix string) *ConsulLoader {
	return &ConsulLoader{kv: kv, kvPrefix: prefix}
}

// Overlay replaces fields of cfg with any values present in KV.
func (l *ConsulLoader) Overlay(ctx context.Context, cfg *BusinessConfig) error {
	opts := (&api.QueryOptions{}).WithContext(ctx)

	common, err := l.list(path.Join(l.kvPrefix, "common"), opts)
	if err != nil {
		return fmt.Errorf("failed to load common config: %w", err)
	}
	if v, ok := common["jwt_secret"]; ok {
		cfg.Common.JWTSecret = v
	}
	if v, ok := common["jwt_issuer"]; ok {
		cfg.Common.JWTIssuer = v
	}
	if v, ok := common["jwt_expiry"]; ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid common/jwt_expiry: %w", err)
		}
		cfg.Common.JWTExpiry = d
	}

	media, err := l.list(path.Join(l.kvPrefix, "media"), opts)
	if err != nil {
		return fmt.Errorf("failed to load media config: %w", err)
	}
	setString(&cfg.Media.URL, media, "url")
	setString(&cfg.Media.CloudName, media, "cloud_name")
	setString(&cfg.Media.APIKey, media, "api_key")
	setString(&cfg.Media.APISecret, media, "api_secret")
	setString(&cfg.Media.Folder, media, "folder")

	security, err := l.list(path.Join(l.kvPrefix, "security"), opts)
	if err != nil {
		return fmt.Errorf("failed to load security config: %w", err)
	}
	if v, ok := security["login_max_attempts"]; ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid security/login_max_attempts: %w", err)
		}
		cfg.Security.LoginMaxAttempts = n
	}
	if v, ok := security["login_window"]; ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid security/login_window: %w", err)
		}
		cfg.Security.LoginWindow = d
	}
	if v, ok := security["rate_limit_enabled"]; ok {
		cfg.Security.RateLimitEnabled = v == "true"
	}

	return nil
}

// list returns the leaf keys directly under prefix.
func (l *ConsulLoader) list(prefix string, opts *api.QueryOptions) (map[string]string, error) {
	pairs, _, err := l.kv.List(prefix, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", prefix, err)
	}

	result := make(map[string]string, len(pairs))
	for _, kv := range pairs {
		key := strings.TrimPrefix(kv.Key, prefix+"/")
		if key == "" || strings.Contains(key, "/") {
			continue
		}
		result[key] = strings.TrimSpace(string(kv.Value))
	}
	return result, nil
}

// GetKV retrieves a single value relative to the prefix.
func (l *ConsulLoader) GetKV(ctx context.Context, key string) (string, error) {
	fullKey := path.Join(l.kvPrefix, key)
	pair, _, err := l.kv.Get(fullKey, (&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to get key %s: %w", fullKey, err)
	}
	if pair == nil {
		return "", fmt.Errorf("key %s not found", fullKey)
	}
	return string(pair.Value), nil
}

// lastIndex blocks until the KV prefix changes past waitIndex or wait elapses,
// then returns the current modify index.
func (l *ConsulLoader) lastIndex(ctx context.Context, waitIndex uint64, wait time.Duration) (uint64, error) {
	opts := (&api.QueryOptions{WaitIndex: waitIndex, WaitTime: wait}).WithContext(ctx)
	_, meta, err := l.kv.List(l.kvPrefix, opts)
	if err != nil {
		return 0, fmt.Errorf("failed to list %s: %w", l.kvPrefix, err)
	}
	if meta == nil {
		return waitIndex, nil
	}
	return meta.LastIndex, nil
}

func setString(dst *string, values map[string]string, key string) {
	if v, ok := values[key]; ok {
		*dst = v
	}
}
