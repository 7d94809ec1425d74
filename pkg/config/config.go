// Package config provides configuration management for music-svc.
//
// Configuration is resolved in three layers:
//  1. YAML file (configs/config.yaml by default) and LS_* environment variables, via viper
//  2. Optional Consul KV overlay for business settings (signing secret, media credentials)
//  3. Validation of the merged result; the process refuses to start without a signing secret
//
// Example usage:
//
//	cfg, err := config.Load(ctx, "configs/config.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
package config

import (
	"context"
	"fmt"
)

// Load resolves the full configuration.
func Load(ctx context.Context, configFile string) (*Config, error) {
	cfg, err := NewFileLoader(configFile).Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load file config: %w", err)
	}

	if cfg.Infrastructure.Consul.Address != "" {
		loader, err := NewConsulLoader(&cfg.Infrastructure.Consul)
		if err != nil {
			return nil, err
		}
		if err := loader.Overlay(ctx, &cfg.Business); err != nil {
			return nil, fmt.Errorf("failed to load consul config: %w", err)
		}
	}

	if err := NewValidator().ValidateBusiness(&cfg.Business); err != nil {
		return nil, fmt.Errorf("invalid business config: %w", err)
	}

	return cfg, nil
}

// LoadInfrastructure resolves only the file/env layer. Commands that never
// sign credentials (migrate) use it so they can run without a secret.
func LoadInfrastructure(configFile string) (*Config, error) {
	return NewFileLoader(configFile).Load()
}
