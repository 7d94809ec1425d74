// Package consul announces the HTTP API to a Consul agent.
package consul

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/consul/api"

	"github.com/listen-stream/music-svc/pkg/config"
	"github.com/listen-stream/music-svc/pkg/logger"
)

// Agent is the part of the Consul agent API used for registration.
type Agent interface {
	ServiceRegister(reg *api.AgentServiceRegistration) error
	ServiceDeregister(serviceID string) error
}

// Registration describes the instance being announced.
type Registration struct {
	ServiceName string
	Host        string // advertised address; os.Hostname() when empty
	Port        int
	Tags        []string

	CheckPath                      string        // default /health
	CheckInterval                  time.Duration // default 10s
	CheckTimeout                   time.Duration // default 5s
	DeregisterCriticalServiceAfter time.Duration // default 1m
}

// Registry registers one service instance and removes it on shutdown.
type Registry struct {
	agent     Agent
	serviceID string
	log       logger.Logger
}

// NewRegistry builds a registry against the agent described by cfg.
func NewRegistry(cfg *config.ConsulConfig, log logger.Logger) (*Registry, error) {
	client, err := config.NewConsulClient(cfg)
	if err != nil {
		return nil, err
	}
	return NewRegistryWithAgent(client.Agent(), log), nil
}

// NewRegistryWithAgent builds a registry over an existing agent client.
func NewRegistryWithAgent(agent Agent, log logger.Logger) *Registry {
	return &Registry{agent: agent, log: log}
}

// Register announces reg with an HTTP health check against the instance itself.
func (r *Registry) Register(reg Registration) error {
	host := reg.Host
	if host == "" {
		h, err := os.Hostname()
		if err != nil {
			return fmt.Errorf("resolve advertised host: %w", err)
		}
		host = h
	}
	if reg.Port <= 0 {
		return fmt.Errorf("invalid service port %d", reg.Port)
	}

	checkPath := reg.CheckPath
	if checkPath == "" {
		checkPath = "/health"
	}

	serviceID := fmt.Sprintf("%s-%s-%d", reg.ServiceName, host, reg.Port)
	registration := &api.AgentServiceRegistration{
		ID:      serviceID,
		Name:    reg.ServiceName,
		Address: host,
		Port:    reg.Port,
		Tags:    reg.Tags,
		Check: &api.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s:%d%s", host, reg.Port, checkPath),
			Interval:                       orDefault(reg.CheckInterval, 10*time.Second).String(),
			Timeout:                        orDefault(reg.CheckTimeout, 5*time.Second).String(),
			DeregisterCriticalServiceAfter: orDefault(reg.DeregisterCriticalServiceAfter, time.Minute).String(),
		},
	}

	if err := r.agent.ServiceRegister(registration); err != nil {
		return fmt.Errorf("register service: %w", err)
	}
	r.serviceID = serviceID

	r.log.Info("service registered to consul",
		logger.String("service_id", r.serviceID),
		logger.String("address", fmt.Sprintf("%s:%d", host, reg.Port)),
	)
	return nil
}

// Deregister removes the instance. It is a no-op before Register succeeds.
func (r *Registry) Deregister() error {
	if r.serviceID == "" {
		return nil
	}
	if err := r.agent.ServiceDeregister(r.serviceID); err != nil {
		return fmt.Errorf("deregister service: %w", err)
	}
	r.log.Info("service deregistered from consul", logger.String("service_id", r.serviceID))
	r.serviceID = ""
	return nil
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
