// Package launcher starts and supervises the application's microservices:
// it spawns each service process, blocks until its health endpoint reports
// ready, and forwards termination signals on shutdown.
package launcher

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ServiceSpec describes one supervised service process.
type ServiceSpec struct {
	// Name identifies the service in logs and errors.
	Name string `yaml:"name"`

	// Command is the executable to spawn.
	Command string `yaml:"command"`

	// Args are passed to the command.
	Args []string `yaml:"args,omitempty"`

	// Dir is the working directory. Empty inherits the launcher's.
	Dir string `yaml:"dir,omitempty"`

	// Env entries ("KEY=value") are appended to the inherited environment.
	Env []string `yaml:"env,omitempty"`

	// HealthURL is polled until the service reports ready. Empty skips the
	// readiness wait.
	HealthURL string `yaml:"health_url,omitempty"`

	// StartupTimeoutAttempts bounds health poll attempts. Defaults to 30.
	StartupTimeoutAttempts int `yaml:"startup_timeout_attempts,omitempty"`

	// PollInterval is the fixed sleep between health polls. Defaults to 1s.
	PollInterval time.Duration `yaml:"poll_interval,omitempty"`
}

// Config is the multi-service launch plan, usually loaded from services.yaml.
type Config struct {
	Services []ServiceSpec `yaml:"services"`
}

// LoadConfig reads and validates a YAML launch plan.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if len(cfg.Services) == 0 {
		return nil, fmt.Errorf("config %s declares no services", path)
	}
	seen := make(map[string]bool, len(cfg.Services))
	for i, svc := range cfg.Services {
		if svc.Name == "" {
			return nil, fmt.Errorf("service %d missing name", i)
		}
		if svc.Command == "" {
			return nil, fmt.Errorf("service %s missing command", svc.Name)
		}
		if seen[svc.Name] {
			return nil, fmt.Errorf("duplicate service name %s", svc.Name)
		}
		seen[svc.Name] = true
	}

	return &cfg, nil
}
