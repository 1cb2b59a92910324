package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"backendrouter/pkg/logger"
	"backendrouter/pkg/resolver"
)

// Config represents the root configuration structure
type Config struct {
	Server    ServerConfig      `yaml:"server"`
	LogLevel  string            `yaml:"log_level"`
	Backends  []BackendConfig   `yaml:"backends"`
	Names     resolver.Tables   `yaml:"names"`
	Acceptors map[string]string `yaml:"acceptors"`
}

// ServerConfig configures the HTTP server
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// BackendConfig declares one backend of the inventory. Status is either
// fixed (Status) or fetched live from StatusURL on every query.
type BackendConfig struct {
	Name          string         `yaml:"name"`
	Configuration map[string]any `yaml:"configuration"`
	Status        map[string]any `yaml:"status"`
	StatusURL     string         `yaml:"status_url"`
	StatusTimeout time.Duration  `yaml:"status_timeout"`
}

const DefaultConfigTemplate = `server:
  port: 8080
  host: "127.0.0.1"
log_level: info
backends:
  - name: qasm_simulator
    configuration:
      n_qubits: 32
      simulator: true
      local: true
    status:
      operational: true
      pending_jobs: 0
  - name: ibmq_5_tenerife
    configuration:
      n_qubits: 5
      simulator: false
      local: false
    status_url: "https://your-status-domain.com/backends/ibmq_5_tenerife/status.json"
    status_timeout: 10s
names:
  deprecated:
    ibmqx4: ibmq_5_tenerife
  aliased:
    local_qasm_simulator:
      - qasm_simulator_cpp
      - qasm_simulator
  alternatives:
    qasm_simulator_cpp: qasm_simulator
acceptors:
  real_devices: "simulator == false"
`

// Path returns BACKENDROUTER_CONFIG_PATH or ~/.config/backendrouter/config.yaml.
func Path() (string, error) {
	if p := os.Getenv("BACKENDROUTER_CONFIG_PATH"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".config", "backendrouter", "config.yaml"), nil
}

// LoadLocalConfig loads configuration from the default Path.
// If the configuration file doesn't exist, it creates a template for the user.
func LoadLocalConfig() (*Config, error) {
	configPath, err := Path()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		logger.Printf("Config file missing at %s, creating default template...", configPath)
		if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}
		if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate), 0644); err != nil {
			return nil, fmt.Errorf("failed to write default config template: %w", err)
		}
		return nil, fmt.Errorf("generated default config at %s. Please update it and restart", configPath)
	}

	return Load(configPath)
}

// Load reads and validates the configuration at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes and validates YAML configuration.
func Parse(data []byte) (*Config, error) {
	var conf Config
	if err := yaml.Unmarshal(data, &conf); err != nil {
		return nil, fmt.Errorf("failed to parse yaml config: %w", err)
	}
	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &conf, nil
}

// Validate reports every problem found, not just the first.
func (c *Config) Validate() error {
	var errs []error
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	seen := make(map[string]bool, len(c.Backends))
	for i, b := range c.Backends {
		switch {
		case b.Name == "":
			errs = append(errs, fmt.Errorf("backends[%d]: name is required", i))
		case seen[b.Name]:
			errs = append(errs, fmt.Errorf("backends[%d]: duplicate name %q", i, b.Name))
		}
		seen[b.Name] = true
		if b.StatusURL != "" && b.Status != nil {
			errs = append(errs, fmt.Errorf("backends[%d]: status and status_url are mutually exclusive", i))
		}
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	return errors.Join(errs...)
}
