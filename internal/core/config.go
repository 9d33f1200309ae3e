package core

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Database struct {
	Type             string `yaml:"type"`
	ConnectionString string `yaml:"connectionString"`
}

// Cache configures the optional dedup fingerprint cache. An empty type
// disables it entirely.
type Cache struct {
	Type     string `yaml:"type"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type Scanner struct {
	// Workers bounds batch parallelism; 0 means one worker per CPU.
	Workers int `yaml:"workers"`
}

type ServiceConfig struct {
	Port     int      `yaml:"port"`
	Database Database `yaml:"database"`
	Cache    Cache    `yaml:"cache"`
	Scanner  Scanner  `yaml:"scanner"`
}

// LoadConfig loads configuration from the specified YAML file
func LoadConfig(configPath string) (*ServiceConfig, error) {
	// Read the config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	// Parse YAML
	var config ServiceConfig
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func validateConfig(config *ServiceConfig) error {
	if config.Port <= 0 || config.Port > 65535 {
		return fmt.Errorf("port %d out of range", config.Port)
	}
	if config.Database.Type == "" {
		return fmt.Errorf("database type must be set")
	}
	if config.Database.ConnectionString == "" {
		return fmt.Errorf("database connection string must be set")
	}
	if config.Cache.Type != "" && config.Cache.Type != "redis" {
		return fmt.Errorf("unsupported cache type: %s", config.Cache.Type)
	}
	if config.Cache.Type == "redis" && config.Cache.Address == "" {
		return fmt.Errorf("cache address must be set for redis cache")
	}
	if config.Scanner.Workers < 0 {
		return fmt.Errorf("scanner workers must not be negative")
	}
	return nil
}
