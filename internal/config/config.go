package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Service   ServiceConfig   `yaml:"service" validate:"required"`
	Database  DatabaseConfig  `yaml:"database" validate:"required"`
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Billing   BillingConfig   `yaml:"billing" validate:"required"`
	Inicis    InicisConfig    `yaml:"inicis" validate:"required"`
	Email     EmailConfig     `yaml:"email"`
	Redis     RedisConfig     `yaml:"redis"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

func LoadConfig() (*Config, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/billing.yaml"
	}

	// Ensure absolute path
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	c.Billing.applyDefaults()
	c.Scheduler.applyDefaults()
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Server.HTTP.Port == 0 {
		c.Server.HTTP.Port = 8083
	}
}

// Validate checks the configuration at startup so misconfiguration fails
// the process instead of surfacing mid-pass.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if _, err := c.Billing.PlanTable(); err != nil {
		return fmt.Errorf("invalid plan price table: %w", err)
	}

	if c.Billing.PeriodMonths == 0 && c.Billing.Period == 0 {
		return fmt.Errorf("invalid configuration: billing period not set")
	}

	if c.Email.Enabled {
		if c.Email.ServiceID == "" || c.Email.TemplateID == "" || c.Email.UserID == "" {
			return fmt.Errorf("invalid configuration: email enabled but EmailJS ids missing")
		}
	}

	return nil
}
