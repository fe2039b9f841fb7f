package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"
)

// ServicePackageRule configures matching behavior for one service
// package. Packages with filterHouseholds set require the adviser's
// household preferences to cover the deal's household type.
type ServicePackageRule struct {
	Name             string `yaml:"name" validate:"required"`
	FilterHouseholds bool   `yaml:"filterHouseholds,omitempty"`
}

// Config represents the application configuration
type Config struct {
	DatabaseURL           string               `yaml:"databaseURL" validate:"required"`
	LeaveCalendarID       string               `yaml:"leaveCalendarID" validate:"required"`
	OOOKeyword            string               `yaml:"oooKeyword,omitempty"`
	CRMBaseURL            string               `yaml:"crmBaseURL" validate:"required,url"`
	HorizonWeeks          int                  `yaml:"horizonWeeks,omitempty" validate:"omitempty,min=4"`
	MaxConcurrentAdvisers int                  `yaml:"maxConcurrentAdvisers,omitempty" validate:"omitempty,min=1"`
	OfficeClosureRules    []string             `yaml:"officeClosureRules,omitempty"`
	ServicePackages       []ServicePackageRule `yaml:"servicePackages" validate:"required,min=1,dive"`
}

// Defaults applied by Load when the file leaves fields unset.
const (
	DefaultOOOKeyword            = "OOO"
	DefaultHorizonWeeks          = 26
	DefaultMaxConcurrentAdvisers = 8
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// LoadWithEnv loads and validates the configuration with an environment
// suffix. For example, env="test" looks for "allocator_config.test.yaml".
func LoadWithEnv(env string) (*Config, error) {
	configPath, err := findConfigFile(env)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// Validate validates the configuration struct and checks closure rule syntax
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	// Validate rrule syntax for each office closure rule
	for i, rule := range cfg.OfficeClosureRules {
		if _, err := rrule.StrToRRule(rule); err != nil {
			return fmt.Errorf("invalid rrule in officeClosureRules[%d]: %w", i, err)
		}
	}

	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.OOOKeyword == "" {
		cfg.OOOKeyword = DefaultOOOKeyword
	}
	if cfg.HorizonWeeks == 0 {
		cfg.HorizonWeeks = DefaultHorizonWeeks
	}
	if cfg.MaxConcurrentAdvisers == 0 {
		cfg.MaxConcurrentAdvisers = DefaultMaxConcurrentAdvisers
	}
}

// findConfigFile searches for the config file in the current directory
// and the user's home directory. If env is provided it is added as an
// extension (e.g. "allocator_config.test.yaml").
func findConfigFile(env string) (string, error) {
	configFileName := "allocator_config.yaml"
	if env != "" {
		configFileName = "allocator_config." + env + ".yaml"
	}

	// Check current directory
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file not found in current directory or home directory")
}
