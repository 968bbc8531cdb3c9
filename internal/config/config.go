package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"
)

const (
	DefaultMaxWriteRetries = 3
	DefaultHTTPAddr        = ":8080"

	// DatabaseURLEnv fills store.databaseURL when the file leaves it blank
	DatabaseURLEnv = "DATABASE_URL"
)

// Closure is a recurring day the centre is closed, e.g. a public holiday
type Closure struct {
	RRule  string `yaml:"rrule" validate:"required"`
	Reason string `yaml:"reason,omitempty"`
}

// StoreConfig selects the persistence backend
type StoreConfig struct {
	Driver      string `yaml:"driver" validate:"required,oneof=postgres memory"`
	DatabaseURL string `yaml:"databaseURL,omitempty" validate:"required_if=Driver postgres"`
}

// RiderSheetConfig points at the Google Sheet holding rider profiles
type RiderSheetConfig struct {
	SheetID         string `yaml:"sheetID" validate:"required"`
	Tab             string `yaml:"tab" validate:"required"`
	CredentialsFile string `yaml:"credentialsFile" validate:"required"`
}

// Config represents the application configuration
type Config struct {
	Store      StoreConfig       `yaml:"store"`
	RiderSheet *RiderSheetConfig `yaml:"riderSheet,omitempty"`

	// SeatCapacities overrides or extends the built-in Minibus/Taxi capacities
	SeatCapacities   map[string]int `yaml:"seatCapacities,omitempty" validate:"dive,keys,required,endkeys,min=1"`
	AllowOverbooking bool           `yaml:"allowOverbooking,omitempty"`
	MaxWriteRetries  int            `yaml:"maxWriteRetries,omitempty" validate:"min=0,max=20"`

	Closures []Closure `yaml:"closures,omitempty" validate:"dive"`
	HTTPAddr string    `yaml:"httpAddr,omitempty"`
}

// ClosureRules returns the raw rrule strings of every closure
func (c *Config) ClosureRules() []string {
	rules := make([]string, 0, len(c.Closures))
	for _, cl := range c.Closures {
		rules = append(rules, cl.RRule)
	}
	return rules
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// LoadWithEnv loads .env (if present) then transport_config.<env>.yaml.
// It looks for the config file in the current directory first, then in the user's home directory
func LoadWithEnv(env string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	configPath, err := findConfigFile(fmt.Sprintf("transport_config.%s.yaml", env))
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

	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = "memory"
	}
	if cfg.Store.DatabaseURL == "" {
		cfg.Store.DatabaseURL = os.Getenv(DatabaseURLEnv)
	}
	if cfg.MaxWriteRetries == 0 {
		cfg.MaxWriteRetries = DefaultMaxWriteRetries
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = DefaultHTTPAddr
	}
}

// Validate validates the configuration struct and checks rrule syntax
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	for i, closure := range cfg.Closures {
		if _, err := rrule.StrToRRule(closure.RRule); err != nil {
			return fmt.Errorf("invalid rrule in closures[%d]: %w", i, err)
		}
	}

	return nil
}

// findConfigFile searches for the named file in current directory and home directory
func findConfigFile(configFileName string) (string, error) {
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", configFileName)
}
