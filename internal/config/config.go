package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"

	"github.com/jakechorley/supply-board/pkg/core/calendar"
)

// Sources names the CSV files a board is generated from
type Sources struct {
	Suppliers         string `yaml:"suppliers" validate:"required"`
	Demand            string `yaml:"demand" validate:"required"`
	SupplierDistances string `yaml:"supplierDistances,omitempty"`
	StopDistances     string `yaml:"stopDistances,omitempty"`
}

// Sheets names the spreadsheet tabs a board is generated from
type Sheets struct {
	SpreadsheetID        string  `yaml:"spreadsheetID" validate:"required"`
	SuppliersTab         string  `yaml:"suppliersTab" validate:"required"`
	DemandTab            string  `yaml:"demandTab" validate:"required"`
	SupplierDistancesTab string  `yaml:"supplierDistancesTab,omitempty"`
	StopDistancesTab     string  `yaml:"stopDistancesTab,omitempty"`
	RequestsPerSecond    float64 `yaml:"requestsPerSecond,omitempty" validate:"omitempty,gt=0"`
	OAuthClientPath      string  `yaml:"oauthClientPath,omitempty"`
}

// CapacityRule overrides a supplier's capacity on the weeks matched by an RRULE
type CapacityRule struct {
	Supplier string `yaml:"supplier,omitempty"`
	RRule    string `yaml:"rrule" validate:"required"`
	Capacity int    `yaml:"capacity" validate:"gte=0"`
	Anchor   string `yaml:"anchor,omitempty"`
}

// Board sets the lane packing geometry
type Board struct {
	WeekWidth    float64 `yaml:"weekWidth,omitempty" validate:"gte=0"`
	UnitHeight   float64 `yaml:"unitHeight,omitempty" validate:"gte=0"`
	PackPasses   int     `yaml:"packPasses,omitempty" validate:"omitempty,min=1,max=5"`
	ExtendBefore int     `yaml:"extendBefore,omitempty" validate:"gte=0"`
	ExtendAfter  int     `yaml:"extendAfter,omitempty" validate:"gte=0"`
}

// Transport sets the route cost model. Costs are decimal strings, e.g. "0.85".
type Transport struct {
	CostPerKm     string `yaml:"costPerKm,omitempty"`
	CostPerMinute string `yaml:"costPerMinute,omitempty"`
	MaxStops      int    `yaml:"maxStops,omitempty" validate:"omitempty,min=1,max=9"`
}

// Database selects where plans are stored
type Database struct {
	Driver string `yaml:"driver" validate:"required,oneof=postgres sqlite"`
	DSN    string `yaml:"dsn" validate:"required"`
}

// Config represents the application configuration
type Config struct {
	Sources       *Sources       `yaml:"sources,omitempty"`
	Sheets        *Sheets        `yaml:"sheets,omitempty"`
	Variants      map[string]int `yaml:"variants,omitempty" validate:"dive,keys,oneof=F M,endkeys,min=1"`
	CapacityRules []CapacityRule `yaml:"capacityRules,omitempty" validate:"dive"`
	Board         Board          `yaml:"board,omitempty"`
	Transport     Transport      `yaml:"transport,omitempty"`
	Database      Database       `yaml:"database"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// LoadWithEnv loads and validates the configuration for an environment.
// For example, env="test" looks for supply_board_config.test.yaml in the current
// directory first, then in the user's home directory.
func LoadWithEnv(env string) (*Config, error) {
	fileName := "supply_board_config.yaml"
	if env != "" {
		fileName = "supply_board_config." + env + ".yaml"
	}

	configPath, err := findFile(fileName)
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

	return &cfg, nil
}

// Validate validates the configuration struct, rrule syntax and cost amounts
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.Sources == nil && cfg.Sheets == nil {
		return fmt.Errorf("config validation failed: one of sources or sheets is required")
	}

	for i, rule := range cfg.CapacityRules {
		if _, err := rrule.StrToRRule(rule.RRule); err != nil {
			return fmt.Errorf("invalid rrule in capacityRules[%d]: %w", i, err)
		}
		if rule.Anchor != "" {
			if _, err := calendar.Parse(rule.Anchor); err != nil {
				return fmt.Errorf("invalid anchor in capacityRules[%d]: %w", i, err)
			}
		}
	}

	for field, value := range map[string]string{
		"costPerKm":     cfg.Transport.CostPerKm,
		"costPerMinute": cfg.Transport.CostPerMinute,
	} {
		if value == "" {
			continue
		}
		amount, err := decimal.NewFromString(value)
		if err != nil {
			return fmt.Errorf("invalid transport.%s %q: %w", field, value, err)
		}
		if amount.IsNegative() {
			return fmt.Errorf("invalid transport.%s %q: must not be negative", field, value)
		}
	}

	return nil
}

// findFile searches for fileName in the current directory and the home directory
func findFile(fileName string) (string, error) {
	if _, err := os.Stat(fileName); err == nil {
		return fileName, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homePath := filepath.Join(homeDir, fileName)
	if _, err := os.Stat(homePath); err == nil {
		return homePath, nil
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", fileName)
}
