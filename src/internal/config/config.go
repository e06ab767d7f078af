package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/gobwas/glob"
	"go.uber.org/zap/zapcore"
)

type GeneratorConfig struct {
	ChainID        int64  `yaml:"chain_id"`
	Owner          string `yaml:"owner"`
	URL            string `yaml:"url"`
	OutputDir      string `yaml:"output_dir"`
	StripLibraries bool   `yaml:"strip_libraries"`
}

type CheckerConfig struct {
	Strict     bool          `yaml:"strict"`
	RPCURL     string        `yaml:"rpc_url"`
	RPCTimeout time.Duration `yaml:"rpc_timeout"`
	Proxy      string        `yaml:"proxy"`
	ReportDir  string        `yaml:"report_dir"`
}

type RegistryConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

type BatchConfig struct {
	Concurrency int    `yaml:"concurrency"`
	Include     string `yaml:"include"`
}

type AppConfig struct {
	Generator GeneratorConfig `yaml:"generator"`
	Checker   CheckerConfig   `yaml:"checker"`
	Registry  RegistryConfig  `yaml:"registry"`
	Log       LogConfig       `yaml:"log"`
	Batch     BatchConfig     `yaml:"batch"`
}

var SupportedDrivers = []string{"sqlite", "postgres", "mysql"}

// Default returns the built-in settings. settings.example.yaml documents the
// same values.
func Default() *AppConfig {
	return &AppConfig{
		Generator: GeneratorConfig{
			ChainID:   1,
			OutputDir: ".",
		},
		Checker: CheckerConfig{
			RPCTimeout: 15 * time.Second,
		},
		Registry: RegistryConfig{
			Driver: "sqlite",
		},
		Log: LogConfig{
			Level: "info",
		},
		Batch: BatchConfig{
			Concurrency: 4,
			Include:     "**.sol",
		},
	}
}

func (c *AppConfig) Validate() error {
	if err := ValidateChainID(c.Generator.ChainID); err != nil {
		return err
	}
	if !isSupportedDriver(c.Registry.Driver) {
		return fmt.Errorf("unsupported registry driver: %s, supported drivers: %v", c.Registry.Driver, SupportedDrivers)
	}
	if c.Batch.Concurrency <= 0 {
		return errors.New("batch.concurrency must be at least 1")
	}
	if _, err := glob.Compile(c.Batch.Include, '/'); err != nil {
		return fmt.Errorf("invalid batch.include pattern %q: %w", c.Batch.Include, err)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log.level: %w", err)
	}
	if c.Checker.RPCTimeout < 0 {
		return errors.New("checker.rpc_timeout must not be negative")
	}
	return nil
}

// ValidateChainID rejects zero and negative chain ids.
func ValidateChainID(id int64) error {
	if id <= 0 {
		return fmt.Errorf("generator.chain_id must be positive, got %d", id)
	}
	return nil
}

func isSupportedDriver(driver string) bool {
	for _, d := range SupportedDrivers {
		if d == driver {
			return true
		}
	}
	return false
}
