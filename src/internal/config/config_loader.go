package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const EnvPrefix = "CLEARSIGN"

// Load builds the configuration with the following priority (highest first):
// environment variables (CLEARSIGN_*), the settings file, built-in defaults.
// path selects the settings file; when empty the usual locations are searched
// and a missing file is not an error.
func Load(path string) (*AppConfig, error) {
	cfg := Default()

	if path == "" {
		path = findConfigFile()
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

type envBinding struct {
	key   string
	apply func(v *viper.Viper, key string, c *AppConfig)
}

var envBindings = []envBinding{
	{"generator.chain_id", func(v *viper.Viper, k string, c *AppConfig) { c.Generator.ChainID = v.GetInt64(k) }},
	{"generator.owner", func(v *viper.Viper, k string, c *AppConfig) { c.Generator.Owner = v.GetString(k) }},
	{"generator.url", func(v *viper.Viper, k string, c *AppConfig) { c.Generator.URL = v.GetString(k) }},
	{"generator.output_dir", func(v *viper.Viper, k string, c *AppConfig) { c.Generator.OutputDir = v.GetString(k) }},
	{"generator.strip_libraries", func(v *viper.Viper, k string, c *AppConfig) { c.Generator.StripLibraries = v.GetBool(k) }},
	{"checker.strict", func(v *viper.Viper, k string, c *AppConfig) { c.Checker.Strict = v.GetBool(k) }},
	{"checker.rpc_url", func(v *viper.Viper, k string, c *AppConfig) { c.Checker.RPCURL = v.GetString(k) }},
	{"checker.rpc_timeout", func(v *viper.Viper, k string, c *AppConfig) { c.Checker.RPCTimeout = v.GetDuration(k) }},
	{"checker.proxy", func(v *viper.Viper, k string, c *AppConfig) { c.Checker.Proxy = v.GetString(k) }},
	{"checker.report_dir", func(v *viper.Viper, k string, c *AppConfig) { c.Checker.ReportDir = v.GetString(k) }},
	{"registry.driver", func(v *viper.Viper, k string, c *AppConfig) { c.Registry.Driver = v.GetString(k) }},
	{"registry.dsn", func(v *viper.Viper, k string, c *AppConfig) { c.Registry.DSN = v.GetString(k) }},
	{"log.level", func(v *viper.Viper, k string, c *AppConfig) { c.Log.Level = v.GetString(k) }},
	{"log.dir", func(v *viper.Viper, k string, c *AppConfig) { c.Log.Dir = v.GetString(k) }},
	{"batch.concurrency", func(v *viper.Viper, k string, c *AppConfig) { c.Batch.Concurrency = v.GetInt(k) }},
	{"batch.include", func(v *viper.Viper, k string, c *AppConfig) { c.Batch.Include = v.GetString(k) }},
}

// applyEnv overrides cfg with any CLEARSIGN_<SECTION>_<KEY> variables that
// are set, e.g. CLEARSIGN_REGISTRY_DSN.
func applyEnv(cfg *AppConfig) error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, b := range envBindings {
		if err := v.BindEnv(b.key); err != nil {
			return fmt.Errorf("bind env %s: %w", b.key, err)
		}
		if v.IsSet(b.key) {
			b.apply(v, b.key, cfg)
		}
	}
	return nil
}

func findConfigFile() string {
	possiblePaths := []string{
		"config/settings.yaml",
		"settings.yaml",
	}
	if home, err := os.UserHomeDir(); err == nil {
		possiblePaths = append(possiblePaths, filepath.Join(home, ".clearsign", "settings.yaml"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// GetConfigPath returns the settings file Load would use, or "".
func GetConfigPath() string {
	return findConfigFile()
}
