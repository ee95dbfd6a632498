package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"
)

// FileName is the default configuration file.
const FileName = "tally.yaml"

// EnvPrefix marks environment variables that override the file, e.g.
// TALLY_DATA_FILE.
const EnvPrefix = "TALLY_"

// Config represents tally.yaml.
type Config struct {
	DataFile  string    `yaml:"data_file"`
	ExportDir string    `yaml:"export_dir,omitempty"`
	BackupDir string    `yaml:"backup_dir,omitempty"` // empty = next to the data file
	Currency  string    `yaml:"currency"`
	Log       LogConfig `yaml:"log"`
}

// LogConfig controls diagnostic output.
type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Load reads a tally.yaml file from disk on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		DataFile: "expenses.txt",
		Currency: "$",
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Resolve builds the effective configuration: defaults, then the file at
// path if it exists, then TALLY_* environment variables.
func Resolve(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg, err = Default(), nil
	}
	if err != nil {
		return nil, err
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays TALLY_* variables. Keys are lower-cased with the prefix
// removed and "__" mapping to nesting, so TALLY_LOG__LEVEL sets log.level.
func applyEnv(cfg *Config) error {
	k := koanf.New(".")
	cb := func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", cb), nil); err != nil {
		return fmt.Errorf("loading config from environment: %w", err)
	}

	if k.Exists("data_file") {
		cfg.DataFile = k.String("data_file")
	}
	if k.Exists("export_dir") {
		cfg.ExportDir = k.String("export_dir")
	}
	if k.Exists("backup_dir") {
		cfg.BackupDir = k.String("backup_dir")
	}
	if k.Exists("currency") {
		cfg.Currency = k.String("currency")
	}
	if k.Exists("log.level") {
		cfg.Log.Level = k.String("log.level")
	}
	if k.Exists("log.json") {
		cfg.Log.JSON = k.Bool("log.json")
	}
	return nil
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.DataFile) == "" {
		problems = append(problems, "data_file must not be empty")
	}
	if strings.Contains(c.Currency, "\n") {
		problems = append(problems, "currency must be a single line")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}
