package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no config file is named.
const DefaultPath = "typegen.yaml"

type Config struct {
	// Paths drive a full run without command line arguments.
	Paths struct {
		Base      string   `yaml:"base"`
		Types     string   `yaml:"types"`
		Data      string   `yaml:"data"`
		Templates string   `yaml:"templates"`
		Extra     []string `yaml:"extra"`
	} `yaml:"paths"`
	Parser struct {
		Backend string `yaml:"backend" validate:"oneof=native treesitter"`
	} `yaml:"parser"`
	Output struct {
		Format string `yaml:"format" validate:"oneof=json yaml"`
		// Report is where a json run report is written; empty disables it.
		Report string `yaml:"report"`
	} `yaml:"output"`
	Store struct {
		// Path of the sqlite spec store; empty disables it.
		Path string `yaml:"path"`
	} `yaml:"store"`
	Crawler struct {
		Exclude []string `yaml:"exclude"`
	} `yaml:"crawler"`
	Jobs       int    `yaml:"jobs" validate:"gte=1,lte=256"`
	NoBuiltins bool   `yaml:"no_builtins"`
	LogLevel   string `yaml:"log_level" validate:"oneof=debug info warn error"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	cfg := &Config{
		Jobs:     runtime.NumCPU(),
		LogLevel: "info",
	}
	cfg.Parser.Backend = "native"
	cfg.Output.Format = "json"
	cfg.Paths.Types = "build/types"
	cfg.Paths.Data = "data/types"
	cfg.Paths.Templates = "content/docs/types"
	return cfg
}

// LoadConfig layers .env, the YAML file at path and TYPEGEN_* environment
// variables over the defaults. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	file, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("TYPEGEN_PARSER"); v != "" {
		c.Parser.Backend = v
	}
	if v := os.Getenv("TYPEGEN_FORMAT"); v != "" {
		c.Output.Format = v
	}
	if v := os.Getenv("TYPEGEN_REPORT"); v != "" {
		c.Output.Report = v
	}
	if v := os.Getenv("TYPEGEN_DB"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("TYPEGEN_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("TYPEGEN_EXCLUDE"); v != "" {
		c.Crawler.Exclude = strings.Split(v, ",")
	}
	if v := os.Getenv("TYPEGEN_JOBS"); v != "" {
		jobs, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid TYPEGEN_JOBS %q: %w", v, err)
		}
		c.Jobs = jobs
	}
	if v := os.Getenv("TYPEGEN_NO_BUILTINS"); v != "" {
		noBuiltins, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid TYPEGEN_NO_BUILTINS %q: %w", v, err)
		}
		c.NoBuiltins = noBuiltins
	}
	return nil
}

// Validate checks field constraints. Flags applied after loading should be
// checked again with it.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// SlogLevel maps LogLevel onto a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
