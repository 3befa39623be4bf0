package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/masteryrank/internal/apperr"
	"github.com/abhisek/masteryrank/internal/knowledge"
	"github.com/abhisek/masteryrank/internal/recommend"
)

// Environment variables recognised by Load.
const (
	EnvConfig      = "MASTERYRANK_CONFIG"
	EnvDB          = "MASTERYRANK_DB"
	EnvLogMode     = "MASTERYRANK_LOG_MODE"
	EnvTopN        = "MASTERYRANK_TOP_N"
	EnvDiversity   = "MASTERYRANK_DIVERSITY"
	EnvHorizonDays = "MASTERYRANK_HORIZON_DAYS"
)

// Config holds everything a command needs to build an engine.
type Config struct {
	// DB is the SQLite path. Empty means the default data directory.
	DB string `yaml:"db"`

	// LogMode is "dev", "prod" or "quiet".
	LogMode string `yaml:"log_mode"`

	Knowledge knowledge.Params `yaml:"knowledge"`
	Ranker    recommend.Config `yaml:"ranker"`

	// TopN and Diversity are the recommend defaults when flags are unset.
	TopN      int     `yaml:"top_n"`
	Diversity float64 `yaml:"diversity"`

	// SnapshotKeep is how many tracker snapshots survive a prune.
	SnapshotKeep int `yaml:"snapshot_keep"`

	// Prerequisites maps a skill id to the skills it builds on.
	Prerequisites map[string][]string `yaml:"prerequisites"`
}

// Default returns a Config with the standard tuning.
func Default() Config {
	return Config{
		LogMode:      "quiet",
		Knowledge:    knowledge.DefaultParams(),
		Ranker:       recommend.DefaultConfig(),
		TopN:         10,
		Diversity:    0.3,
		SnapshotKeep: 5,
	}
}

// Load builds a Config from defaults, an optional YAML file, a .env file in
// the working directory and MASTERYRANK_* environment variables, in that
// order of increasing precedence. An empty path falls back to
// MASTERYRANK_CONFIG and then to the user config directory; a missing
// default file is not an error.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvConfig)
		explicit = path != ""
	}
	if !explicit {
		path = defaultConfigPath()
	}
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return Config{}, err
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvDB); v != "" {
		c.DB = v
	}
	if v := os.Getenv(EnvLogMode); v != "" {
		c.LogMode = v
	}
	if v := os.Getenv(EnvTopN); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s=%q: %w", EnvTopN, v, err)
		}
		c.TopN = n
	}
	if v := os.Getenv(EnvDiversity); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s=%q: %w", EnvDiversity, v, err)
		}
		c.Diversity = f
	}
	if v := os.Getenv(EnvHorizonDays); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s=%q: %w", EnvHorizonDays, v, err)
		}
		c.Knowledge.Horizon = time.Duration(f * float64(24*time.Hour))
	}
	return nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Knowledge.Validate(); err != nil {
		return fmt.Errorf("knowledge: %w", err)
	}
	if err := c.Ranker.Validate(); err != nil {
		return fmt.Errorf("ranker: %w", err)
	}
	if c.TopN <= 0 {
		return apperr.Invalid("top_n", "must be positive, got %d", c.TopN)
	}
	if math.IsNaN(c.Diversity) || c.Diversity < 0 || c.Diversity > 1 {
		return apperr.Invalid("diversity", "must be in [0,1], got %v", c.Diversity)
	}
	if c.SnapshotKeep <= 0 {
		return apperr.Invalid("snapshot_keep", "must be positive, got %d", c.SnapshotKeep)
	}
	return nil
}

// defaultConfigPath returns $XDG_CONFIG_HOME/masteryrank/config.yaml,
// or "" when no config directory can be determined.
func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "masteryrank", "config.yaml")
}
