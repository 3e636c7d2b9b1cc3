// Package config loads ghostguess settings from defaults, an optional
// config file, GHOSTGUESS_* environment variables and command flags, in
// increasing order of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/trknhr/ghostguess/internal/match"
	"github.com/trknhr/ghostguess/internal/pattern"
	"github.com/trknhr/ghostguess/internal/search"
)

const EnvPrefix = "GHOSTGUESS"

type Config struct {
	Model  ModelConfig  `mapstructure:"model"`
	Search SearchConfig `mapstructure:"search"`
	Store  StoreConfig  `mapstructure:"store"`
	Log    LogConfig    `mapstructure:"log"`
}

type ModelConfig struct {
	Orders            int     `mapstructure:"orders"`
	Source            string  `mapstructure:"source"`
	Path              string  `mapstructure:"path"`
	MinOrder          int     `mapstructure:"min_order"`
	BranchBase        int     `mapstructure:"branch_base"`
	CutoffMass        float64 `mapstructure:"cutoff_mass"`
	SignificantOrders int     `mapstructure:"significant_orders"`
	DropSingletons    bool    `mapstructure:"drop_singletons"`
}

type SearchConfig struct {
	// Mode is empty to pick best-first for one thread and parallel otherwise.
	Mode          string        `mapstructure:"mode"`
	MaxLen        int           `mapstructure:"max_len"`
	FastSmoothing float64       `mapstructure:"fast_smoothing"`
	SlowSmoothing float64       `mapstructure:"slow_smoothing"`
	Exhaustive    bool          `mapstructure:"exhaustive"`
	Threads       int           `mapstructure:"threads"`
	BatchSize     int           `mapstructure:"batch_size"`
	IdleTimeout   time.Duration `mapstructure:"idle_timeout"`
	MetricsFile   string        `mapstructure:"metrics_file"`
}

type StoreConfig struct {
	Path    string `mapstructure:"path"`
	Disable bool   `mapstructure:"disable"`
}

type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// New returns a viper instance with every default set and environment
// lookup enabled. Keys are dotted, e.g. "search.threads" is read from
// GHOSTGUESS_SEARCH_THREADS.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func SetDefaults(v *viper.Viper) {
	pc := pattern.DefaultConfig()
	so := search.DefaultOptions()

	v.SetDefault("model.orders", 5)
	v.SetDefault("model.source", pattern.SourceEncoding.String())
	v.SetDefault("model.path", "pattern_tree_encoding.txt")
	v.SetDefault("model.min_order", pc.MinOrder)
	v.SetDefault("model.branch_base", pc.BranchBase)
	v.SetDefault("model.cutoff_mass", pc.CutoffMass)
	v.SetDefault("model.significant_orders", pc.SignificantOrders)
	v.SetDefault("model.drop_singletons", pc.DropSingletons)

	v.SetDefault("search.mode", "")
	v.SetDefault("search.max_len", 0)
	v.SetDefault("search.fast_smoothing", so.FastSmoothing)
	v.SetDefault("search.slow_smoothing", so.SlowSmoothing)
	v.SetDefault("search.exhaustive", false)
	v.SetDefault("search.threads", 1)
	v.SetDefault("search.batch_size", so.BatchSize)
	v.SetDefault("search.idle_timeout", so.IdleTimeout)
	v.SetDefault("search.metrics_file", "")

	v.SetDefault("store.path", DefaultStorePath())
	v.SetDefault("store.disable", false)

	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "INFO")
}

// DefaultStorePath is ghostguess.db under the user cache directory, or in
// the working directory if there is none.
func DefaultStorePath() string {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "ghostguess.db"
	}
	return filepath.Join(cacheDir, "ghostguess", "ghostguess.db")
}

// Load reads file into v when it is not empty and decodes the result.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read configuration file %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Model.Orders < 1 {
		return fmt.Errorf("model.orders must be positive, got %d", c.Model.Orders)
	}
	if _, err := pattern.ParseSourceKind(c.Model.Source); err != nil {
		return err
	}
	if err := c.PatternConfig().Validate(c.Model.Orders); err != nil {
		return fmt.Errorf("model: %w", err)
	}
	if c.Search.Mode != "" {
		if _, err := search.ParseMode(c.Search.Mode); err != nil {
			return err
		}
	}
	if c.Search.MaxLen < 0 {
		return fmt.Errorf("search.max_len must not be negative, got %d", c.Search.MaxLen)
	}
	if c.Search.Threads < 0 {
		return fmt.Errorf("search.threads must not be negative, got %d", c.Search.Threads)
	}
	if c.Search.IdleTimeout < 0 {
		return fmt.Errorf("search.idle_timeout must not be negative, got %v", c.Search.IdleTimeout)
	}
	return nil
}

func (c *Config) PatternConfig() pattern.Config {
	return pattern.Config{
		MinOrder:          c.Model.MinOrder,
		BranchBase:        c.Model.BranchBase,
		CutoffMass:        c.Model.CutoffMass,
		SignificantOrders: c.Model.SignificantOrders,
		DropSingletons:    c.Model.DropSingletons,
	}
}

// Source is the model source named by model.source and model.path. The
// path is made absolute so that it names the same cache entry from any
// working directory.
func (c *Config) Source() (pattern.Source, error) {
	kind, err := pattern.ParseSourceKind(c.Model.Source)
	if err != nil {
		return pattern.Source{}, err
	}
	path, err := filepath.Abs(c.Model.Path)
	if err != nil {
		return pattern.Source{}, fmt.Errorf("failed to resolve %s: %w", c.Model.Path, err)
	}
	return pattern.Source{Kind: kind, Path: path}, nil
}

// Threads resolves a zero thread count to the number of CPUs.
func (c *Config) Threads() int {
	if c.Search.Threads == 0 {
		return runtime.NumCPU()
	}
	return c.Search.Threads
}

func (c *Config) SearchMode() search.Mode {
	if c.Search.Mode != "" {
		return search.Mode(c.Search.Mode)
	}
	if c.Threads() == 1 {
		return search.ModeBestFirst
	}
	return search.ModeParallel
}

// SearchOptions builds the options for a search against target. A plaintext
// target's length is used when search.max_len is zero.
func (c *Config) SearchOptions(target match.Target) (search.Options, error) {
	maxLen := c.Search.MaxLen
	if maxLen == 0 {
		maxLen = target.Length
	}
	if maxLen == 0 {
		return search.Options{}, fmt.Errorf("a %s target needs an explicit max length", target.Kind)
	}

	opts := search.DefaultOptions()
	opts.Mode = c.SearchMode()
	opts.MaxLen = maxLen
	opts.Matcher = target.Matcher
	opts.FastSmoothing = c.Search.FastSmoothing
	opts.SlowSmoothing = c.Search.SlowSmoothing
	opts.Exhaustive = c.Search.Exhaustive
	opts.Threads = c.Threads()
	opts.BatchSize = c.Search.BatchSize
	opts.IdleTimeout = c.Search.IdleTimeout
	return opts, nil
}
