package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/Dicklesworthstone/procmon/internal/sampler"
	"github.com/Dicklesworthstone/procmon/internal/source"
)

// Config carries runtime options for procmon.
type Config struct {
	Interval        time.Duration `yaml:"interval"`
	Sort            string        `yaml:"sort"`
	Filter          string        `yaml:"filter"`
	Limit           int           `yaml:"limit"`
	JSON            bool          `yaml:"json"`
	Source          string        `yaml:"source"`
	ProcRoot        string        `yaml:"proc_root"`
	OSRelease       string        `yaml:"os_release"`
	Passwd          string        `yaml:"passwd"`
	IncludeChildren bool          `yaml:"include_children"`
	Workers         int           `yaml:"workers"`
	LogFile         string        `yaml:"log_file"`
	LogLevel        string        `yaml:"log_level"`
}

func Default() Config {
	return Config{
		Interval:  time.Second,
		Sort:      "cpu",
		Filter:    "",
		Limit:     0,
		JSON:      false,
		Source:    source.KindAuto,
		ProcRoot:  "/proc",
		OSRelease: "/etc/os-release",
		Passwd:    "",
		Workers:   4,
		LogLevel:  "info",
	}
}

// Bind registers one flag per option on fs, writing into cfg.
func Bind(fs *pflag.FlagSet, cfg *Config) {
	fs.DurationVarP(&cfg.Interval, "interval", "i", cfg.Interval, "refresh interval")
	fs.StringVarP(&cfg.Sort, "sort", "s", cfg.Sort, "sort column: "+strings.Join(sampler.OrderNames(), "|"))
	fs.StringVar(&cfg.Filter, "filter", cfg.Filter, "regex filter for process commands")
	fs.IntVar(&cfg.Limit, "limit", cfg.Limit, "max processes shown (0 = all)")
	fs.BoolVar(&cfg.JSON, "json", cfg.JSON, "output one-shot JSON and exit")
	fs.StringVar(&cfg.Source, "source", cfg.Source, "counter source: auto|procfs|psutil")
	fs.StringVar(&cfg.ProcRoot, "proc-root", cfg.ProcRoot, "procfs mount point")
	fs.StringVar(&cfg.OSRelease, "os-release", cfg.OSRelease, "os-release file")
	fs.StringVar(&cfg.Passwd, "passwd", cfg.Passwd, "passwd file for user names (empty = system database)")
	fs.BoolVar(&cfg.IncludeChildren, "include-children", cfg.IncludeChildren, "count waited-for children in process CPU")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "parallel per-process reads")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "write logs to this file")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug|info|warn|error")
}

// Resolve layers defaults, the YAML file at path (if any), environment
// overrides and finally the flags explicitly set on fs, whose values are
// taken from flagged.
func Resolve(path string, fs *pflag.FlagSet, flagged Config) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			return cfg, err
		}
	}
	ApplyEnv(&cfg)
	if fs != nil {
		fs.Visit(func(f *pflag.Flag) { copyFlag(&cfg, flagged, f.Name) })
	}
	return cfg, cfg.Validate()
}

// LoadFile decodes a YAML file over cfg; keys absent from the file keep
// their current values.
func LoadFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

// ApplyEnv reads PROCMON_* overrides.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv("PROCMON_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Interval = parsed
		} else if parsed, err2 := time.ParseDuration(v + "s"); err2 == nil {
			cfg.Interval = parsed
		}
	}
	if v := os.Getenv("PROCMON_SORT"); v != "" {
		cfg.Sort = v
	}
	if v := os.Getenv("PROCMON_SOURCE"); v != "" {
		cfg.Source = v
	}
	if v := os.Getenv("PROCMON_PROC_ROOT"); v != "" {
		cfg.ProcRoot = v
	}
	if v := os.Getenv("PROCMON_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

func copyFlag(dst *Config, src Config, name string) {
	switch name {
	case "interval":
		dst.Interval = src.Interval
	case "sort":
		dst.Sort = src.Sort
	case "filter":
		dst.Filter = src.Filter
	case "limit":
		dst.Limit = src.Limit
	case "json":
		dst.JSON = src.JSON
	case "source":
		dst.Source = src.Source
	case "proc-root":
		dst.ProcRoot = src.ProcRoot
	case "os-release":
		dst.OSRelease = src.OSRelease
	case "passwd":
		dst.Passwd = src.Passwd
	case "include-children":
		dst.IncludeChildren = src.IncludeChildren
	case "workers":
		dst.Workers = src.Workers
	case "log-file":
		dst.LogFile = src.LogFile
	case "log-level":
		dst.LogLevel = src.LogLevel
	}
}

// Validate checks every option and reports all problems at once.
func (c Config) Validate() error {
	var errs []error
	if c.Interval <= 0 {
		errs = append(errs, fmt.Errorf("interval must be > 0, got %s", c.Interval))
	}
	if _, ok := sampler.OrderByName(c.Sort); !ok {
		errs = append(errs, fmt.Errorf("unknown sort %q (want %s)", c.Sort, strings.Join(sampler.OrderNames(), "|")))
	}
	if _, err := c.FilterRegexp(); err != nil {
		errs = append(errs, fmt.Errorf("filter: %w", err))
	}
	if c.Limit < 0 {
		errs = append(errs, fmt.Errorf("limit must be >= 0, got %d", c.Limit))
	}
	if !source.ValidKind(c.Source) {
		errs = append(errs, fmt.Errorf("unknown source %q", c.Source))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be >= 1, got %d", c.Workers))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// FilterRegexp compiles Filter; an empty filter yields nil.
func (c Config) FilterRegexp() (*regexp.Regexp, error) {
	if c.Filter == "" {
		return nil, nil
	}
	return regexp.Compile(c.Filter)
}

// Order returns the sampler order named by Sort, defaulting to CPU.
func (c Config) Order() sampler.Order {
	if o, ok := sampler.OrderByName(c.Sort); ok {
		return o
	}
	return sampler.ByCPU
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return l, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	return l, nil
}
