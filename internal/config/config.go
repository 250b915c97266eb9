package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"barracuda/internal/app/errors"
)

// Config represents the appliance configuration loaded from barracuda.yaml,
// overlaid with environment variables from a .env file if present.
type Config struct {
	REST struct {
		Addr string `yaml:"addr"`
	} `yaml:"rest"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`

	Timers struct {
		AutoswitchMs uint32 `yaml:"autoswitch_ms" mapstructure:"autoswitch_ms"`
		TooLongMs    uint32 `yaml:"too_long_ms" mapstructure:"too_long_ms"`
	} `yaml:"timers"`

	Sentry struct {
		DSN string `yaml:"dsn"`
	} `yaml:"sentry"`

	Files struct {
		Whitelist   string `yaml:"whitelist"`
		Profiles    string `yaml:"profiles"`
		BinProfiles string `yaml:"bin_profiles" mapstructure:"bin_profiles"`
		Passageways string `yaml:"passageways"`
	} `yaml:"files"`

	// IO describes the physical module(s) the capability aggregator builds
	// its Inputs/Outputs logical ID tables from when the App is built. Real
	// hardware discovery is an external collaborator's concern (spec
	// Non-goals); these counts stand in for the advertisements such a
	// module would emit.
	IO struct {
		Modules []IOModule `yaml:"modules"`
	} `yaml:"io"`

	// ConsoleAccessPoints is the number of AccessPoints the in-process
	// console reader advertises under its own module-id.
	ConsoleAccessPoints int `yaml:"console_access_points" mapstructure:"console_access_points"`
}

// IOModule is one physical I/O module's advertised pin counts.
type IOModule struct {
	Instance uint8 `yaml:"instance"`
	Inputs   int   `yaml:"inputs"`
	Outputs  int   `yaml:"outputs"`
}

// DefaultConfig returns the configuration used when barracuda.yaml is absent.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.REST.Addr = ":8080"
	cfg.Logging.Level = LogLevel
	cfg.Logging.Format = LogFormat
	cfg.Timers.AutoswitchMs = DefaultAutoswitchMs
	cfg.Timers.TooLongMs = DefaultTooLongMs
	cfg.Files.Whitelist = "whitelist.txt"
	cfg.Files.Profiles = "profiles.txt"
	cfg.Files.BinProfiles = "bin_profiles.txt"
	cfg.Files.Passageways = "passageways.txt"
	cfg.IO.Modules = []IOModule{{Instance: 0, Inputs: 16, Outputs: 16}}
	cfg.ConsoleAccessPoints = 1

	return cfg
}

// Load reads barracuda.yaml (if present), overlays a .env file (if present),
// applies defaults for anything left unset, and validates the result.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	// .env overlay for deployment secrets (REST bind address, Sentry DSN) -
	// silently ignored when absent, the same tolerance godotenv.Load gives callers.
	_ = godotenv.Load()

	if dsn := os.Getenv("BARRACUDA_SENTRY_DSN"); dsn != "" {
		cfg.Sentry.DSN = dsn
	}

	if addr := os.Getenv("BARRACUDA_REST_ADDR"); addr != "" {
		cfg.REST.Addr = addr
	}

	data, err := os.ReadFile(ConfigFile)
	if err != nil {
		if os.IsNotExist(err) {
			if err := cfg.Validate(); err != nil {
				return nil, fmt.Errorf("%w: %w", errors.ErrInvalidConfig, err)
			}

			return cfg, nil
		}

		return nil, errors.ErrFailedToReadConfig
	}

	v := viper.New()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, errors.ErrFailedToReadConfig
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.ErrFailedToParseConfig
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrInvalidConfig, err)
	}

	return cfg, nil
}

// applyDefaults fills in zero-valued fields viper left untouched.
func (c *Config) applyDefaults() {
	d := DefaultConfig()

	if c.REST.Addr == "" {
		c.REST.Addr = d.REST.Addr
	}

	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}

	if c.Logging.Format == "" {
		c.Logging.Format = d.Logging.Format
	}

	if c.Timers.AutoswitchMs == 0 {
		c.Timers.AutoswitchMs = d.Timers.AutoswitchMs
	}

	if c.Timers.TooLongMs == 0 {
		c.Timers.TooLongMs = d.Timers.TooLongMs
	}

	if c.Files.Whitelist == "" {
		c.Files.Whitelist = d.Files.Whitelist
	}

	if c.Files.Profiles == "" {
		c.Files.Profiles = d.Files.Profiles
	}

	if c.Files.BinProfiles == "" {
		c.Files.BinProfiles = d.Files.BinProfiles
	}

	if c.Files.Passageways == "" {
		c.Files.Passageways = d.Files.Passageways
	}

	if len(c.IO.Modules) == 0 {
		c.IO.Modules = d.IO.Modules
	}

	if c.ConsoleAccessPoints == 0 {
		c.ConsoleAccessPoints = d.ConsoleAccessPoints
	}
}

// Validate checks invariants the appliance cannot run without.
func (c *Config) Validate() error {
	if c.REST.Addr == "" {
		return errors.ErrInvalidConfig
	}

	if c.Timers.AutoswitchMs == 0 {
		return errors.ErrInvalidConfig
	}

	if c.Timers.TooLongMs == 0 {
		return errors.ErrInvalidConfig
	}

	if len(c.IO.Modules) == 0 {
		return errors.ErrInvalidConfig
	}

	return nil
}
