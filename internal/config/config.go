// ABOUTME: Configuration loading and parsing for cobranza-gateway
// ABOUTME: YAML with ${VAR} expansion, duration parsing and legacy env overrides

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v3"

	"github.com/lmv-credia/cobranza-gateway/internal/agents"
)

// Config is the complete cobranza-gateway configuration.
type Config struct {
	Company  CompanyConfig  `yaml:"company"`
	Database DatabaseConfig `yaml:"database"`
	Roster   RosterConfig   `yaml:"roster"`
	Dispatch DispatchConfig `yaml:"dispatch"`
	Agents   []agents.Agent `yaml:"agents"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// CompanyConfig is the business identity rendered into messages.
type CompanyConfig struct {
	Name      string `yaml:"name"`
	BankName  string `yaml:"bank_name"`
	BankCLABE string `yaml:"bank_clabe"`
}

// DatabaseConfig holds the interaction archive location.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// RosterConfig holds the roster snapshot location.
type RosterConfig struct {
	SnapshotPath string `yaml:"snapshot_path"`
}

// DispatchConfig holds the anti-ban throttling knobs.
type DispatchConfig struct {
	MessageDelay time.Duration `yaml:"-"`
	BatchPause   time.Duration `yaml:"-"`
	WindowPoll   time.Duration `yaml:"-"`

	BatchSize int `yaml:"batch_size"`
	StartHour int `yaml:"start_hour"`
	EndHour   int `yaml:"end_hour"`

	// Raw string values for YAML unmarshaling
	MessageDelayRaw string `yaml:"message_delay"`
	BatchPauseRaw   string `yaml:"batch_pause"`
	WindowPollRaw   string `yaml:"window_poll"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// legacyEnv carries the environment overrides the previous system used for
// the throttling knobs. Delays are in milliseconds there.
type legacyEnv struct {
	MessageDelayMS int `env:"DELAY_ENTRE_MENSAJES"`
	BatchSize      int `env:"MENSAJES_POR_LOTE"`
	BatchPauseMS   int `env:"PAUSA_ENTRE_LOTES"`
	StartHour      int `env:"HORA_INICIO"`
	EndHour        int `env:"HORA_FIN"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Company: CompanyConfig{
			Name:      "LMV CREDIA SA DE CV",
			BankName:  "BBVA",
			BankCLABE: "012345678901234567",
		},
		Database: DatabaseConfig{Path: "data/cobranza.db"},
		// Legacy filename, kept so existing snapshots keep loading.
		Roster: RosterConfig{SnapshotPath: "chatbot_clientes.json"},
		Dispatch: DispatchConfig{
			MessageDelay: 10 * time.Second,
			BatchSize:    15,
			BatchPause:   120 * time.Second,
			StartHour:    9,
			EndHour:      20,
			WindowPoll:   60 * time.Second,
		},
		Agents: []agents.Agent{
			{Name: "Lic. Alfonso", Phone: "5564304984", Active: true},
			{Name: "Lic. Gisella", Phone: "5526889735", Active: true},
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// Load reads a configuration file and returns a parsed Config. A missing
// file yields the defaults. Environment variables in ${VAR} form are
// expanded, durations parsed, legacy env overrides applied, and the result
// validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// defaults
		case err != nil:
			return nil, fmt.Errorf("reading config file: %w", err)
		default:
			expanded := expandEnvVars(string(data))
			if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
			if err := parseDurations(cfg); err != nil {
				return nil, fmt.Errorf("parsing durations: %w", err)
			}
		}
	}

	if err := applyLegacyEnv(cfg); err != nil {
		return nil, fmt.Errorf("applying env overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding
// environment variable values. Unset variables become empty strings.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

func parseDurations(cfg *Config) error {
	var err error

	if cfg.Dispatch.MessageDelayRaw != "" {
		cfg.Dispatch.MessageDelay, err = time.ParseDuration(cfg.Dispatch.MessageDelayRaw)
		if err != nil {
			return fmt.Errorf("parsing message_delay %q: %w", cfg.Dispatch.MessageDelayRaw, err)
		}
	}
	if cfg.Dispatch.BatchPauseRaw != "" {
		cfg.Dispatch.BatchPause, err = time.ParseDuration(cfg.Dispatch.BatchPauseRaw)
		if err != nil {
			return fmt.Errorf("parsing batch_pause %q: %w", cfg.Dispatch.BatchPauseRaw, err)
		}
	}
	if cfg.Dispatch.WindowPollRaw != "" {
		cfg.Dispatch.WindowPoll, err = time.ParseDuration(cfg.Dispatch.WindowPollRaw)
		if err != nil {
			return fmt.Errorf("parsing window_poll %q: %w", cfg.Dispatch.WindowPollRaw, err)
		}
	}
	return nil
}

func applyLegacyEnv(cfg *Config) error {
	var overrides legacyEnv
	if err := env.Parse(&overrides); err != nil {
		return err
	}
	if overrides.MessageDelayMS > 0 {
		cfg.Dispatch.MessageDelay = time.Duration(overrides.MessageDelayMS) * time.Millisecond
	}
	if overrides.BatchSize > 0 {
		cfg.Dispatch.BatchSize = overrides.BatchSize
	}
	if overrides.BatchPauseMS > 0 {
		cfg.Dispatch.BatchPause = time.Duration(overrides.BatchPauseMS) * time.Millisecond
	}
	if overrides.StartHour > 0 {
		cfg.Dispatch.StartHour = overrides.StartHour
	}
	if overrides.EndHour > 0 {
		cfg.Dispatch.EndHour = overrides.EndHour
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Company.Name == "" {
		return fmt.Errorf("company.name is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Roster.SnapshotPath == "" {
		return fmt.Errorf("roster.snapshot_path is required")
	}
	d := c.Dispatch
	if d.BatchSize <= 0 {
		return fmt.Errorf("dispatch.batch_size must be positive")
	}
	if d.MessageDelay <= 0 || d.BatchPause <= 0 || d.WindowPoll <= 0 {
		return fmt.Errorf("dispatch delays must be positive")
	}
	if d.StartHour < 0 || d.StartHour > 23 || d.EndHour < 1 || d.EndHour > 24 {
		return fmt.Errorf("dispatch hours must fall within a day")
	}
	if d.StartHour >= d.EndHour {
		return fmt.Errorf("dispatch.start_hour must be before dispatch.end_hour")
	}
	return nil
}
