package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/harrison/paver/internal/executor"
	"github.com/harrison/paver/internal/models"
	"github.com/harrison/paver/internal/report"
	"github.com/harrison/paver/internal/rules"
)

// DocsConfig locates the documentation tree.
type DocsConfig struct {
	// Root is the docs directory, relative to the config file
	Root string `toml:"root" yaml:"root"`
}

// RulesConfig mirrors rules.RuleSet plus the gradual adoption settings.
type RulesConfig struct {
	MaxLines                    int    `toml:"max_lines" yaml:"max_lines"`
	RequireVerification         bool   `toml:"require_verification" yaml:"require_verification"`
	RequireExamples             bool   `toml:"require_examples" yaml:"require_examples"`
	RequireVerificationCommands bool   `toml:"require_verification_commands" yaml:"require_verification_commands"`
	Gradual                     bool   `toml:"gradual" yaml:"gradual"`
	GradualUntil                string `toml:"gradual_until,omitempty" yaml:"gradual_until,omitempty"` // YYYY-MM-DD
}

// VerifyConfig controls the verification runner.
type VerifyConfig struct {
	Timeout     time.Duration `toml:"-" yaml:"-"`
	KeepGoing   bool          `toml:"keep_going" yaml:"keep_going"`
	Concurrency int           `toml:"concurrency" yaml:"concurrency"`
	WorkingDir  string        `toml:"working_dir,omitempty" yaml:"working_dir,omitempty"`
	OutputLimit int           `toml:"output_limit" yaml:"output_limit"`
}

// MappingConfig controls doc-to-code coverage mapping.
type MappingConfig struct {
	// Exclude holds doublestar globs of code paths that need no documentation
	Exclude []string `toml:"exclude" yaml:"exclude"`
}

// Config represents paver configuration options
type Config struct {
	// Path is the file the configuration was loaded from (empty = defaults)
	Path string `toml:"-" yaml:"-"`

	Version  string        `toml:"-" yaml:"-"`
	Docs     DocsConfig    `toml:"docs" yaml:"docs"`
	Rules    RulesConfig   `toml:"rules" yaml:"rules"`
	Verify   VerifyConfig  `toml:"verify" yaml:"verify"`
	Mapping  MappingConfig `toml:"mapping" yaml:"mapping"`
	LogLevel string        `toml:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Version: "0.1",
		Docs:    DocsConfig{Root: "docs"},
		Rules: RulesConfig{
			MaxLines:            rules.DefaultMaxLines,
			RequireVerification: true,
			RequireExamples:     true,
		},
		Verify: VerifyConfig{
			Timeout:     executor.DefaultTimeout,
			Concurrency: 1,
			OutputLimit: executor.DefaultOutputLimit,
		},
		LogLevel: "info",
	}
}

// fileConfig is the on-disk shape. Pointer fields distinguish "absent" from
// the zero value so that only keys present in the file override defaults.
type fileConfig struct {
	Paver struct {
		Version *string `toml:"version" yaml:"version"`
	} `toml:"paver" yaml:"paver"`
	Docs struct {
		Root *string `toml:"root" yaml:"root"`
	} `toml:"docs" yaml:"docs"`
	Rules struct {
		MaxLines                    *int    `toml:"max_lines" yaml:"max_lines"`
		RequireVerification         *bool   `toml:"require_verification" yaml:"require_verification"`
		RequireExamples             *bool   `toml:"require_examples" yaml:"require_examples"`
		RequireVerificationCommands *bool   `toml:"require_verification_commands" yaml:"require_verification_commands"`
		Gradual                     *bool   `toml:"gradual" yaml:"gradual"`
		GradualUntil                *string `toml:"gradual_until" yaml:"gradual_until"`
	} `toml:"rules" yaml:"rules"`
	Verify struct {
		Timeout     interface{} `toml:"timeout" yaml:"timeout"` // "30s" or bare seconds
		KeepGoing   *bool       `toml:"keep_going" yaml:"keep_going"`
		Concurrency *int        `toml:"concurrency" yaml:"concurrency"`
		WorkingDir  *string     `toml:"working_dir" yaml:"working_dir"`
		OutputLimit *int        `toml:"output_limit" yaml:"output_limit"`
	} `toml:"verify" yaml:"verify"`
	Mapping struct {
		Exclude []string `toml:"exclude" yaml:"exclude"`
	} `toml:"mapping" yaml:"mapping"`
	Log struct {
		Level *string `toml:"level" yaml:"level"`
	} `toml:"log" yaml:"log"`
}

// LoadConfig loads configuration from the specified file path.
// If the file doesn't exist, returns default configuration without error.
// If the file exists but is malformed, returns an error.
// Files ending in .yaml or .yml are parsed as YAML, everything else as TOML.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var raw fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	default:
		err = toml.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.apply(&raw); err != nil {
		return nil, err
	}
	cfg.Path = path
	return cfg, nil
}

func (c *Config) apply(raw *fileConfig) error {
	setString(&c.Version, raw.Paver.Version)
	setString(&c.Docs.Root, raw.Docs.Root)

	setInt(&c.Rules.MaxLines, raw.Rules.MaxLines)
	setBool(&c.Rules.RequireVerification, raw.Rules.RequireVerification)
	setBool(&c.Rules.RequireExamples, raw.Rules.RequireExamples)
	setBool(&c.Rules.RequireVerificationCommands, raw.Rules.RequireVerificationCommands)
	setBool(&c.Rules.Gradual, raw.Rules.Gradual)
	setString(&c.Rules.GradualUntil, raw.Rules.GradualUntil)

	if raw.Verify.Timeout != nil {
		timeout, err := parseTimeout(raw.Verify.Timeout)
		if err != nil {
			return err
		}
		c.Verify.Timeout = timeout
	}
	setBool(&c.Verify.KeepGoing, raw.Verify.KeepGoing)
	setInt(&c.Verify.Concurrency, raw.Verify.Concurrency)
	setString(&c.Verify.WorkingDir, raw.Verify.WorkingDir)
	setInt(&c.Verify.OutputLimit, raw.Verify.OutputLimit)

	if raw.Mapping.Exclude != nil {
		c.Mapping.Exclude = raw.Mapping.Exclude
	}
	setString(&c.LogLevel, raw.Log.Level)
	return nil
}

// ParseTimeout parses a --timeout value with the same rules as the
// verify.timeout setting.
func ParseTimeout(s string) (time.Duration, error) {
	return parseTimeout(s)
}

// parseTimeout accepts Go durations ("90s", "2m") and bare seconds (30, "30").
func parseTimeout(v interface{}) (time.Duration, error) {
	switch t := v.(type) {
	case int:
		return time.Duration(t) * time.Second, nil
	case int64:
		return time.Duration(t) * time.Second, nil
	case float64:
		return time.Duration(t * float64(time.Second)), nil
	case string:
		s := strings.TrimSpace(t)
		if d, err := time.ParseDuration(s); err == nil {
			return d, nil
		}
		if d, err := time.ParseDuration(s + "s"); err == nil {
			return d, nil
		}
	}
	return 0, fmt.Errorf("invalid timeout format %v", v)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

// Marshal renders the configuration as a .paver.toml document.
func (c *Config) Marshal() ([]byte, error) {
	type paverSection struct {
		Version string `toml:"version"`
	}
	type verifySection struct {
		Timeout     string `toml:"timeout"`
		KeepGoing   bool   `toml:"keep_going"`
		Concurrency int    `toml:"concurrency"`
		WorkingDir  string `toml:"working_dir,omitempty"`
		OutputLimit int    `toml:"output_limit"`
	}
	type logSection struct {
		Level string `toml:"level"`
	}
	out := struct {
		Paver   paverSection  `toml:"paver"`
		Docs    DocsConfig    `toml:"docs"`
		Rules   RulesConfig   `toml:"rules"`
		Verify  verifySection `toml:"verify"`
		Mapping MappingConfig `toml:"mapping"`
		Log     logSection    `toml:"log"`
	}{
		Paver: paverSection{Version: c.Version},
		Docs:  c.Docs,
		Rules: c.Rules,
		Verify: verifySection{
			Timeout:     c.Verify.Timeout.String(),
			KeepGoing:   c.Verify.KeepGoing,
			Concurrency: c.Verify.Concurrency,
			WorkingDir:  c.Verify.WorkingDir,
			OutputLimit: c.Verify.OutputLimit,
		},
		Mapping: c.Mapping,
		Log:     logSection{Level: c.LogLevel},
	}
	if out.Mapping.Exclude == nil {
		out.Mapping.Exclude = []string{}
	}
	data, err := toml.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize config: %w", err)
	}
	return data, nil
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
// This allows CLI flags to take precedence over config file settings
func (c *Config) MergeWithFlags(timeout *time.Duration, keepGoing *bool, concurrency *int, logLevel *string) {
	if timeout != nil {
		c.Verify.Timeout = *timeout
	}
	if keepGoing != nil {
		c.Verify.KeepGoing = *keepGoing
	}
	if concurrency != nil {
		c.Verify.Concurrency = *concurrency
	}
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
}

var validLevels = []interface{}{"trace", "debug", "info", "warn", "error"}

// Validate validates the configuration values.
// Errors wrap models.ErrInvalidConfiguration.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Version, validation.Required.Error("paver.version cannot be empty")),
		validation.Field(&c.LogLevel, validation.Required, validation.In(validLevels...).Error("must be one of: trace, debug, info, warn, error")),
	); err != nil {
		return invalid(err)
	}
	if err := validation.ValidateStruct(&c.Docs,
		validation.Field(&c.Docs.Root, validation.Required.Error("docs.root cannot be empty")),
	); err != nil {
		return invalid(err)
	}
	if err := validation.ValidateStruct(&c.Rules,
		validation.Field(&c.Rules.MaxLines, validation.Required.Error("rules.max_lines must be greater than 0"), validation.Min(1)),
		validation.Field(&c.Rules.GradualUntil, validation.By(validDate)),
	); err != nil {
		return invalid(err)
	}
	if err := validation.ValidateStruct(&c.Verify,
		validation.Field(&c.Verify.Timeout, validation.Required.Error("verify.timeout must be greater than 0"), validation.Min(time.Nanosecond)),
		validation.Field(&c.Verify.Concurrency, validation.Min(1)),
		validation.Field(&c.Verify.OutputLimit, validation.Min(0)),
	); err != nil {
		return invalid(err)
	}
	return nil
}

func validDate(value interface{}) error {
	s, _ := value.(string)
	_, err := report.ParseDeadline(s)
	return err
}

func invalid(err error) error {
	return fmt.Errorf("%w: %v", models.ErrInvalidConfiguration, err)
}

// BaseDir is the directory relative paths in the configuration resolve
// against: the config file's directory, or fallback when none was loaded.
func (c *Config) BaseDir(fallback string) string {
	if c.Path == "" {
		return fallback
	}
	return filepath.Dir(c.Path)
}

// DocsRoot returns the absolute-or-relative docs directory.
func (c *Config) DocsRoot(fallback string) string {
	return executor.ResolveDir(c.BaseDir(fallback), c.Docs.Root)
}

// RuleSet returns the rule engine configuration.
func (c *Config) RuleSet() rules.RuleSet {
	return rules.RuleSet{
		MaxLines:                    c.Rules.MaxLines,
		RequireVerification:         c.Rules.RequireVerification,
		RequireExamples:             c.Rules.RequireExamples,
		RequireVerificationCommands: c.Rules.RequireVerificationCommands,
	}
}

// RunnerConfig returns the verification runner configuration. A relative
// verify.working_dir resolves against the base directory.
func (c *Config) RunnerConfig(fallback string) executor.Config {
	return executor.Config{
		WorkingDir:  executor.ResolveDir(c.BaseDir(fallback), c.Verify.WorkingDir),
		Timeout:     c.Verify.Timeout,
		FailFast:    !c.Verify.KeepGoing,
		OutputLimit: c.Verify.OutputLimit,
		Shell:       executor.DefaultShell,
	}
}

// Mode returns the finding policy for the given CLI flags. --strict disables
// gradual, --gradual forces it, otherwise the configured value applies. The
// deadline is only honored for configured gradual mode.
func (c *Config) Mode(strict, gradual bool) report.Mode {
	switch {
	case strict:
		return report.Mode{Strict: true}
	case gradual:
		return report.Mode{Gradual: true}
	case c.Rules.Gradual:
		until, _ := report.ParseDeadline(c.Rules.GradualUntil)
		return report.Mode{Gradual: true, Until: until}
	default:
		return report.Mode{}
	}
}
