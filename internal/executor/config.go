package executor

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/harrison/paver/internal/models"
)

const (
	// DefaultTimeout bounds a single verification command.
	DefaultTimeout = 30 * time.Second
	// DefaultOutputLimit caps captured bytes per stream of one command.
	DefaultOutputLimit = 1 << 20
	// DefaultShell interprets every command so pipes and operators work.
	DefaultShell = "sh"
	// killGrace is how long Wait keeps draining pipes after the process
	// group was killed or the shell exited with children holding its output.
	killGrace = 500 * time.Millisecond
)

// Config controls how verification commands are executed.
type Config struct {
	WorkingDir  string        // Base directory for commands (empty = current dir)
	Timeout     time.Duration // Per-command budget, must be > 0
	FailFast    bool          // Stop a document's commands at the first fail/timeout
	OutputLimit int           // Bytes kept per stream (<= 0 = DefaultOutputLimit)
	Shell       string        // Interpreter invoked as "<shell> -c <command>" (empty = sh)
}

// DefaultConfig returns a keep-going configuration with the default timeout.
func DefaultConfig() Config {
	return Config{
		Timeout:     DefaultTimeout,
		OutputLimit: DefaultOutputLimit,
		Shell:       DefaultShell,
	}
}

// Validate rejects configurations the runner cannot honor.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Timeout, validation.Required, validation.Min(time.Nanosecond)),
	)
	if err != nil {
		return fmt.Errorf("%w: verify: %v", models.ErrInvalidConfiguration, err)
	}
	return nil
}

func (c Config) outputLimit() int {
	if c.OutputLimit <= 0 {
		return DefaultOutputLimit
	}
	return c.OutputLimit
}

func (c Config) shell() string {
	if c.Shell == "" {
		return DefaultShell
	}
	return c.Shell
}
