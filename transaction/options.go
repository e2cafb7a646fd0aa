package transaction

import (
	"log/slog"
	"time"

	"github.com/openperiph/venus/macro"
)

// Config holds the controller tuning knobs. The zero value is not
// used directly; defaults come from defaultConfig.
type Config struct {
	// Retries is the number of extra handshake attempts after the
	// first one fails.
	Retries int

	// CommandDelay is the pause between consecutive commands. The
	// firmware writes flash synchronously and drops frames that arrive
	// while it is busy.
	CommandDelay time.Duration

	// SendTimeout bounds each individual command round-trip.
	SendTimeout time.Duration

	// Verify enables a read-back comparison of every written region
	// before the commit.
	Verify bool

	// Logger receives frame-level debug records. Defaults to the
	// default slog logger.
	Logger *slog.Logger

	// Progress, when set, is called after each completed step.
	Progress func(Progress)

	// MacroCodec encodes staged macros. The zero value uses 5-byte
	// events and the base-complement terminator.
	MacroCodec macro.Codec
}

func defaultConfig() Config {
	return Config{
		Retries:      2,
		CommandDelay: 20 * time.Millisecond,
		SendTimeout:  2 * time.Second,
		Logger:       slog.Default(),
	}
}

// Option configures a Controller.
type Option func(*Config)

// WithRetries sets how many extra handshake attempts are made after
// the first failure.
func WithRetries(n int) Option {
	return func(c *Config) {
		if n >= 0 {
			c.Retries = n
		}
	}
}

// WithCommandDelay sets the pause between consecutive commands.
func WithCommandDelay(d time.Duration) Option {
	return func(c *Config) {
		if d >= 0 {
			c.CommandDelay = d
		}
	}
}

// WithTimeout bounds each command round-trip.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.SendTimeout = d
		}
	}
}

// WithVerify enables or disables read-back verification of written
// regions. Default is off; the read path is unavailable on some
// dongles.
func WithVerify(verify bool) Option {
	return func(c *Config) {
		c.Verify = verify
	}
}

// WithLogger sets the structured logger used for frame-level traces.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		if l != nil {
			c.Logger = l
		}
	}
}

// WithProgress sets a callback invoked after each completed step.
// Implementations should return quickly.
func WithProgress(fn func(Progress)) Option {
	return func(c *Config) {
		c.Progress = fn
	}
}

// WithMacroCodec sets the codec used to encode staged macros. Useful
// for firmware revisions that use the count-adjusted terminator or
// 3-byte events.
func WithMacroCodec(codec macro.Codec) Option {
	return func(c *Config) {
		c.MacroCodec = codec
	}
}

// Progress describes how far an apply run has come.
type Progress struct {
	State            State
	CompletedTargets int
	TotalTargets     int

	// Target is the target most recently worked on, empty during the
	// prepare and commit phases.
	Target string
}
