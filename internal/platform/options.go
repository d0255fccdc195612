package platform

import (
	"log/slog"
	"time"
)

// options holds the internal configuration used to open a storage.
type options struct {
	logger *slog.Logger
	clock  func() time.Time
	config map[string]interface{}
}

// Option defines a functional option for opening a storage.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		config: make(map[string]interface{}),
	}
}

// WithLogger sets the logger for the storage and its watcher.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithVersioning commits the backing file to git after every save.
// Disabled by default.
func WithVersioning(enabled bool) Option {
	return func(o *options) {
		o.config["versioning"] = enabled
	}
}

// WithMustExist requires the backing file to exist already.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.config["must_exist"] = must
	}
}

// WithForceTemp relocates the backing file into a temporary directory
// (useful for testing).
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.config["temp_dir"] = force
	}
}

// WithDevSafety controls the sandbox used when running via `go run` or
// `go test`. By default (true) a backing file outside the system temp
// directory is relocated there to avoid clobbering real data.
//
// CAUTION: Only disable this if you are sure your code is safe.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.config["dev_safety"] = enabled
	}
}

// WithWatchPattern sets the glob, relative to the backing file's directory,
// whose changes mark the table stale in watch mode.
func WithWatchPattern(pattern string) Option {
	return func(o *options) {
		o.config["watch_pattern"] = pattern
	}
}
