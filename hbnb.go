package hbnb

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/hbnb/internal/platform"
	"github.com/aretw0/hbnb/pkg/adapters/fs"
	"github.com/aretw0/hbnb/pkg/console"
	"github.com/aretw0/hbnb/pkg/core"
)

// --- Types ---

// Entity is a public alias for a stored record.
type Entity = core.Entity

// Store is a public alias for the object table contract.
type Store = core.Store

// Storage is the JSON-file backed implementation of Store.
type Storage = fs.Storage

// Config is the content of hbnb.yaml.
type Config = platform.Config

// Kind names.
const (
	KindBaseModel = core.KindBaseModel
	KindUser      = core.KindUser
	KindState     = core.KindState
	KindCity      = core.KindCity
	KindAmenity   = core.KindAmenity
	KindPlace     = core.KindPlace
	KindReview    = core.KindReview
)

// Errors.
var (
	ErrUnknownKind    = core.ErrUnknownKind
	ErrNotFound       = core.ErrNotFound
	ErrReconstruction = core.ErrReconstruction
	ErrCast           = core.ErrCast
)

// --- Configuration ---

// Option defines a functional option for opening a storage.
type Option = platform.Option

// WithLogger sets the logger for the storage.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithClock overrides the time source used for timestamps.
func WithClock(clock func() time.Time) Option {
	return platform.WithClock(clock)
}

// WithVersioning commits the backing file to git after every save.
func WithVersioning(enabled bool) Option {
	return platform.WithVersioning(enabled)
}

// WithMustExist requires the backing file to exist already.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithForceTemp relocates the backing file into a temporary directory.
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithDevSafety controls the `go run` / `go test` sandbox.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// WithWatchPattern sets the glob whose changes mark the table stale.
func WithWatchPattern(pattern string) Option {
	return platform.WithWatchPattern(pattern)
}

// --- Factory ---

// Open builds the storage for the backing file at path and loads it.
func Open(ctx context.Context, path string, opts ...Option) (*Storage, error) {
	return platform.Open(ctx, path, opts...)
}

// NewConsole creates a command shell over store.
func NewConsole(store Store, opts ...console.Option) *console.Console {
	return console.New(store, opts...)
}

// --- Configuration files ---

// ConfigFile is the name of the project configuration file.
const ConfigFile = platform.ConfigFile

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return platform.DefaultConfig()
}

// LoadConfig reads hbnb.yaml at path, falling back to defaults.
func LoadConfig(path string) (*Config, error) {
	return platform.LoadConfig(path)
}

// FindRoot looks upwards from startDir for a directory holding hbnb.yaml.
func FindRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}

// --- Safety & Utils ---

// ResolvePath determines the actual backing file path based on safety rules.
func ResolvePath(path string, forceTemp bool) string {
	return platform.ResolvePath(path, forceTemp)
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}
