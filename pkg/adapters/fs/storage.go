// Package fs implements the object table backed by a single JSON file.
package fs

import (
	"cmp"
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync/atomic"
	"time"

	"github.com/aretw0/hbnb/pkg/core"
	"github.com/aretw0/hbnb/pkg/git"
)

// DefaultFile is the backing file used when no path is configured.
const DefaultFile = "file.json"

// lockTimeout bounds how long Save waits for the git lock.
const lockTimeout = 5 * time.Second

// Config holds the configuration for the storage engine.
type Config struct {
	// Path of the backing JSON file.
	Path   string
	Logger *slog.Logger

	// Clock overrides the time source used for new instances and updates.
	Clock func() time.Time

	// Versioning commits the backing file to a git repository in its
	// directory after every save.
	Versioning bool

	// MustExist makes Initialize fail when the backing file is absent.
	MustExist bool

	// WatchPattern is a glob, relative to the backing file's directory,
	// selecting the files whose changes mark the table stale. Defaults to
	// the backing file's name.
	WatchPattern string
}

// Storage is the process-wide object table mirrored to a JSON file.
//
// The table is owned by a single goroutine (the shell). Only the watcher flag
// is touched concurrently.
type Storage struct {
	path    string
	config  Config
	logger  *slog.Logger
	git     *git.Client
	objects map[string]*core.Entity

	digest     [sha256.Size]byte
	hasDigest  bool
	lastSave   *time.Time
	lastReload *time.Time

	watcherActive atomic.Bool
}

// NewStorage creates an empty table for the given configuration.
func NewStorage(config Config) *Storage {
	if config.Path == "" {
		config.Path = DefaultFile
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Storage{
		path:    config.Path,
		config:  config,
		logger:  logger,
		objects: make(map[string]*core.Entity),
	}
	if config.Versioning {
		s.git = git.NewClient(filepath.Dir(config.Path), logger)
	}
	return s
}

// Initialize prepares the backing file's directory and, when versioning is
// enabled, the git repository around it.
func (s *Storage) Initialize(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(s.path)

	if s.config.MustExist {
		if _, err := os.Stat(s.path); err != nil {
			return fmt.Errorf("backing file %s does not exist: %w", s.path, err)
		}
	} else if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if s.git == nil {
		return nil
	}
	if !git.IsInstalled() {
		return fmt.Errorf("versioning requires git, which is not installed")
	}
	if s.git.IsRepo() {
		return nil
	}
	s.logger.Info("initializing git repository", "dir", dir)
	if err := s.git.Init(); err != nil {
		return fmt.Errorf("failed to init git in %s: %w", dir, err)
	}
	return nil
}

// Path returns the backing file location.
func (s *Storage) Path() string {
	return s.path
}

// Now returns the current time at the precision the file format keeps.
func (s *Storage) Now() time.Time {
	if s.config.Clock != nil {
		return core.Truncate(s.config.Clock())
	}
	return core.Now()
}

// Classes returns the registry of known kinds.
func (s *Storage) Classes() map[string]core.Class {
	return core.Classes()
}

// Attributes returns kind -> field -> type tag.
func (s *Storage) Attributes() map[string]map[string]core.TypeTag {
	return core.Attributes()
}

// All returns the live table.
func (s *Storage) All() map[string]*core.Entity {
	return s.objects
}

// Register inserts or overwrites e under its key and binds it to the storage.
func (s *Storage) Register(e *core.Entity) {
	if e == nil {
		return
	}
	e.Attach(s)
	s.objects[e.Key()] = e
}

// Create builds a new instance of kind and registers it. Nothing is written
// until Save.
func (s *Storage) Create(kind string) (*core.Entity, error) {
	class, ok := core.LookupClass(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrUnknownKind, kind)
	}
	e := class.New(s.Now())
	s.Register(e)
	return e, nil
}

// Get looks up a registered instance.
func (s *Storage) Get(kind, id string) (*core.Entity, error) {
	e, ok := s.objects[core.Key(kind, id)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrNotFound, core.Key(kind, id))
	}
	return e, nil
}

// Destroy removes an instance and saves the table.
func (s *Storage) Destroy(ctx context.Context, kind, id string) error {
	key := core.Key(kind, id)
	if _, ok := s.objects[key]; !ok {
		return fmt.Errorf("%w: %s", core.ErrNotFound, key)
	}
	delete(s.objects, key)
	return s.Save(ctx)
}

// Filter returns the instances of kind (every instance when kind is empty)
// ordered by creation time, then key.
func (s *Storage) Filter(kind string) []*core.Entity {
	out := make([]*core.Entity, 0, len(s.objects))
	for _, e := range s.objects {
		if kind == "" || e.Kind() == kind {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b *core.Entity) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Key(), b.Key())
	})
	return out
}

// Count returns the number of instances of kind.
func (s *Storage) Count(kind string) int {
	n := 0
	for _, e := range s.objects {
		if e.Kind() == kind {
			n++
		}
	}
	return n
}

// Save serializes the whole table and replaces the backing file.
func (s *Storage) Save(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	records := make(map[string]map[string]any, len(s.objects))
	for key, e := range s.objects {
		records[key] = e.ToMap()
	}
	data, err := encodeTable(records)
	if err != nil {
		return fmt.Errorf("failed to encode objects: %w", err)
	}
	if err := writeFileAtomic(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to save %s: %w", s.path, err)
	}
	s.remember(data)
	now := time.Now()
	s.lastSave = &now
	s.logger.Debug("saved objects", "path", s.path, "count", len(records))

	if s.git != nil {
		if err := s.commit(len(records)); err != nil {
			s.logger.Warn("failed to version backing file", "path", s.path, "error", err)
		}
	}
	return nil
}

func (s *Storage) commit(count int) error {
	unlock, err := s.git.Lock(lockTimeout)
	if err != nil {
		return err
	}
	defer unlock()

	name := filepath.Base(s.path)
	status, err := s.git.Status(name)
	if err != nil {
		return err
	}
	if status == "" {
		return nil
	}
	if err := s.git.Add(name); err != nil {
		return err
	}
	msg := git.FormatCommitMessage(git.CommitTypeChore, "storage", fmt.Sprintf("save %d objects", count), "")
	return s.git.Commit(msg)
}

// Reload merges the backing file into the table. A missing file is not an
// error. Entries are rebuilt before any of them is registered, so a failure
// leaves the table as it was. Keys absent from the file are kept.
func (s *Storage) Reload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	return s.load(data)
}

// ReloadIfChanged reloads only when the backing file differs from what the
// storage last read or wrote. It reports whether a reload happened.
func (s *Storage) ReloadIfChanged(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	if s.hasDigest && sha256.Sum256(data) == s.digest {
		return false, nil
	}
	if err := s.load(data); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Storage) load(data []byte) error {
	records, err := decodeTable(data)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", core.ErrReconstruction, s.path, err)
	}

	now := s.Now()
	loaded := make([]*core.Entity, 0, len(records))
	for _, key := range slices.Sorted(maps.Keys(records)) {
		attrs, err := decodeRecord(records[key])
		if err != nil {
			s.logger.Warn("skipping malformed record", "key", key, "error", err)
			continue
		}
		kind, _ := attrs[core.ClassKey].(string)
		class, ok := core.LookupClass(kind)
		if !ok {
			s.logger.Warn("skipping record of unknown kind", "key", key, "kind", kind)
			continue
		}
		e, err := class.Rehydrate(attrs, now)
		if err != nil {
			return fmt.Errorf("record %s: %w", key, err)
		}
		loaded = append(loaded, e)
	}

	for _, e := range loaded {
		s.Register(e)
	}
	s.remember(data)
	reloaded := time.Now()
	s.lastReload = &reloaded
	s.logger.Debug("reloaded objects", "path", s.path, "count", len(loaded))
	return nil
}

func (s *Storage) remember(data []byte) {
	s.digest = sha256.Sum256(data)
	s.hasDigest = true
}

var _ core.Store = (*Storage)(nil)
var _ core.Saver = (*Storage)(nil)
