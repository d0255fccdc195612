package platform

import (
	"context"
	"fmt"

	"github.com/mitchellh/go-homedir"

	"github.com/aretw0/hbnb/pkg/adapters/fs"
)

// Open builds the storage for the backing file at path, prepares its
// directory and loads the file's content.
//
//	store, err := platform.Open("~/hbnb/file.json", platform.WithVersioning(true))
func Open(ctx context.Context, path string, opts ...Option) (*fs.Storage, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	versioning, _ := o.config["versioning"].(bool)
	mustExist, _ := o.config["must_exist"].(bool)
	tempDir, _ := o.config["temp_dir"].(bool)
	watchPattern, _ := o.config["watch_pattern"].(string)
	devSafety := true
	if val, ok := o.config["dev_safety"].(bool); ok {
		devSafety = val
	}

	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand %s: %w", path, err)
	}

	useTemp := tempDir || (devSafety && IsDevRun())
	resolved := ResolvePath(expanded, useTemp)
	if o.logger != nil && resolved != expanded {
		o.logger.Warn("running in SAFE MODE (Dev/Test)", "original_path", expanded, "resolved_path", resolved)
	}

	store := fs.NewStorage(fs.Config{
		Path:         resolved,
		Logger:       o.logger,
		Clock:        o.clock,
		Versioning:   versioning,
		MustExist:    mustExist,
		WatchPattern: watchPattern,
	})
	if err := store.Initialize(ctx); err != nil {
		return nil, err
	}
	if err := store.Reload(ctx); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", resolved, err)
	}
	return store, nil
}
