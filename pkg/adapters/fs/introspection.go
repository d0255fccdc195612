package fs

import (
	"time"

	"github.com/aretw0/introspection"
)

// StorageState exposes internal state for observability.
type StorageState struct {
	Path          string         `json:"path"`
	Objects       int            `json:"objects"`
	Kinds         map[string]int `json:"kinds"`
	Versioning    bool           `json:"versioning"`
	WatcherActive bool           `json:"watcher_active"`
	LastSave      *time.Time     `json:"last_save,omitempty"`
	LastReload    *time.Time     `json:"last_reload,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Storage) State() any {
	kinds := make(map[string]int)
	for _, e := range s.objects {
		kinds[e.Kind()]++
	}
	return StorageState{
		Path:          s.path,
		Objects:       len(s.objects),
		Kinds:         kinds,
		Versioning:    s.git != nil,
		WatcherActive: s.watcherActive.Load(),
		LastSave:      s.lastSave,
		LastReload:    s.lastReload,
	}
}

// ComponentType implements introspection.Component.
func (s *Storage) ComponentType() string {
	return "storage"
}

var _ introspection.Introspectable = (*Storage)(nil)
var _ introspection.Component = (*Storage)(nil)
