package core

import "context"

// Store defines the contract for the object table and its on-disk mirror.
// Adhering to this interface keeps the shell and the typed layer independent
// of the storage mechanism.
type Store interface {
	// All returns the live table. Deleting through the returned map removes
	// the entry from the store.
	All() map[string]*Entity

	// Register inserts or overwrites the entry under e.Key().
	Register(e *Entity)

	// Create builds a new instance of kind and registers it.
	Create(kind string) (*Entity, error)

	// Save flushes the whole table to the backing file.
	Save(ctx context.Context) error

	// Reload merges the backing file into the table.
	Reload(ctx context.Context) error

	// Classes returns the registry of known kinds.
	Classes() map[string]Class

	// Attributes returns kind -> field -> type tag.
	Attributes() map[string]map[string]TypeTag

	Get(kind, id string) (*Entity, error)
	Destroy(ctx context.Context, kind, id string) error
	Count(kind string) int

	// Filter returns the instances of kind, or all of them when kind is
	// empty, ordered by creation time.
	Filter(kind string) []*Entity
}
