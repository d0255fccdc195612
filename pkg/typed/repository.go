// Package typed offers struct-backed access to the records of one kind.
package typed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/aretw0/hbnb/pkg/core"
)

// Kinded is implemented by the structs used as typed models.
type Kinded interface {
	Kind() string
}

// Model is a typed view of an entity.
type Model[T Kinded] struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
	Data      T
	Saver     Saver[T]
}

// Saver interface avoids tight coupling between models and the Repository.
type Saver[T Kinded] interface {
	Save(ctx context.Context, m *Model[T]) error
}

// Save persists the model using the attached saver.
func (m *Model[T]) Save(ctx context.Context) error {
	if m.Saver == nil {
		return core.ErrDetached
	}
	return m.Saver.Save(ctx, m)
}

// Repository wraps a core.Store to provide type-safe access to one kind.
type Repository[T Kinded] struct {
	store core.Store
	kind  string
}

// NewRepository creates a typed wrapper for T's kind.
func NewRepository[T Kinded](store core.Store) *Repository[T] {
	var zero T
	return &Repository[T]{store: store, kind: zero.Kind()}
}

// Create registers a new instance populated from data and saves the table.
func (r *Repository[T]) Create(ctx context.Context, data T) (*Model[T], error) {
	values, err := r.values(data)
	if err != nil {
		return nil, err
	}
	e, err := r.store.Create(r.kind)
	if err != nil {
		return nil, err
	}
	if err := assign(e, values); err != nil {
		delete(r.store.All(), e.Key())
		return nil, err
	}
	if err := e.Save(ctx); err != nil {
		delete(r.store.All(), e.Key())
		return nil, err
	}
	return r.model(e)
}

// Save writes m.Data into the stored instance and saves the table.
func (r *Repository[T]) Save(ctx context.Context, m *Model[T]) error {
	e, err := r.store.Get(r.kind, m.ID)
	if err != nil {
		return err
	}
	values, err := r.values(m.Data)
	if err != nil {
		return err
	}
	if err := assign(e, values); err != nil {
		return err
	}
	if err := e.Save(ctx); err != nil {
		return err
	}
	m.UpdatedAt = e.UpdatedAt
	if m.Saver == nil {
		m.Saver = r
	}
	return nil
}

// Get retrieves an instance by id.
func (r *Repository[T]) Get(ctx context.Context, id string) (*Model[T], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e, err := r.store.Get(r.kind, id)
	if err != nil {
		return nil, err
	}
	return r.model(e)
}

// List returns every instance of the kind in creation order.
func (r *Repository[T]) List(ctx context.Context) ([]*Model[T], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entities := r.store.Filter(r.kind)
	result := make([]*Model[T], 0, len(entities))
	for _, e := range entities {
		m, err := r.model(e)
		if err != nil {
			return nil, fmt.Errorf("failed to process %s: %w", e.Key(), err)
		}
		result = append(result, m)
	}
	return result, nil
}

// Delete removes an instance and saves the table.
func (r *Repository[T]) Delete(ctx context.Context, id string) error {
	return r.store.Destroy(ctx, r.kind, id)
}

// values converts data to attribute values, cast against the kind's schema.
func (r *Repository[T]) values(data T) (map[string]any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal typed data: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("failed to convert typed data to map: %w", err)
	}

	out := make(map[string]any, len(fields))
	for _, name := range slices.Sorted(maps.Keys(fields)) {
		if core.IsReadOnly(name) || name == core.ClassKey {
			continue
		}
		if fields[name] == nil {
			if f, ok := r.field(name); ok {
				out[name] = f.Default()
				continue
			}
		}
		v, err := core.CastValue(r.kind, name, fields[name])
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	return out, nil
}

func (r *Repository[T]) field(name string) (core.Field, bool) {
	c, ok := r.store.Classes()[r.kind]
	if !ok {
		return core.Field{}, false
	}
	return c.Field(name)
}

func assign(e *core.Entity, values map[string]any) error {
	for name, v := range values {
		if err := e.Set(name, v); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository[T]) model(e *core.Entity) (*Model[T], error) {
	raw, err := json.Marshal(e.Attributes())
	if err != nil {
		return nil, fmt.Errorf("attributes marshal failed: %w", err)
	}
	var data T
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("unmarshal to target type failed: %w", err)
	}
	return &Model[T]{
		ID:        e.ID,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
		Data:      data,
		Saver:     r,
	}, nil
}
