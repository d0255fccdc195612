package hbnb

import (
	"github.com/aretw0/hbnb/pkg/core"
	"github.com/aretw0/hbnb/pkg/typed"
)

// Model is a typed view of an entity.
type Model[T typed.Kinded] = typed.Model[T]

// TypedRepository gives struct-backed access to the records of T's kind.
type TypedRepository[T typed.Kinded] = typed.Repository[T]

// NewTyped creates a type-safe wrapper around store for T's kind.
func NewTyped[T typed.Kinded](store core.Store) *TypedRepository[T] {
	return typed.NewRepository[T](store)
}
