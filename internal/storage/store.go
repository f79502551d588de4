package storage

import (
	"context"
	"errors"
	"time"

	"typegen/internal/typespec"
)

// ErrNotFound is returned when no spec is stored for a module.
var ErrNotFound = errors.New("typespec not found")

// Entry is one stored module spec.
type Entry struct {
	Module    string
	Spec      typespec.TypeSpec
	UpdatedAt time.Time
}

// SpecStore persists the intermediate spec of each module so documentation
// runs can merge specs without re-reading spec files.
type SpecStore interface {
	// SaveSpec replaces the spec stored for module.
	SaveSpec(ctx context.Context, module string, spec typespec.TypeSpec) error

	// LoadSpec returns the spec of module or ErrNotFound.
	LoadSpec(ctx context.Context, module string) (*Entry, error)

	// LoadAll returns every stored spec ordered by module name.
	LoadAll(ctx context.Context) ([]Entry, error)

	DeleteSpec(ctx context.Context, module string) error

	Close() error
}
