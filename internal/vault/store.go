package vault

import "context"

// Store persists blob bytes by name.
type Store interface {
	// Put writes data under name, replacing any previous value. A
	// replaced name counts as newly inserted for List order.
	Put(ctx context.Context, name string, data []byte) error
	// Get returns ErrNotFound for missing names.
	Get(ctx context.Context, name string) ([]byte, error)
	// Delete removes name. Missing names are not an error.
	Delete(ctx context.Context, name string) error
	// List returns every name in insertion order.
	List(ctx context.Context) ([]string, error)
}
