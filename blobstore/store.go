package blobstore

import (
	"context"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies
// `errors.Is(err, ErrNotFound)`. The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// Store is the persistence surface consumed by the value-serialization
// layer above. Values are opaque byte sequences keyed by a filesystem-safe
// name.
//
// Callers must serialize operations on the same name; implementations
// provide no cross-call atomicity for concurrent writers.
type Store interface {
	// Names returns the names currently present in the store. Listing is
	// best-effort: an unlistable backing directory yields an empty result,
	// never an error.
	Names(ctx context.Context) []string

	// Fetch returns the committed bytes for name. Implementations may
	// repair interrupted saves as a side effect, so Fetch is not
	// necessarily read-only at the storage level; it is idempotent and
	// value-preserving. Returns an error satisfying ErrNotFound if no
	// committed value exists.
	Fetch(ctx context.Context, name string) ([]byte, error)

	// Save durably replaces the value stored under name. On error the
	// previous value remains recoverable.
	Save(ctx context.Context, name string, data []byte) error

	// Remove deletes the value stored under name. Removing an absent name
	// is not an error.
	Remove(ctx context.Context, name string) error
}
