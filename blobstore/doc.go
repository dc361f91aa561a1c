// Package blobstore provides crash-safe storage of named byte blobs.
//
// It is the persistence layer of a key-value preferences stack: the layer
// above serializes values and keeps the in-memory index, this package only
// moves opaque bytes durably in and out of storage.
//
// # Operation Surface
//
//	type Store interface {
//	    Names(ctx) []string
//	    Fetch(ctx, name) ([]byte, error)
//	    Save(ctx, name, data) error
//	    Remove(ctx, name) error
//	}
//
// # Built-in Implementations
//
//   - FileStore: local filesystem with a backup-directory update protocol
//     that survives a crash or power loss at any point of a save
//   - MemoryStore: in-memory store for tests and embedding
//   - CachingStore: read-through cache wrapper around any Store
//   - s3.Store, minio.Store: object storage adapters in sub-packages
//
// # Crash Safety
//
// FileStore replaces a blob in three ordered steps: the current file is
// renamed into the backup directory, the new bytes are written and fsynced
// to the primary path, and the backup is deleted. The absence of the backup
// is the sole commit marker. A fetch that finds a backup rolls the entry
// back to the pre-save value before reading, so a reader observes either
// the old value or the new value, never a torn file. Object-store adapters
// get the same contract for free from single-object atomic PUTs.
//
// # Concurrency
//
// Stores assume a single writer per name, coordinated by the caller.
// FileStore takes no internal locks; CachingStore locks only its own map.
package blobstore
