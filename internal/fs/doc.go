// Package fs provides filesystem abstractions for testability and fault injection.
//
// The package defines two key interfaces:
//
//   - [File]: An open file with write/sync capabilities
//   - [FileSystem]: The file operations the blob store needs (open, remove,
//     rename, stat, list)
//
// # Implementations
//
//   - [LocalFS]: Production implementation using the standard os package.
//     It also implements [Mapper], giving readers a memory-mapped fast path.
//   - [FaultyFS]: Test utility that fails individual operations on selected
//     paths, used to drive the crash-safety protocol through every failure
//     leg (backup rename, data write, durability flush, commit deletion).
//
// # Usage
//
// Production code should use fs.Default (which is [LocalFS]):
//
//	file, err := fs.Default.OpenFile(path, os.O_WRONLY|os.O_CREATE, 0600)
//
// Tests inject [FaultyFS] with per-path rules:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule(".bak", fs.Fault{FailOnRemove: true})
//	// inject ffs into the store under test
//
// # Design Notes
//
// Operations here intentionally take no context.Context. Local filesystem
// calls are non-interruptible at the syscall level, so a context would add
// surface without adding cancellation.
package fs
