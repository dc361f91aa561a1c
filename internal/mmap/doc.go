// Package mmap provides read-only memory-mapped file access.
//
// Mapping a file gives zero-copy access to its contents, which is how the
// blob fetch path reads committed entries: map, copy the bytes out, unmap.
// Preference blobs are small, so the whole file is always mapped at once.
//
// # Usage
//
//	m, err := mmap.Open("blob")
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes() // valid until Close
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) via golang.org/x/sys
//   - Windows: CreateFileMapping/MapViewOfFile
//
// Close is idempotent. Callers must not touch the slice returned by Bytes
// after Close returns.
package mmap
