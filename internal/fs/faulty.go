package fs

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// Fault defines failure behavior for paths matching a rule.
type Fault struct {
	FailWriteAfter int64 // Fail writes once this many bytes were written to the file. 0 disables.
	FailOnSync     bool
	FailOnClose    bool
	FailOnRename   bool // Fail Rename when either path matches.
	FailOnRemove   bool
	Err            error
}

// FaultyFS is a FileSystem wrapper that injects errors into selected
// operations. Rules are matched by substring against the path, last
// added rule wins. FaultyFS deliberately does not implement Mapper so
// that reads under test take the plain file path.
type FaultyFS struct {
	FS FileSystem

	mu    sync.Mutex
	rules []faultRule
}

type faultRule struct {
	pattern string
	fault   Fault
}

// NewFaultyFS creates a new FaultyFS wrapping the provided FS (or Default if nil).
func NewFaultyFS(fsys FileSystem) *FaultyFS {
	if fsys == nil {
		fsys = Default
	}
	return &FaultyFS{FS: fsys}
}

// AddRule registers a fault for paths containing pattern.
func (f *FaultyFS) AddRule(pattern string, fault Fault) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if fault.Err == nil {
		fault.Err = fmt.Errorf("injected fault on %q", pattern)
	}
	f.rules = append(f.rules, faultRule{pattern: pattern, fault: fault})
}

func (f *FaultyFS) match(name string) (Fault, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.rules) - 1; i >= 0; i-- {
		if strings.Contains(name, f.rules[i].pattern) {
			return f.rules[i].fault, true
		}
	}
	return Fault{}, false
}

func (f *FaultyFS) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	file, err := f.FS.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	fault, ok := f.match(name)
	if !ok {
		return file, nil
	}
	return &faultyFile{File: file, fault: fault}, nil
}

func (f *FaultyFS) Remove(name string) error {
	if fault, ok := f.match(name); ok && fault.FailOnRemove {
		return fault.Err
	}
	return f.FS.Remove(name)
}

func (f *FaultyFS) Rename(oldpath, newpath string) error {
	if fault, ok := f.match(oldpath); ok && fault.FailOnRename {
		return fault.Err
	}
	if fault, ok := f.match(newpath); ok && fault.FailOnRename {
		return fault.Err
	}
	return f.FS.Rename(oldpath, newpath)
}

func (f *FaultyFS) Stat(name string) (os.FileInfo, error) {
	return f.FS.Stat(name)
}

func (f *FaultyFS) MkdirAll(path string, perm os.FileMode) error {
	return f.FS.MkdirAll(path, perm)
}

func (f *FaultyFS) ReadDir(name string) ([]os.DirEntry, error) {
	return f.FS.ReadDir(name)
}

type faultyFile struct {
	File
	fault   Fault
	written int64
}

func (ff *faultyFile) Write(p []byte) (n int, err error) {
	if ff.fault.FailWriteAfter > 0 {
		remaining := ff.fault.FailWriteAfter - ff.written
		if remaining <= 0 {
			return 0, ff.fault.Err
		}
		if int64(len(p)) > remaining {
			// Partial write, then fail. This is the torn-write case the
			// backup protocol exists to survive.
			n, _ = ff.File.Write(p[:remaining])
			ff.written += int64(n)
			return n, ff.fault.Err
		}
	}
	n, err = ff.File.Write(p)
	ff.written += int64(n)
	return n, err
}

func (ff *faultyFile) Sync() error {
	if ff.fault.FailOnSync {
		return ff.fault.Err
	}
	return ff.File.Sync()
}

func (ff *faultyFile) Close() error {
	if ff.fault.FailOnClose {
		ff.File.Close()
		return ff.fault.Err
	}
	return ff.File.Close()
}
