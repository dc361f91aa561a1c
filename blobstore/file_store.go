package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hupe1980/prefstore/internal/fs"
)

// DefaultBackupExt is appended to a blob name to form its backup file name.
// A blob name must not end in this extension.
const DefaultBackupExt = ".bak"

// FileStoreOptions configures a FileStore.
type FileStoreOptions struct {
	// BackupExt is the suffix of backup file names. Defaults to DefaultBackupExt.
	BackupExt string

	// FileSystem is the file operations backend. Defaults to fs.Default.
	FileSystem fs.FileSystem

	// Logger receives recovery and best-effort failure events. Defaults to
	// a logger that discards everything.
	Logger *slog.Logger
}

// FileStore stores each blob as a file named after it in a primary
// directory, with a second directory holding at most one in-flight backup
// per name during a save.
//
// The store keeps no state between calls; every operation goes straight to
// the filesystem. Crash safety comes from the ordering of the save protocol
// alone: rename the current file to the backup path, write and fsync the
// new bytes, delete the backup. As long as the backup exists the primary
// file is untrusted, and Fetch restores the backup before reading.
type FileStore struct {
	dir       string
	backupDir string
	backupExt string
	fsys      fs.FileSystem
	logger    *slog.Logger
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a FileStore over the given primary and backup
// directories. The directories are created if missing and must be distinct.
func NewFileStore(dir, backupDir string, optFns ...func(o *FileStoreOptions)) (*FileStore, error) {
	opts := FileStoreOptions{
		BackupExt:  DefaultBackupExt,
		FileSystem: fs.Default,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	if dir == backupDir {
		return nil, errors.New("backup directory must be distinct from the store directory")
	}

	for _, d := range []string{dir, backupDir} {
		if err := opts.FileSystem.MkdirAll(d, 0750); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	return &FileStore{
		dir:       dir,
		backupDir: backupDir,
		backupExt: opts.BackupExt,
		fsys:      opts.FileSystem,
		logger:    opts.Logger,
	}, nil
}

// entryState classifies the on-disk state of a named entry.
type entryState int

const (
	// stateClean means the primary file, if any, holds the committed value.
	stateClean entryState = iota

	// stateSaving means a backup exists: a save was interrupted before its
	// commit, the backup holds the last known-good value and the primary
	// must not be trusted.
	stateSaving
)

func (s *FileStore) primaryPath(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *FileStore) backupPath(name string) string {
	return filepath.Join(s.backupDir, name+s.backupExt)
}

func (s *FileStore) entryState(name string) entryState {
	if _, err := s.fsys.Stat(s.backupPath(name)); err == nil {
		return stateSaving
	}
	return stateClean
}

// Names returns the file names in the primary directory. Backup files
// never appear here. A name whose save was interrupted shows up again once
// a Fetch has rolled it back.
func (s *FileStore) Names(_ context.Context) []string {
	entries, err := s.fsys.ReadDir(s.dir)
	if err != nil {
		s.logger.Warn("blob directory not listable", "dir", s.dir, "error", err)
		return nil
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}

	return names
}

// Fetch returns the committed bytes for name, rolling back an interrupted
// save first if one is found. The rollback converges: once the backup has
// been moved over the primary, repeated fetches read the same bytes.
func (s *FileStore) Fetch(_ context.Context, name string) ([]byte, error) {
	if s.entryState(name) == stateSaving {
		if err := s.rollback(name); err != nil {
			return nil, err
		}
	}
	return s.readBlob(name)
}

// rollback discards the untrusted primary file and moves the backup into
// its place, restoring the last known-good value.
func (s *FileStore) rollback(name string) error {
	primary := s.primaryPath(name)

	// The primary may be partial, stale, or already gone. Ensure absent.
	if err := s.fsys.Remove(primary); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to discard partial blob %q: %w", name, err)
	}

	if err := s.fsys.Rename(s.backupPath(name), primary); err != nil {
		return fmt.Errorf("failed to restore backup of %q: %w", name, err)
	}

	s.logger.Warn("interrupted save rolled back", "name", name)

	return nil
}

func (s *FileStore) readBlob(name string) ([]byte, error) {
	primary := s.primaryPath(name)

	if m, ok := s.fsys.(fs.Mapper); ok {
		mf, err := m.Map(primary)
		if err != nil {
			return nil, fmt.Errorf("failed to open blob %q: %w", name, err)
		}
		defer mf.Close()

		data := make([]byte, len(mf.Bytes()))
		copy(data, mf.Bytes())
		return data, nil
	}

	f, err := s.fsys.OpenFile(primary, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open blob %q: %w", name, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %q: %w", name, err)
	}
	return data, nil
}

// Save durably replaces the value stored under name.
//
// The three steps must not be reordered: the current file is preserved as
// the backup before the write starts, and the backup is deleted only after
// the new bytes are on stable storage. Deleting the backup is the commit;
// if Save fails before that, the backup stays behind on purpose and the
// next Fetch rolls the entry back to the previous value.
func (s *FileStore) Save(_ context.Context, name string, data []byte) error {
	primary := s.primaryPath(name)
	backup := s.backupPath(name)

	// Step 1: preserve the current value. On the first save of a name
	// there is nothing to preserve.
	if err := s.fsys.Rename(primary, backup); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to back up blob %q: %w", name, err)
	}

	// Step 2: write the new bytes and force them to stable storage.
	if err := s.writeBlob(primary, data); err != nil {
		return fmt.Errorf("failed to write blob %q: %w", name, err)
	}

	// Step 3: commit. Absence of the backup marks the save complete.
	if err := s.fsys.Remove(backup); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to commit blob %q: %w", name, err)
	}

	return nil
}

func (s *FileStore) writeBlob(path string, data []byte) error {
	f, err := s.fsys.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

// Remove deletes the primary file for name. Removing an absent name is not
// an error. A backup left by an interrupted save is deliberately untouched;
// a later Fetch restores and returns it.
func (s *FileStore) Remove(_ context.Context, name string) error {
	if err := s.fsys.Remove(s.primaryPath(name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove blob %q: %w", name, err)
	}
	return nil
}
