package mmap

import (
	"errors"
	"os"
)

// ErrInvalidSize is returned when the file size cannot be mapped.
var ErrInvalidSize = errors.New("mmap: invalid file size")

// File is a read-only memory-mapped file.
type File struct {
	data []byte
	f    *os.File
}

// Open maps the file at path into memory as read-only.
// An empty file maps to a nil byte slice.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	size := fi.Size()
	if size < 0 || size != int64(int(size)) {
		f.Close()
		return nil, ErrInvalidSize
	}
	if size == 0 {
		return &File{f: f}, nil
	}

	data, err := osMap(f, int(size))
	if err != nil {
		f.Close()
		return nil, err
	}

	return &File{data: data, f: f}, nil
}

// Bytes returns the mapped contents. The slice is valid until Close.
func (m *File) Bytes() []byte {
	return m.data
}

// Close unmaps the memory and closes the underlying file.
func (m *File) Close() error {
	if m == nil {
		return nil
	}
	var err error
	if m.data != nil {
		err = osUnmap(m.data)
		m.data = nil
	}
	if m.f != nil {
		if closeErr := m.f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		m.f = nil
	}
	return err
}
