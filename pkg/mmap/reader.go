// Package mmap maps input files read-only into memory so loaders can parse
// them without copying the file through a read buffer
package mmap

import (
	"bytes"
	"os"

	"github.com/ajitpratap0/tabula/pkg/errors"
)

// Reader serves a memory-mapped file as an io.Reader. The mapping stays
// valid until Close; slices returned by Bytes must not be used afterwards.
type Reader struct {
	*bytes.Reader

	file   *os.File
	data   []byte
	mapped bool
}

// Open maps filename read-only. Empty files are served from an empty buffer
// without a mapping.
func Open(filename string) (*Reader, error) {
	file, err := os.Open(filename) //nolint:gosec // G304: caller chooses the path
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to open file").
			WithDetail("path", filename)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to stat file").
			WithDetail("path", filename)
	}

	r := &Reader{file: file}
	if size := stat.Size(); size > 0 {
		data, err := mmap(file, int(size))
		if err != nil {
			file.Close()
			return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to map file").
				WithDetail("path", filename)
		}
		r.data = data
		r.mapped = true
	}
	r.Reader = bytes.NewReader(r.data)
	return r, nil
}

// Bytes returns the mapped file contents
func (r *Reader) Bytes() []byte { return r.data }

// Close unmaps the file and closes it
func (r *Reader) Close() error {
	var err error
	if r.mapped {
		err = munmap(r.data)
		r.mapped = false
	}
	r.data = nil
	r.Reader = bytes.NewReader(nil)

	if r.file != nil {
		if cerr := r.file.Close(); cerr != nil && err == nil {
			err = cerr
		}
		r.file = nil
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to release mapped file")
	}
	return nil
}
