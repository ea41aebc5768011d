//go:build !linux && !darwin

package mmap

import (
	"os"

	"github.com/ajitpratap0/tabula/pkg/errors"
)

// Supported reports whether files can be memory-mapped on this platform
const Supported = false

func mmap(*os.File, int) ([]byte, error) {
	return nil, errors.New(errors.ErrorTypeInternal, "memory mapping is not supported on this platform")
}

func munmap([]byte) error { return nil }
