//go:build linux || darwin

package mmap

import (
	"os"

	"golang.org/x/sys/unix"
)

// Supported reports whether files can be memory-mapped on this platform
const Supported = true

func mmap(f *os.File, length int) ([]byte, error) {
	data, err := unix.Mmap(int(f.Fd()), 0, length, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, err
	}
	// Advisory only; loaders scan front to back.
	_ = unix.Madvise(data, unix.MADV_SEQUENTIAL)
	return data, nil
}

func munmap(b []byte) error {
	return unix.Munmap(b)
}
