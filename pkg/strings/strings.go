// Package strings provides zero-copy byte-to-string conversion and pooled
// string building for tabula. Hash-join lookups convert encoded keys without
// copying; error messages are assembled with the builder.
package strings

import (
	"sync"
	"unsafe"
)

// BytesToString converts byte slice to string without allocation
// WARNING: The returned string shares memory with the byte slice.
// Do not modify the byte slice after calling this function.
func BytesToString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(b), len(b))
}

// Builder provides efficient string building
type Builder struct {
	buf []byte
}

// NewBuilder creates a new string builder
func NewBuilder(capacity int) *Builder {
	return &Builder{
		buf: make([]byte, 0, capacity),
	}
}

// WriteString appends a string to the builder
func (b *Builder) WriteString(s string) {
	b.buf = append(b.buf, s...)
}

// WriteByte appends a single byte
func (b *Builder) WriteByte(c byte) {
	b.buf = append(b.buf, c)
}

// Write implements io.Writer interface
func (b *Builder) Write(p []byte) (n int, err error) {
	b.buf = append(b.buf, p...)
	return len(p), nil
}

// String returns a copy of the built string. The builder can be reset and
// reused afterwards without affecting the returned value.
func (b *Builder) String() string {
	return string(b.buf)
}

// Len returns the length of the built string
func (b *Builder) Len() int {
	return len(b.buf)
}

// Reset resets the builder for reuse
func (b *Builder) Reset() {
	b.buf = b.buf[:0]
}

var builderPool = &sync.Pool{
	New: func() interface{} {
		return NewBuilder(256)
	},
}

// getBuilder retrieves a pooled builder
func getBuilder() *Builder {
	builder := builderPool.Get().(*Builder)
	builder.Reset()
	return builder
}

// putBuilder returns a builder to the pool
func putBuilder(builder *Builder) {
	if builder == nil {
		return
	}
	builder.Reset()
	builderPool.Put(builder)
}

// Concat efficiently concatenates strings using a pooled builder
func Concat(parts ...string) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	}

	builder := getBuilder()
	defer putBuilder(builder)

	for _, s := range parts {
		builder.WriteString(s)
	}
	return builder.String()
}
