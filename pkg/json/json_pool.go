// Package json is the JSON boundary adapter for tabula tables: a
// JSON-lines and JSON-array exporter over read-only row iteration and a
// JSON-lines loader feeding the row-major column builders. Encoding uses
// goccy/go-json with pooled buffers.
package json

import (
	"bytes"
	"io"
	"sync"

	gojson "github.com/goccy/go-json"
)

var bufferPool = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, 4096))
	},
}

// GetBuffer gets a pooled bytes.Buffer
func GetBuffer() *bytes.Buffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// PutBuffer returns a buffer to the pool
func PutBuffer(buf *bytes.Buffer) {
	if buf.Cap() > 1024*1024 { // Don't pool very large buffers
		return
	}
	bufferPool.Put(buf)
}

// Marshal is a drop-in replacement for encoding/json.Marshal
func Marshal(v interface{}) ([]byte, error) {
	return gojson.Marshal(v)
}

// StreamingEncoder writes pre-encoded JSON objects either one per line or
// as the elements of a single array
type StreamingEncoder struct {
	writer      io.Writer
	firstRecord bool
	isArray     bool
	pretty      bool
	err         error
}

// NewStreamingEncoder creates a new streaming encoder
func NewStreamingEncoder(w io.Writer, isArray bool) *StreamingEncoder {
	se := &StreamingEncoder{
		writer:      w,
		firstRecord: true,
		isArray:     isArray,
	}
	if isArray {
		se.write([]byte{'['})
	}
	return se
}

// SetPretty puts each array element on its own line
func (se *StreamingEncoder) SetPretty(pretty bool) {
	se.pretty = pretty
}

// WriteRaw writes one encoded value
func (se *StreamingEncoder) WriteRaw(data []byte) error {
	if se.isArray {
		if !se.firstRecord {
			se.write([]byte{','})
		}
		if se.pretty {
			se.write([]byte{'\n'})
		}
		se.firstRecord = false
		se.write(data)
	} else {
		se.write(data)
		se.write([]byte{'\n'})
	}
	return se.err
}

// Close finalizes the encoding
func (se *StreamingEncoder) Close() error {
	if se.isArray {
		if se.pretty && !se.firstRecord {
			se.write([]byte{'\n'})
		}
		se.write([]byte{']'})
	}
	return se.err
}

// write keeps the first write error and drops later writes
func (se *StreamingEncoder) write(p []byte) {
	if se.err != nil {
		return
	}
	_, se.err = se.writer.Write(p)
}
