// Package compression wraps table files in a streaming compression codec.
//
// The codec is chosen from the file name suffix, so "sales.jsonl.zst" is a
// zstd stream of JSON lines and "sales.arrow.gz" a gzip stream of Arrow IPC:
//
//	alg, inner := compression.FromPath("sales.jsonl.zst")
//	w, err := compression.NewWriter(file, alg, compression.Default)
//	...
//	err = w.Close() // flushes the codec, not the underlying file
//
// Supported algorithms are gzip, snappy (framed), lz4 (frame), zstd and s2.
package compression

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/ajitpratap0/tabula/pkg/errors"
)

// Algorithm represents a compression algorithm
type Algorithm string

const (
	// None represents no compression
	None Algorithm = "none"
	// Gzip represents gzip compression
	Gzip Algorithm = "gzip"
	// Snappy represents framed snappy compression
	Snappy Algorithm = "snappy"
	// LZ4 represents lz4 frame compression
	LZ4 Algorithm = "lz4"
	// Zstd represents zstandard compression
	Zstd Algorithm = "zstd"
	// S2 represents s2 compression (Snappy compatible)
	S2 Algorithm = "s2"
)

// Level represents compression level, trading speed for ratio
type Level int

const (
	// Fastest prioritizes speed over compression ratio
	Fastest Level = 1
	// Default balances speed and compression
	Default Level = 5
	// Better improves compression at cost of speed
	Better Level = 7
	// Best maximizes compression ratio
	Best Level = 9
)

var extensions = map[string]Algorithm{
	".gz":     Gzip,
	".gzip":   Gzip,
	".sz":     Snappy,
	".snappy": Snappy,
	".lz4":    LZ4,
	".zst":    Zstd,
	".zstd":   Zstd,
	".s2":     S2,
}

// ParseAlgorithm resolves a case-insensitive algorithm name. The empty
// string means None.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch a := Algorithm(strings.ToLower(strings.TrimSpace(name))); a {
	case "":
		return None, nil
	case None, Gzip, Snappy, LZ4, Zstd, S2:
		return a, nil
	}
	return "", unsupported(Algorithm(name))
}

func unsupported(alg Algorithm) error {
	return errors.New(errors.ErrorTypeValidation, "unsupported compression algorithm").
		WithDetail("algorithm", string(alg))
}

// ParseLevel resolves fastest, default, better or best. The empty string
// means Default.
func ParseLevel(name string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "default":
		return Default, nil
	case "fastest":
		return Fastest, nil
	case "better":
		return Better, nil
	case "best":
		return Best, nil
	}
	return 0, errors.New(errors.ErrorTypeValidation, "unsupported compression level").
		WithDetail("level", name)
}

// FromPath returns the algorithm implied by the last extension of path and
// the path with that extension removed. Paths without a known compression
// suffix return None and the path unchanged.
func FromPath(path string) (Algorithm, string) {
	ext := filepath.Ext(path)
	if alg, ok := extensions[strings.ToLower(ext)]; ok {
		return alg, strings.TrimSuffix(path, ext)
	}
	return None, path
}

// NewWriter returns a writer compressing into w. Closing it flushes the
// codec but leaves w open.
func NewWriter(w io.Writer, alg Algorithm, level Level) (io.WriteCloser, error) {
	switch alg {
	case None, "":
		return nopWriteCloser{w}, nil
	case Gzip:
		gw, err := gzip.NewWriterLevel(w, mapGzipLevel(level))
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeValidation, "invalid gzip level")
		}
		return gw, nil
	case Snappy:
		return snappy.NewBufferedWriter(w), nil
	case LZ4:
		lw := lz4.NewWriter(w)
		if err := lw.Apply(lz4.CompressionLevelOption(mapLZ4Level(level))); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeValidation, "invalid lz4 level")
		}
		return lw, nil
	case Zstd:
		zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(mapZstdLevel(level)))
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeInternal, "failed to create zstd encoder")
		}
		return zw, nil
	case S2:
		return s2.NewWriter(w, s2Options(level)...), nil
	}
	return nil, unsupported(alg)
}

// NewReader returns a reader decompressing r. Corrupt input surfaces as a
// data error, either here or from Read.
func NewReader(r io.Reader, alg Algorithm) (io.ReadCloser, error) {
	var rc io.ReadCloser
	switch alg {
	case None, "":
		return io.NopCloser(r), nil
	case Gzip:
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "invalid gzip stream")
		}
		rc = gr
	case Snappy:
		rc = io.NopCloser(snappy.NewReader(r))
	case LZ4:
		rc = io.NopCloser(lz4.NewReader(r))
	case Zstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "invalid zstd stream")
		}
		rc = zr.IOReadCloser()
	case S2:
		rc = io.NopCloser(s2.NewReader(r))
	default:
		return nil, unsupported(alg)
	}
	return dataErrorReader{ReadCloser: rc, alg: alg}, nil
}

// dataErrorReader reports decoding failures as data errors
type dataErrorReader struct {
	io.ReadCloser
	alg Algorithm
}

func (r dataErrorReader) Read(p []byte) (int, error) {
	n, err := r.ReadCloser.Read(p)
	if err != nil && err != io.EOF {
		return n, errors.Wrap(err, errors.ErrorTypeData, "decompression failed").
			WithDetail("algorithm", string(r.alg))
	}
	return n, err
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

func mapGzipLevel(level Level) int {
	switch level {
	case Fastest:
		return gzip.BestSpeed
	case Better:
		return 7
	case Best:
		return gzip.BestCompression
	default:
		return gzip.DefaultCompression
	}
}

func mapLZ4Level(level Level) lz4.CompressionLevel {
	switch level {
	case Fastest:
		return lz4.Fast
	case Better:
		return lz4.Level7
	case Best:
		return lz4.Level9
	default:
		return lz4.Level5
	}
}

func mapZstdLevel(level Level) zstd.EncoderLevel {
	switch level {
	case Fastest:
		return zstd.SpeedFastest
	case Better:
		return zstd.SpeedBetterCompression
	case Best:
		return zstd.SpeedBestCompression
	default:
		return zstd.SpeedDefault
	}
}

func s2Options(level Level) []s2.WriterOption {
	switch level {
	case Better:
		return []s2.WriterOption{s2.WriterBetterCompression()}
	case Best:
		return []s2.WriterOption{s2.WriterBestCompression()}
	}
	return nil
}
