package arrowio

import (
	"io"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/table"
)

// Compression codecs for IPC record bodies
const (
	CompressionNone = ""
	CompressionLZ4  = "lz4"
	CompressionZstd = "zstd"
)

// WriteOptions tunes WriteIPC
type WriteOptions struct {
	// Compression is one of the Compression* constants
	Compression string
	// Allocator backs the intermediate record; nil uses the Go allocator
	Allocator memory.Allocator
}

// ReadIPC reads every record batch of an Arrow IPC stream and stacks them
// into one table. A stream without batches yields an empty table with the
// stream's schema.
func ReadIPC(r io.Reader) (*table.Table, error) {
	mem := memory.NewGoAllocator()
	rdr, err := ipc.NewReader(r, ipc.WithAllocator(mem))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to open arrow IPC stream")
	}
	defer rdr.Release()

	var parts []*table.Table
	for rdr.Next() {
		part, err := FromRecord(rdr.Record())
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	if err := rdr.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read arrow record batch").
			WithDetail("batch", len(parts))
	}

	switch len(parts) {
	case 0:
		return emptyTable(mem, rdr.Schema())
	case 1:
		return parts[0], nil
	}
	return table.Concat(parts...)
}

func emptyTable(mem memory.Allocator, schema *arrow.Schema) (*table.Table, error) {
	arrays := make([]arrow.Array, schema.NumFields())
	for i, f := range schema.Fields() {
		b := array.NewBuilder(mem, f.Type)
		arrays[i] = b.NewArray()
		b.Release()
	}
	rec := array.NewRecord(schema, arrays, 0)
	for _, a := range arrays {
		a.Release()
	}
	defer rec.Release()
	return FromRecord(rec)
}

// WriteIPC writes t to w as an Arrow IPC stream holding one record batch
func WriteIPC(w io.Writer, t *table.Table, opts WriteOptions) error {
	mem := opts.Allocator
	if mem == nil {
		mem = memory.NewGoAllocator()
	}

	ipcOpts := []ipc.Option{ipc.WithAllocator(mem)}
	switch strings.ToLower(opts.Compression) {
	case CompressionNone:
	case CompressionLZ4:
		ipcOpts = append(ipcOpts, ipc.WithLZ4())
	case CompressionZstd:
		ipcOpts = append(ipcOpts, ipc.WithZstd())
	default:
		return errors.New(errors.ErrorTypeValidation, "unknown IPC compression").
			WithDetail("compression", opts.Compression)
	}

	rec, err := ToRecord(mem, t)
	if err != nil {
		return err
	}
	defer rec.Release()

	wr := ipc.NewWriter(w, append(ipcOpts, ipc.WithSchema(rec.Schema()))...)
	if err := wr.Write(rec); err != nil {
		_ = wr.Close()
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write arrow record batch")
	}
	if err := wr.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to close arrow IPC stream")
	}
	return nil
}
