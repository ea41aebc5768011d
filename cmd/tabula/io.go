package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/tabula/pkg/arrowio"
	"github.com/ajitpratap0/tabula/pkg/columnar"
	"github.com/ajitpratap0/tabula/pkg/compression"
	"github.com/ajitpratap0/tabula/pkg/errors"
	tjson "github.com/ajitpratap0/tabula/pkg/json"
	"github.com/ajitpratap0/tabula/pkg/mmap"
	"github.com/ajitpratap0/tabula/pkg/schema"
	"github.com/ajitpratap0/tabula/pkg/table"
)

// File formats understood by the CLI
const (
	formatArrow = "arrow"
	formatJSON  = "json"
)

// ioFlags are the input/output options shared by every table command
type ioFlags struct {
	inputFormat string
	schema      string
	output      string
	compression string
	pretty      bool
}

func (f *ioFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.inputFormat, "format", "", "Input format (arrow or json); inferred from the file extension when empty")
	flags.StringVar(&f.schema, "schema", "", "JSON input schema as name:type pairs, e.g. id:int64,city:text; inferred when empty")
	flags.StringVarP(&f.output, "output", "o", "", "Output file; .arrow writes Arrow IPC, anything else JSON lines. A .gz, .zst, .lz4, .sz or .s2 suffix compresses the file. Defaults to stdout")
	flags.StringVar(&f.compression, "compression", "", "Arrow IPC body compression (lz4 or zstd)")
	flags.BoolVar(&f.pretty, "pretty", false, "Write stdout output as an indented JSON array")
}

// formatOf resolves the format of path from the override or its extension.
// A trailing compression suffix is ignored.
func formatOf(path, override string) (string, error) {
	if override != "" {
		switch f := strings.ToLower(override); f {
		case formatArrow, formatJSON:
			return f, nil
		}
		return "", errors.New(errors.ErrorTypeValidation, "unknown file format").
			WithDetail("format", override)
	}
	_, inner := compression.FromPath(path)
	switch strings.ToLower(filepath.Ext(inner)) {
	case ".arrow", ".arrows", ".ipc":
		return formatArrow, nil
	case ".json", ".jsonl", ".ndjson":
		return formatJSON, nil
	}
	return "", errors.New(errors.ErrorTypeValidation, "cannot infer file format; use --format").
		WithDetail("path", path)
}

// parseSchema parses "name:type,name:type"
func parseSchema(value string) (table.Schema, error) {
	var s table.Schema
	for _, item := range splitList(value) {
		name, typ, ok := strings.Cut(item, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return table.Schema{}, errors.New(errors.ErrorTypeValidation, "schema entries must be name:type").
				WithDetail("entry", item)
		}
		dt, err := columnar.ParseDataType(typ)
		if err != nil {
			return table.Schema{}, err
		}
		s.Names = append(s.Names, strings.TrimSpace(name))
		s.Types = append(s.Types, dt)
	}
	return s, nil
}

// openInput returns a reader over the decompressed contents of path.
// Uncompressed files are memory-mapped when configured and supported.
func (a *app) openInput(path string) (io.ReadCloser, error) {
	alg, _ := compression.FromPath(path)
	if alg == compression.None && a.cfg.IO.MemoryMap && mmap.Supported {
		r, err := mmap.Open(path)
		if err == nil {
			return r, nil
		}
		a.log.Debug("memory mapping failed, reading normally", zap.String("path", path), zap.Error(err))
	}

	file, err := os.Open(path) //nolint:gosec // G304: path is a CLI argument
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to open input").
			WithDetail("path", path)
	}
	r, err := compression.NewReader(file, alg)
	if err != nil {
		file.Close()
		return nil, err
	}
	return readCloser{Reader: r, closers: []io.Closer{r, file}}, nil
}

// load reads a table from path and attaches the app's observer. JSON input
// without --schema has its schema inferred.
func (a *app) load(path string, f *ioFlags) (*table.Table, error) {
	format, err := formatOf(path, f.inputFormat)
	if err != nil {
		return nil, err
	}
	var s table.Schema
	if format == formatJSON {
		if s, err = parseSchema(f.schema); err != nil {
			return nil, err
		}
	}

	in, err := a.openInput(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	var tbl *table.Table
	switch {
	case format == formatArrow:
		tbl, err = arrowio.ReadIPC(in)
	case len(s.Names) > 0:
		tbl, err = tjson.ReadLines(in, s, a.cfg.LoadOptions())
	default:
		inf := schema.NewInferrer(
			schema.WithSampleSize(a.cfg.IO.InferSampleSize),
			schema.WithLogger(a.log.Named("schema")))
		tbl, err = tjson.ReadLinesInferred(in, inf, a.cfg.LoadOptions())
	}
	if err != nil {
		return nil, err
	}

	a.log.Debug("table loaded",
		zap.String("path", path),
		zap.String("format", format),
		zap.Int("rows", tbl.RowCount()),
		zap.Int("columns", tbl.ColumnCount()))
	return tbl.WithObserver(a.observer), nil
}

// write sends t to the output file or stdout
func (a *app) write(t *table.Table, f *ioFlags) error {
	if f.output == "" {
		return writeJSON(a.stdout, t, f.pretty)
	}

	format, err := formatOf(f.output, "")
	if err != nil {
		format = formatJSON
	}
	alg, _ := compression.FromPath(f.output)

	file, err := os.Create(f.output) //nolint:gosec // G304: path is a CLI argument
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to create output").
			WithDetail("path", f.output)
	}
	w, err := compression.NewWriter(file, alg, a.cfg.CompressionLevel())
	if err != nil {
		file.Close()
		return err
	}

	var werr error
	if format == formatArrow {
		werr = arrowio.WriteIPC(w, t, arrowio.WriteOptions{Compression: f.compression})
	} else {
		werr = writeJSON(w, t, f.pretty)
	}
	for _, c := range []io.Closer{w, file} {
		if cerr := c.Close(); werr == nil && cerr != nil {
			werr = errors.Wrap(cerr, errors.ErrorTypeFile, "failed to close output").
				WithDetail("path", f.output)
		}
	}
	if werr != nil {
		return werr
	}

	a.log.Info("table written",
		zap.String("path", f.output),
		zap.String("format", format),
		zap.String("compression", string(alg)),
		zap.Int("rows", t.RowCount()))
	return nil
}

func writeJSON(w io.Writer, t *table.Table, pretty bool) error {
	if pretty {
		return tjson.WriteArray(w, t, true)
	}
	return tjson.WriteLines(w, t)
}

// readCloser closes every layer of a stacked reader, innermost last
type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (r readCloser) Close() error {
	var first error
	for _, c := range r.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
