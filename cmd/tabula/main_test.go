package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/tabula/pkg/arrowio"
	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/testutil"
)

func writeSales(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales.arrow")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, arrowio.WriteIPC(f, testutil.SalesTable(t), arrowio.WriteOptions{}))
	require.NoError(t, f.Close())
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCommand(&stdout, &stderr)
	root.SetArgs(append(args, "--log-level", "error"))
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func lines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}

func TestHead(t *testing.T) {
	out, _, err := run(t, "head", "-n", "2", writeSales(t))
	require.NoError(t, err)
	assert.Equal(t, []string{
		`{"country":"ES","sales":10,"year":2020}`,
		`{"country":"FR","sales":20,"year":2020}`,
	}, lines(out))
}

func TestTail(t *testing.T) {
	out, _, err := run(t, "tail", "-n", "1", writeSales(t))
	require.NoError(t, err)
	assert.Equal(t, []string{`{"country":"FR","sales":null,"year":2020}`}, lines(out))
}

func TestSelect(t *testing.T) {
	path := writeSales(t)
	out, _, err := run(t, "select", "--columns", "year,country", path)
	require.NoError(t, err)
	assert.Equal(t, `{"year":2020,"country":"ES"}`, lines(out)[0])

	_, _, err = run(t, "select", "--columns", "missing", path)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))

	_, _, err = run(t, "select", path)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestFilter(t *testing.T) {
	path := writeSales(t)

	out, _, err := run(t, "filter", "--column", "sales", "--gt", "15", path)
	require.NoError(t, err)
	assert.Equal(t, []string{
		`{"country":"FR","sales":20,"year":2020}`,
		`{"country":"ES","sales":30,"year":2021}`,
	}, lines(out))

	out, _, err = run(t, "filter", "--column", "country", "--eq", "ES", path)
	require.NoError(t, err)
	assert.Len(t, lines(out), 2)

	out, _, err = run(t, "filter", "--column", "year", "--eq", "2021", path)
	require.NoError(t, err)
	assert.Len(t, lines(out), 2)

	out, _, err = run(t, "filter", "--column", "country", "--not-null", path)
	require.NoError(t, err)
	assert.Len(t, lines(out), 4)

	_, _, err = run(t, "filter", "--column", "country", "--gt", "1", path)
	assert.True(t, errors.IsType(err, errors.ErrorTypeTypeMismatch))

	_, _, err = run(t, "filter", "--column", "sales", path)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestGroupBy(t *testing.T) {
	path := writeSales(t)

	out, _, err := run(t, "groupby", "--by", "country", "--agg", "sales:sum", path)
	require.NoError(t, err)
	assert.Equal(t, []string{
		`{"country":"ES","sales_sum":40}`,
		`{"country":"FR","sales_sum":20}`,
		`{"country":null,"sales_sum":5}`,
	}, lines(out))

	out, _, err = run(t, "groupby", "--by", "year", "--count", path)
	require.NoError(t, err)
	assert.Equal(t, []string{
		`{"year":"2020","count":3}`,
		`{"year":"2021","count":2}`,
	}, lines(out))

	_, _, err = run(t, "groupby", "--by", "country", path)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	_, _, err = run(t, "groupby", "--by", "country", "--agg", "sales", path)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestMerge(t *testing.T) {
	dir := t.TempDir()
	left := filepath.Join(dir, "left.jsonl")
	right := filepath.Join(dir, "right.jsonl")
	require.NoError(t, os.WriteFile(left, []byte(
		`{"k":1,"v":"p"}`+"\n"+`{"k":2,"v":"q"}`+"\n"), 0o600))
	require.NoError(t, os.WriteFile(right, []byte(
		`{"k":1,"v":"x"}`+"\n"+`{"k":3,"v":"y"}`+"\n"), 0o600))

	out, _, err := run(t, "merge", "--on", "k", "--how", "outer", "--schema", "k:int64,v:text", left, right)
	require.NoError(t, err)
	assert.Equal(t, []string{
		`{"k":1,"v_x":"p","v_y":"x"}`,
		`{"k":2,"v_x":"q","v_y":null}`,
		`{"k":3,"v_x":null,"v_y":"y"}`,
	}, lines(out))

	_, _, err = run(t, "merge", "--on", "k", "--how", "cross", "--schema", "k:int64,v:text", left, right)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	// without --schema the key and value types are inferred
	out, _, err = run(t, "merge", "--on", "k", left, right)
	require.NoError(t, err)
	assert.Equal(t, []string{`{"k":1,"v_x":"p","v_y":"x"}`}, lines(out))

	_, _, err = run(t, "merge", "--on", "k", "--left-on", "k", left, right)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestDescribe(t *testing.T) {
	out, _, err := run(t, "describe", writeSales(t))
	require.NoError(t, err)
	rows := lines(out)
	require.Len(t, rows, 3)
	assert.Equal(t,
		`{"column":"country","type":"categorical","count":4,"nulls":1,"mean":null,"std":null,"min":null,"max":null}`,
		rows[0])
	assert.True(t, strings.HasPrefix(rows[1], `{"column":"sales","type":"float64","count":4,"nulls":1,"mean":16.25,`))
	assert.True(t, strings.HasSuffix(rows[1], `"min":5,"max":30}`))
}

func TestOutputFileRoundTrip(t *testing.T) {
	path := writeSales(t)
	dst := filepath.Join(t.TempDir(), "head.arrow")

	_, _, err := run(t, "head", "-n", "3", "-o", dst, "--compression", "zstd", path)
	require.NoError(t, err)

	out, _, err := run(t, "tail", "-n", "1", dst)
	require.NoError(t, err)
	assert.Equal(t, []string{`{"country":"ES","sales":30,"year":2021}`}, lines(out))
}

func TestCompressedOutput(t *testing.T) {
	path := writeSales(t)
	dir := t.TempDir()

	for _, name := range []string{"sales.jsonl.zst", "sales.jsonl.gz", "sales.arrow.lz4", "sales.arrow.s2"} {
		dst := filepath.Join(dir, name)
		_, _, err := run(t, "select", "--columns", "country,year", "-o", dst, path)
		require.NoError(t, err, name)

		out, _, err := run(t, "head", "-n", "1", dst)
		require.NoError(t, err, name)
		assert.Equal(t, []string{`{"country":"ES","year":2020}`}, lines(out), name)
	}
}

func TestProfileFlags(t *testing.T) {
	dir := t.TempDir()
	mem := filepath.Join(dir, "mem.prof")

	_, _, err := run(t, "describe", "--memprofile", mem, "--stats", writeSales(t))
	require.NoError(t, err)

	info, err := os.Stat(mem)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestMetricsFlag(t *testing.T) {
	_, stderr, err := run(t, "head", "--metrics", writeSales(t))
	require.NoError(t, err)
	assert.Contains(t, stderr, `tabula_operations_total{op="filter",status="success"} 1`)
}

func TestUnknownInputFormat(t *testing.T) {
	_, _, err := run(t, "head", "sales.csv")
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestLogsTaggedWithCommandAndRunID(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "tabula.log")
	cfgPath := filepath.Join(dir, "tabula.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(
		"logging:\n  level: debug\n  output_paths: ["+logPath+"]\n"), 0o600))

	var stdout, stderr bytes.Buffer
	root := newRootCommand(&stdout, &stderr)
	root.SetArgs([]string{"head", "-c", cfgPath, writeSales(t)})
	require.NoError(t, root.Execute())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	entries := lines(string(data))
	require.NotEmpty(t, entries)
	for _, entry := range entries {
		assert.Contains(t, entry, `"command":"head"`)
		assert.Regexp(t, `"run_id":"[0-9a-f-]{36}"`, entry)
	}
}
