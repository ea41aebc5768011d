// Package tabula is an in-memory columnar table engine: typed columns with
// null tracking, dictionary-encoded categorical columns, boolean-mask
// filtering, vectorized arithmetic, two-phase grouping and hash joins.
//
// Every operation returns a new table. Columns are immutable once built, so
// a projection or filter result may share column storage with its input, and
// categorical columns share their dictionary across every derived table.
//
// # Quick Start
//
//	import (
//	    "github.com/ajitpratap0/tabula/pkg/columnar"
//	    "github.com/ajitpratap0/tabula/pkg/table"
//	    "github.com/ajitpratap0/tabula/pkg/vector"
//	)
//
//	country, _ := columnar.NewCategorical("country", []string{"ES", "FR", "ES"}, nil)
//	sales, _ := columnar.NewFloat64("sales", []float64{10, 20, 30}, nil)
//	t, _ := table.NewFromColumns(country, sales)
//
//	g, _ := t.GroupBy("country")
//	totals, _ := g.Agg(table.Aggregation{Column: "sales", Func: vector.AggSum})
//
//	joined, _ := totals.Merge(t, "country", table.Left)
//
// # Key Packages
//
//	pkg/columnar      - Column types, null bitmap, dictionary, builders, key encoding
//	pkg/vector        - Mask algebra, arithmetic, reductions, aggregate kernels
//	pkg/table         - Table, Filter/Select/GatherRows, GroupBy, Merge, observers
//	internal/grouping - Group partition construction
//	internal/hashjoin - Hash-join build and probe
//	pkg/arrowio       - Apache Arrow records and IPC streams
//	pkg/json          - JSON lines import and export
//	pkg/schema        - Schema inference for untyped inputs
//	pkg/compression   - Compressed table files
//	pkg/config        - YAML configuration
//	pkg/errors        - Structured error handling
//	pkg/logger        - Structured logging
//	pkg/metrics       - Prometheus operation metrics
//	pkg/observability - OpenTelemetry tracing
//
// # Command Line
//
// cmd/tabula exposes the engine over Arrow IPC and JSON lines files:
//
//	tabula head -n 10 sales.arrow
//	tabula filter --column sales --gt 15 sales.jsonl.zst
//	tabula groupby --by country --agg sales:sum,sales:mean sales.arrow
//	tabula merge --on id --how outer left.arrow right.arrow -o joined.arrow
//	tabula describe sales.arrow
//
// # Configuration
//
// Configuration is loaded from YAML with ${VAR_NAME} environment
// substitution. See pkg/config for the available settings.
package tabula
