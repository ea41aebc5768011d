// Package columnar implements tabula's typed column storage: the column
// variants, their null tracking, and the row-gather utility shared by the
// table, grouping and join layers.
//
// # Overview
//
// Every column satisfies the sealed Column interface. Three storage layouts
// exist:
//
//   - DenseColumn[T]: a contiguous []T plus a bit-packed null mask, for
//     int64, int32, float64, float32, bool and date (time.Time) values
//   - TextColumn: nullable string references, where a missing reference is
//     null and "" is an ordinary value
//   - CategoricalColumn: int32 codes into a shared, immutable Dictionary,
//     with NullCode (-1) marking nulls
//
// Columns are immutable once built. Filter and Gather return new columns;
// categorical results keep the source dictionary, so two columns drawn from
// the same domain stay code-compatible for later joins.
//
// # Building Columns
//
// From typed arrays and an optional null mask:
//
//	price, err := columnar.NewFloat64("price", []float64{10.5, 0, 15.75}, []bool{false, true, false})
//	country, err := columnar.NewCategorical("country", []string{"ES", "FR", "ES"}, nil)
//
// From raw loader cells, with nil meaning null:
//
//	col, err := columnar.BuildColumnWithOptions("city", columnar.Text, raw, columnar.DefaultLoadOptions())
//
// # Masks
//
// Dense comparisons (Gt, Ge, Lt, Le, Eq, Ne, Between) return a Mask with one
// entry per row. A null cell is always false:
//
//	expensive := price.Gt(12)
//	spain := country.EqualsMask("ES")
//
// # Gather
//
// Gather(indices) rebuilds a column from arbitrary source rows; an index of
// -1 yields a null row. Concat stacks columns of one type and Coalesce
// produces the merged key column of a join.
//
// # Keys
//
// KeyEncoder renders composite group and join keys. Components are joined
// with a caller-supplied separator (DefaultSeparator is "|") and are not
// escaped, so a separator occurring inside text key values may make distinct
// keys collide.
package columnar
