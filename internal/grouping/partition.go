// Package grouping partitions table rows into groups by composite key
package grouping

import (
	"github.com/ajitpratap0/tabula/pkg/columnar"
)

// Partition maps every row of the source table to exactly one group. Groups
// are numbered in order of first appearance.
type Partition struct {
	// Rows holds the ascending source row indices of each group
	Rows [][]int
	// First holds the first source row of each group, used to rebuild keys
	First []int
	// RowGroup holds the group number of each source row
	RowGroup []int
}

// Build assigns rows to groups in two passes. The first pass encodes each
// row's key once, numbers groups and counts their rows; the second allocates
// one exact-size index array per group and fills it by cursor.
func Build(keys []columnar.Column, sep string) (*Partition, error) {
	enc, err := columnar.NewGroupKeyEncoder(keys, sep)
	if err != nil {
		return nil, err
	}

	n := enc.Rows()
	ids := make(map[string]int)
	rowGroup := make([]int, n)
	var counts, first []int

	for row := 0; row < n; row++ {
		key := enc.GroupKey(row)
		gid, ok := ids[string(key)]
		if !ok {
			gid = len(counts)
			ids[string(key)] = gid
			counts = append(counts, 0)
			first = append(first, row)
		}
		counts[gid]++
		rowGroup[row] = gid
	}

	rows := make([][]int, len(counts))
	for gid, c := range counts {
		rows[gid] = make([]int, 0, c)
	}
	for row, gid := range rowGroup {
		rows[gid] = append(rows[gid], row)
	}

	return &Partition{Rows: rows, First: first, RowGroup: rowGroup}, nil
}

// Len returns the number of groups
func (p *Partition) Len() int { return len(p.Rows) }
