// Package hashjoin computes the row pairing of an equi-join with a
// build/probe hash join. Materializing the joined columns is left to the
// caller, which gathers each side with the returned index arrays.
package hashjoin

import (
	"github.com/ajitpratap0/tabula/pkg/columnar"
	stringpool "github.com/ajitpratap0/tabula/pkg/strings"
)

// Policy selects which unmatched rows survive the join
type Policy struct {
	KeepUnmatchedLeft  bool
	KeepUnmatchedRight bool
}

// Pairs is the join result: row k pairs Left[k] with Right[k]; -1 on either
// side means there is no row there and the output is null-filled.
type Pairs struct {
	Left  []int
	Right []int
}

// Len returns the number of result rows
func (p *Pairs) Len() int { return len(p.Left) }

func (p *Pairs) add(l, r int) {
	p.Left = append(p.Left, l)
	p.Right = append(p.Right, r)
}

// Stats summarizes one join execution
type Stats struct {
	BuildRows      int
	BuildKeys      int
	ProbeRows      int
	Matches        int
	NullKeyRows    int
	UnmatchedLeft  int
	UnmatchedRight int
}

// Join pairs rows of the left and right key columns. Rows whose key has a
// null component never match. Output order is probe order, with unmatched
// right rows appended in ascending order.
func Join(left, right []columnar.Column, sep string, policy Policy) (*Pairs, Stats, error) {
	lenc, renc, err := columnar.NewJoinKeyEncoders(left, right, sep)
	if err != nil {
		return nil, Stats{}, err
	}

	index, stats := build(renc)
	stats.ProbeRows = lenc.Rows()

	pairs := &Pairs{
		Left:  make([]int, 0, lenc.Rows()),
		Right: make([]int, 0, lenc.Rows()),
	}
	var matched []bool
	if policy.KeepUnmatchedRight {
		matched = make([]bool, renc.Rows())
	}

	for l := 0; l < lenc.Rows(); l++ {
		key, ok := lenc.JoinKey(l)
		if !ok {
			stats.NullKeyRows++
			if policy.KeepUnmatchedLeft {
				pairs.add(l, -1)
				stats.UnmatchedLeft++
			}
			continue
		}

		rows, found := index[stringpool.BytesToString(key)]
		if !found {
			if policy.KeepUnmatchedLeft {
				pairs.add(l, -1)
				stats.UnmatchedLeft++
			}
			continue
		}
		for _, r := range rows {
			pairs.add(l, r)
			if matched != nil {
				matched[r] = true
			}
		}
		stats.Matches += len(rows)
	}

	for r, hit := range matched {
		if !hit {
			pairs.add(-1, r)
			stats.UnmatchedRight++
		}
	}
	return pairs, stats, nil
}

// build indexes the right side by key, skipping rows with a null component
func build(enc *columnar.KeyEncoder) (map[string][]int, Stats) {
	n := enc.Rows()
	index := make(map[string][]int, n)
	stats := Stats{BuildRows: n}
	for r := 0; r < n; r++ {
		key, ok := enc.JoinKey(r)
		if !ok {
			stats.NullKeyRows++
			continue
		}
		index[string(key)] = append(index[string(key)], r)
	}
	stats.BuildKeys = len(index)
	return index, stats
}
