package table

import (
	"strings"
	"time"

	"github.com/ajitpratap0/tabula/internal/hashjoin"
	"github.com/ajitpratap0/tabula/pkg/columnar"
	"github.com/ajitpratap0/tabula/pkg/errors"
)

// JoinType selects which unmatched rows a merge keeps
type JoinType int

const (
	// Inner keeps matched rows only
	Inner JoinType = iota
	// Left keeps every left row
	Left
	// Right keeps every right row
	Right
	// Outer keeps every row of both sides
	Outer
)

// Suffixes appended to non-key columns whose names collide across sides
const (
	LeftSuffix  = "_x"
	RightSuffix = "_y"
)

var joinTypeNames = [...]string{Inner: "inner", Left: "left", Right: "right", Outer: "outer"}

func (j JoinType) String() string {
	if j < 0 || int(j) >= len(joinTypeNames) {
		return "unknown"
	}
	return joinTypeNames[j]
}

// ParseJoinType resolves a case-insensitive join type name
func ParseJoinType(name string) (JoinType, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "full" || key == "full_outer" {
		return Outer, nil
	}
	for j, n := range joinTypeNames {
		if n == key {
			return JoinType(j), nil
		}
	}
	return 0, errors.New(errors.ErrorTypeValidation, "unknown join type").
		WithDetail("how", name)
}

func (j JoinType) policy() hashjoin.Policy {
	return hashjoin.Policy{
		KeepUnmatchedLeft:  j == Left || j == Outer,
		KeepUnmatchedRight: j == Right || j == Outer,
	}
}

// Merge joins t with right on a single key column present on both sides
func (t *Table) Merge(right *Table, on string, how JoinType) (*Table, error) {
	return t.MergeLeftRight(right, []string{on}, []string{on}, how)
}

// MergeOn joins t with right on key columns that share names on both sides
func (t *Table) MergeOn(right *Table, on []string, how JoinType) (*Table, error) {
	return t.MergeLeftRight(right, on, on, how)
}

// MergeLeftRight joins t with right, pairing leftOn[i] with rightOn[i]. Key
// columns appear once, under the left name, holding the left value or, for
// rows without a left match, the right value. Inputs are fully validated
// before any row is scanned.
func (t *Table) MergeLeftRight(right *Table, leftOn, rightOn []string, how JoinType) (*Table, error) {
	start := time.Now()
	out, stats, err := t.merge(right, leftOn, rightOn, how)
	ev := Event{Op: OpMerge, Start: start, InputRows: t.rowCount, JoinType: how.String(), Join: stats}
	if right != nil {
		ev.InputRows += right.rowCount
	}
	t.emit(ev, out, err)
	return out, err
}

func (t *Table) merge(right *Table, leftOn, rightOn []string, how JoinType) (*Table, *JoinStats, error) {
	plan, err := t.planMerge(right, leftOn, rightOn, how)
	if err != nil {
		return nil, nil, err
	}

	pairs, js, err := hashjoin.Join(plan.leftKeys, plan.rightKeys, columnar.DefaultSeparator, how.policy())
	if err != nil {
		return nil, nil, err
	}

	out := t.derive(pairs.Len())
	for i, c := range t.columns {
		var col columnar.Column
		if k, isKey := plan.leftKeyPos[i]; isKey {
			col, err = columnar.Coalesce(c.Name(), c, plan.rightKeys[k], pairs.Left, pairs.Right)
		} else {
			col, err = gatherAs(c, pairs.Left, plan.leftName(c.Name()))
		}
		if err != nil {
			return nil, nil, err
		}
		if err := out.addUnique(col); err != nil {
			return nil, nil, err
		}
	}
	for _, c := range right.columns {
		if plan.rightKeyNames[strings.ToLower(c.Name())] {
			continue
		}
		col, err := gatherAs(c, pairs.Right, plan.rightName(c.Name()))
		if err != nil {
			return nil, nil, err
		}
		if err := out.addUnique(col); err != nil {
			return nil, nil, err
		}
	}
	return out, &JoinStats{
		BuildKeys:      js.BuildKeys,
		Matches:        js.Matches,
		NullKeyRows:    js.NullKeyRows,
		UnmatchedLeft:  js.UnmatchedLeft,
		UnmatchedRight: js.UnmatchedRight,
	}, nil
}

type mergePlan struct {
	leftKeys      []columnar.Column
	rightKeys     []columnar.Column
	leftKeyPos    map[int]int
	leftKeyNames  map[string]bool
	rightKeyNames map[string]bool
	leftOther     map[string]bool
	rightOther    map[string]bool
}

// planMerge resolves and validates key columns and name collisions
func (t *Table) planMerge(right *Table, leftOn, rightOn []string, how JoinType) (*mergePlan, error) {
	if right == nil {
		return nil, errors.New(errors.ErrorTypeValidation, "right table is nil")
	}
	if how < Inner || how > Outer {
		return nil, errors.New(errors.ErrorTypeValidation, "unknown join type").
			WithDetail("how", int(how))
	}
	if len(leftOn) == 0 || len(rightOn) == 0 {
		return nil, errors.New(errors.ErrorTypeValidation, "merge requires at least one key column")
	}
	if len(leftOn) != len(rightOn) {
		return nil, errors.New(errors.ErrorTypeValidation, "left and right key lists differ in length").
			WithDetail("left", len(leftOn)).
			WithDetail("right", len(rightOn))
	}

	p := &mergePlan{
		leftKeys:      make([]columnar.Column, len(leftOn)),
		rightKeys:     make([]columnar.Column, len(rightOn)),
		leftKeyPos:    make(map[int]int, len(leftOn)),
		leftKeyNames:  make(map[string]bool, len(leftOn)),
		rightKeyNames: make(map[string]bool, len(rightOn)),
		leftOther:     make(map[string]bool),
		rightOther:    make(map[string]bool),
	}
	for i := range leftOn {
		lpos, ok := t.index[strings.ToLower(leftOn[i])]
		if !ok {
			return nil, notFound(leftOn[i]).WithDetail("side", "left")
		}
		rpos, ok := right.index[strings.ToLower(rightOn[i])]
		if !ok {
			return nil, notFound(rightOn[i]).WithDetail("side", "right")
		}
		lc, rc := t.columns[lpos], right.columns[rpos]
		if !columnar.KeyCompatible(lc, rc) {
			return nil, errors.New(errors.ErrorTypeTypeMismatch, "incompatible join key types").
				WithDetail("left", lc.Name()).
				WithDetail("left_type", lc.DataType().String()).
				WithDetail("right", rc.Name()).
				WithDetail("right_type", rc.DataType().String())
		}
		if _, dup := p.leftKeyPos[lpos]; dup {
			return nil, errors.New(errors.ErrorTypeValidation, "key column listed more than once").
				WithDetail("column", lc.Name())
		}
		p.leftKeys[i] = lc
		p.rightKeys[i] = rc
		p.leftKeyPos[lpos] = i
		p.leftKeyNames[strings.ToLower(lc.Name())] = true
		p.rightKeyNames[strings.ToLower(rc.Name())] = true
	}

	for _, c := range t.columns {
		if key := strings.ToLower(c.Name()); !p.leftKeyNames[key] {
			p.leftOther[key] = true
		}
	}
	for _, c := range right.columns {
		if key := strings.ToLower(c.Name()); !p.rightKeyNames[key] {
			p.rightOther[key] = true
		}
	}
	return p, nil
}

// leftName suffixes a left non-key column that collides with a right
// non-key column
func (p *mergePlan) leftName(name string) string {
	if p.rightOther[strings.ToLower(name)] {
		return name + LeftSuffix
	}
	return name
}

// rightName suffixes a right non-key column that collides with any left
// non-key column or with a left key name
func (p *mergePlan) rightName(name string) string {
	key := strings.ToLower(name)
	if p.leftOther[key] || p.leftKeyNames[key] {
		return name + RightSuffix
	}
	return name
}

func gatherAs(c columnar.Column, indices []int, name string) (columnar.Column, error) {
	g, err := columnar.Gather(c, indices)
	if err != nil {
		return nil, err
	}
	if name != c.Name() {
		g = g.Rename(name)
	}
	return g, nil
}

// addUnique appends col, rejecting a name already present
func (t *Table) addUnique(col columnar.Column) error {
	if t.ContainsColumn(col.Name()) {
		return errors.New(errors.ErrorTypeValidation, "duplicate column name in result").
			WithDetail("column", col.Name())
	}
	t.appendColumn(col)
	return nil
}
