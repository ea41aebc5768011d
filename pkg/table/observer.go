package table

import "time"

// Operation names a row-producing table operation
type Operation string

const (
	OpFilter         Operation = "filter"
	OpSelect         Operation = "select"
	OpGatherRows     Operation = "gather_rows"
	OpConcat         Operation = "concat"
	OpMerge          Operation = "merge"
	OpGroupAgg       Operation = "groupby.agg"
	OpGroupCount     Operation = "groupby.count"
	OpGroupFilter    Operation = "groupby.filter"
	OpGroupTransform Operation = "groupby.transform"
	OpGroupApply     Operation = "groupby.apply"
)

// Event describes one completed operation
type Event struct {
	Op         Operation
	Start      time.Time
	Duration   time.Duration
	InputRows  int
	OutputRows int
	Columns    int
	// Groups is set for groupby operations
	Groups int
	// JoinType is set for merges
	JoinType string
	// Join is set for successful merges
	Join *JoinStats
	// Err is set when the operation failed; no table was produced
	Err error
}

// JoinStats summarizes the row pairing of a merge
type JoinStats struct {
	// BuildKeys is the number of distinct non-null right keys
	BuildKeys int
	// Matches is the number of matched row pairs
	Matches int
	// NullKeyRows counts rows of either side with a null key component
	NullKeyRows    int
	UnmatchedLeft  int
	UnmatchedRight int
}

// Observer receives an event after every row-producing operation. Tables
// never log on their own; diagnostics flow through observers.
type Observer interface {
	OnOperation(event Event)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(event Event)

// OnOperation calls f(event)
func (f ObserverFunc) OnOperation(event Event) { f(event) }

// MultiObserver fans events out to several observers in order
type MultiObserver []Observer

// OnOperation forwards event to every non-nil observer
func (m MultiObserver) OnOperation(event Event) {
	for _, o := range m {
		if o != nil {
			o.OnOperation(event)
		}
	}
}

type nopObserver struct{}

func (nopObserver) OnOperation(Event) {}
