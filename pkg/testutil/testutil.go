// Package testutil provides testing utilities for tabula
package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/tabula/pkg/columnar"
	"github.com/ajitpratap0/tabula/pkg/table"
)

// TestLogger creates a test logger that writes to the test output.
// The logger is automatically cleaned up when the test completes.
func TestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// SalesTable returns a five-row fixture:
//
//	country (categorical)  sales (float64)  year (int64)
//	ES                     10               2020
//	FR                     20               2020
//	ES                     30               2021
//	null                   5                2021
//	FR                     null             2020
func SalesTable(t *testing.T) *table.Table {
	t.Helper()
	country, err := columnar.NewCategorical("country",
		[]string{"ES", "FR", "ES", "", "FR"},
		[]bool{false, false, false, true, false})
	require.NoError(t, err)
	sales, err := columnar.NewFloat64("sales",
		[]float64{10, 20, 30, 5, 0},
		[]bool{false, false, false, false, true})
	require.NoError(t, err)
	year, err := columnar.NewInt64("year", []int64{2020, 2020, 2021, 2021, 2020}, nil)
	require.NoError(t, err)

	tbl, err := table.NewFromColumns(country, sales, year)
	require.NoError(t, err)
	return tbl
}

// EventRecorder is a table.Observer that keeps every event it receives
type EventRecorder struct {
	mu     sync.Mutex
	events []table.Event
}

// OnOperation implements table.Observer
func (r *EventRecorder) OnOperation(ev table.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a copy of the recorded events
func (r *EventRecorder) Events() []table.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]table.Event(nil), r.events...)
}

// Ops returns the operation of each recorded event in order
func (r *EventRecorder) Ops() []table.Operation {
	events := r.Events()
	ops := make([]table.Operation, len(events))
	for i, ev := range events {
		ops[i] = ev.Op
	}
	return ops
}
