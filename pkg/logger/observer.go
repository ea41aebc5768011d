package logger

import (
	"go.uber.org/zap"

	"github.com/ajitpratap0/tabula/pkg/table"
)

// Observer writes one entry per completed table operation. Successful
// operations are logged at debug level, failed ones at warn.
type Observer struct {
	log *zap.Logger
}

// NewObserver returns a table observer writing to l; nil uses the global
// logger
func NewObserver(l *zap.Logger) *Observer {
	if l == nil {
		l = Get()
	}
	return &Observer{log: l.Named("table")}
}

// OnOperation implements table.Observer
func (o *Observer) OnOperation(ev table.Event) {
	fields := []zap.Field{
		zap.String("op", string(ev.Op)),
		zap.Int("input_rows", ev.InputRows),
		zap.Duration("duration", ev.Duration),
	}
	if ev.Groups > 0 {
		fields = append(fields, zap.Int("groups", ev.Groups))
	}
	if ev.JoinType != "" {
		fields = append(fields, zap.String("join_type", ev.JoinType))
	}

	if ev.Err != nil {
		o.log.Warn("table operation failed", append(fields, zap.Error(ev.Err))...)
		return
	}
	fields = append(fields,
		zap.Int("output_rows", ev.OutputRows),
		zap.Int("columns", ev.Columns),
	)
	if js := ev.Join; js != nil {
		fields = append(fields,
			zap.Int("build_keys", js.BuildKeys),
			zap.Int("matches", js.Matches),
			zap.Int("null_key_rows", js.NullKeyRows),
			zap.Int("unmatched_left", js.UnmatchedLeft),
			zap.Int("unmatched_right", js.UnmatchedRight),
		)
	}
	o.log.Debug("table operation", fields...)
}
