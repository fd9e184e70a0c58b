package pipeline

import (
	"go.uber.org/zap"

	"github.com/bladeworks/qloft/internal/logging"
)

// Level classifies status events. Designed recoveries (loft fallback,
// clamped root filtering) surface as warnings, everything else as info;
// hard failures travel as errors, not events.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
)

// Event is one status report emitted after a pipeline stage.
type Event struct {
	Stage   string
	State   State
	Level   Level
	Message string
}

// Sink receives status events. Implementations must not block; the
// pipeline calls them synchronously between stages.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Event)

func (f SinkFunc) Emit(e Event) { f(e) }

// LogSink forwards events to a structured logger.
type LogSink struct {
	Log *logging.Logger
}

func (s *LogSink) Emit(e Event) {
	fields := []zap.Field{
		zap.String("stage", e.Stage),
		zap.String("state", e.State.String()),
	}
	if e.Level == LevelWarning {
		s.Log.Warn(e.Message, fields...)
		return
	}
	s.Log.Info(e.Message, fields...)
}
