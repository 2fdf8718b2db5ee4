package event

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/cnaize/blgen/src/core/metrics"
)

var _ Sender = Stage{}

// Stage reports the prefix counts entering and leaving a pipeline stage.
type Stage struct {
	Message

	Name     string
	In       int
	Out      int
	Duration time.Duration
}

func NewStage(lvl zerolog.Level, msg, name string, in, out int, duration time.Duration) Stage {
	return Stage{
		Message:  NewMessage(lvl, msg),
		Name:     name,
		In:       in,
		Out:      out,
		Duration: duration,
	}
}

func (e Stage) Send(logger *zerolog.Logger) {
	metrics.Get().Prefixes.WithLabelValues(e.Name).Set(float64(e.Out))

	logger.
		WithLevel(e.Lvl).
		Str("stage", e.Name).
		Int("in", e.In).
		Int("out", e.Out).
		Dur("duration", e.Duration).
		Msg(e.Msg)
}
