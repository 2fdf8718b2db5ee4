package event

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/cnaize/blgen/src/core/metrics"
)

var _ Sender = Build{}

type Build struct {
	Message

	Status   StatusType
	Sources  int
	Failed   int
	Size     int
	Duration time.Duration
	Err      error
}

func NewBuild(lvl zerolog.Level, msg string, status StatusType) Build {
	return Build{
		Message: NewMessage(lvl, msg),
		Status:  status,
	}
}

func (e Build) Send(logger *zerolog.Logger) {
	// handle metrics
	defer func() {
		metrics.Get().BuildsTotal.WithLabelValues(string(e.Status)).Inc()
		if e.Err == nil {
			metrics.Get().LastBuildTimestamp.SetToCurrentTime()
		}
	}()

	logger.
		WithLevel(e.Lvl).
		Err(e.Err).
		Str("status", string(e.Status)).
		Int("sources", e.Sources).
		Int("failed", e.Failed).
		Int("size", e.Size).
		Dur("duration", e.Duration).
		Msg(e.Msg)
}
