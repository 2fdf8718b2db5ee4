package event

import (
	"github.com/rs/zerolog"

	"github.com/cnaize/blgen/src/core/metrics"
)

var _ Sender = Error{}

type Error struct {
	Message

	Stage string
	Err   error
}

func NewError(lvl zerolog.Level, msg, stage string, err error) Error {
	return Error{
		Message: NewMessage(lvl, msg),
		Stage:   stage,
		Err:     err,
	}
}

func (e Error) Send(logger *zerolog.Logger) {
	metrics.Get().ErrorsTotal.WithLabelValues(e.Stage).Inc()

	logger.
		WithLevel(e.Lvl).
		Err(e.Err).
		Str("stage", e.Stage).
		Msg(e.Msg)
}
