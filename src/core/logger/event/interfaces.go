package event

import (
	"fmt"

	"github.com/rs/zerolog"
)

type StatusType string

const (
	StatusTypeOk          StatusType = "ok"
	StatusTypeUnavailable StatusType = "unavailable"
	StatusTypePartial     StatusType = "partial"
	StatusTypeFailed      StatusType = "failed"
)

type Sender interface {
	Send(logger *zerolog.Logger)
}

var _ Sender = Message{}

type Message struct {
	Lvl zerolog.Level
	Msg string
}

func NewMessage(lvl zerolog.Level, format string, args ...any) Message {
	if len(args) > 0 {
		format = fmt.Sprintf(format, args...)
	}

	return Message{
		Lvl: lvl,
		Msg: format,
	}
}

func (e Message) Send(logger *zerolog.Logger) {
	logger.WithLevel(e.Lvl).Msg(e.Msg)
}
