package event

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/cnaize/blgen/src/core/metrics"
)

var _ Sender = Fetch{}

// Fetch reports one source read, successful or not.
type Fetch struct {
	Message

	Source    string
	List      string
	Bytes     int
	Valid     int
	Discarded int
	Skipped   int
	Duration  time.Duration
	Err       error
}

func NewFetch(lvl zerolog.Level, msg, list, source string) Fetch {
	return Fetch{
		Message: NewMessage(lvl, msg),
		Source:  source,
		List:    list,
	}
}

func (e Fetch) Status() StatusType {
	if e.Err != nil {
		return StatusTypeUnavailable
	}

	return StatusTypeOk
}

func (e Fetch) Send(logger *zerolog.Logger) {
	// handle metrics
	defer func() {
		m := metrics.Get()
		m.SourcesFetchedTotal.WithLabelValues(e.List, string(e.Status())).Inc()
		m.SourceFetchSeconds.WithLabelValues(e.List).Observe(e.Duration.Seconds())
		m.EntriesTotal.WithLabelValues(e.List, "valid").Add(float64(e.Valid))
		m.EntriesTotal.WithLabelValues(e.List, "discarded").Add(float64(e.Discarded))
		m.EntriesTotal.WithLabelValues(e.List, "skipped").Add(float64(e.Skipped))
	}()

	if e.Err != nil {
		logger.
			WithLevel(e.Lvl).
			Err(e.Err).
			Str("list", e.List).
			Str("source", e.Source).
			Str("status", string(e.Status())).
			Dur("duration", e.Duration).
			Msg(e.Msg)

		return
	}

	logger.
		WithLevel(e.Lvl).
		Str("list", e.List).
		Str("source", e.Source).
		Str("status", string(e.Status())).
		Int("bytes", e.Bytes).
		Int("valid", e.Valid).
		Int("discarded", e.Discarded).
		Int("skipped", e.Skipped).
		Dur("duration", e.Duration).
		Msg(e.Msg)
}
