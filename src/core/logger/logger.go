package logger

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/cnaize/blgen/src/core/logger/event"
)

type Logger struct {
	logger  *zerolog.Logger
	events  chan event.Sender
	running atomic.Bool
}

func NewLogger(logger *zerolog.Logger, qlen uint) *Logger {
	return &Logger{
		logger: logger,
		events: make(chan event.Sender, qlen),
	}
}

// NewZerolog builds a console logger, teeing into a rotated file when path is set.
func NewZerolog(level, path string) (*zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	var w io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}

		w = zerolog.MultiLevelWriter(w, &lumberjack.Logger{
			Filename:   path,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		})
	}

	logger := zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	return &logger, nil
}

func (l *Logger) Raw() *zerolog.Logger {
	return l.logger
}

// Run starts async delivery; until then events are sent inline.
func (l *Logger) Run(ctx context.Context, workers uint) {
	l.running.Store(true)
	for range workers {
		go l.sendLoop(ctx)
	}
}

func (l *Logger) Log(e event.Sender) {
	if !l.running.Load() {
		e.Send(l.logger)
		return
	}

	select {
	case l.events <- e:
	default:
		l.logger.Warn().Msgf("event dropped: %T", e)
	}
}

// Close switches back to inline delivery and flushes queued events.
func (l *Logger) Close() error {
	l.running.Store(false)
	for {
		select {
		case e := <-l.events:
			e.Send(l.logger)
		default:
			return nil
		}
	}
}

func (l *Logger) sendLoop(ctx context.Context) {
	for {
		select {
		case e := <-l.events:
			e.Send(l.logger)
		case <-ctx.Done():
			return
		}
	}
}
