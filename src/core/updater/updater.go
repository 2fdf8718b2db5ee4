package updater

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/cnaize/blgen/src/core/logger"
	"github.com/cnaize/blgen/src/core/logger/event"
	"github.com/cnaize/blgen/src/core/output"
	"github.com/cnaize/blgen/src/core/pipeline"
	"github.com/cnaize/blgen/src/types"
)

type Builder interface {
	Build(ctx context.Context) (pipeline.Result, error)
	Options() output.Options
}

// Updater rebuilds the blacklist, publishes it and optionally writes it to disk.
type Updater struct {
	builder    Builder
	blacklist  *types.BlackList
	outputPath string
	timeout    time.Duration
	logger     *logger.Logger

	group singleflight.Group
}

func NewUpdater(builder Builder, blacklist *types.BlackList, outputPath string, timeout time.Duration, logger *logger.Logger) *Updater {
	return &Updater{
		builder:    builder,
		blacklist:  blacklist,
		outputPath: outputPath,
		timeout:    timeout,
		logger:     logger,
	}
}

// Update runs one build; concurrent callers share the same run.
func (u *Updater) Update(ctx context.Context) (pipeline.Result, error) {
	res, err, _ := u.group.Do("update", func() (any, error) {
		return u.update(ctx)
	})
	if err != nil {
		return pipeline.Result{}, err
	}

	return res.(pipeline.Result), nil
}

// Run updates every interval until ctx is done.
func (u *Updater) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := u.Update(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				u.logger.Log(event.NewError(zerolog.ErrorLevel, "update failed", "update", err))
			}
		case <-ctx.Done():
			return
		}
	}
}

func (u *Updater) update(ctx context.Context) (pipeline.Result, error) {
	if u.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.timeout)
		defer cancel()
	}

	res, err := u.builder.Build(ctx)
	if err != nil {
		return pipeline.Result{}, fmt.Errorf("build: %w", err)
	}

	u.blacklist.Store(res.Set)

	if u.outputPath != "" {
		if err := output.WriteFile(u.outputPath, res.Set, u.builder.Options()); err != nil {
			return res, fmt.Errorf("%s: write: %w", u.outputPath, err)
		}
		u.logger.Raw().Info().Str("path", u.outputPath).Int("size", res.Set.Len()).Msg("Blacklist written")
	}

	return res, nil
}
