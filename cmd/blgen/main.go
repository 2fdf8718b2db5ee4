package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/appleboy/graceful"
	"github.com/rs/zerolog"

	"github.com/cnaize/blgen/src/config"
	"github.com/cnaize/blgen/src/core/fetcher"
	"github.com/cnaize/blgen/src/core/logger"
	"github.com/cnaize/blgen/src/core/output"
	"github.com/cnaize/blgen/src/core/pipeline"
	"github.com/cnaize/blgen/src/core/updater"
	"github.com/cnaize/blgen/src/server"
	"github.com/cnaize/blgen/src/types"
)

func main() {
	var cfg config.Config
	// parse config
	flag.StringVar(&cfg.LogLevel, "log-level", zerolog.LevelInfoValue, "zerolog level")
	flag.StringVar(&cfg.LogFile, "log-file", "", "also write logs to this file (rotated)")
	flag.UintVar(&cfg.LoggersCount, "loggers-count", 1, "async logger workers in daemon mode")
	flag.Var(&cfg.Sources, "source", "blacklist source url or path (repeatable, comma separated)")
	flag.StringVar(&cfg.WhitelistSource, "whitelist", "", "whitelist source url or path")
	flag.DurationVar(&cfg.FetchTimeout, "fetch-timeout", fetcher.DefaultTimeout, "fetch timeout per source")
	flag.UintVar(&cfg.FetchWorkers, "fetch-workers", fetcher.DefaultWorkers, "concurrent source fetches")
	flag.StringVar(&cfg.OutputMode, "mode", string(output.ModeRaw), "output mode: raw or ipset")
	flag.StringVar(&cfg.OutputPath, "output", "", "output file (stdout if empty)")
	flag.StringVar(&cfg.SetName, "set-name", output.DefaultSetName, "ipset name for ipset mode")
	flag.BoolVar(&cfg.HostSuffix, "host-suffix", false, "keep /32 on host entries")
	flag.StringVar(&cfg.Username, "username", "", "api basic auth username")
	flag.StringVar(&cfg.Password, "password", "", "api basic auth password")
	flag.StringVar(&cfg.ApiServerAddr, "api-addr", "", "serve the list over http and keep updating it")
	flag.DurationVar(&cfg.UpdateInterval, "update-interval", 24*time.Hour, "update frequency in daemon mode")
	flag.Parse()

	// create logger
	zl, err := logger.NewZerolog(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %s\n", err.Error())
		os.Exit(2)
	}
	log := logger.NewLogger(zl, 1024)
	defer log.Close()

	if err := cfg.Validate(); err != nil {
		log.Raw().Error().Err(err).Msg("Invalid configuration")
		os.Exit(2)
	}
	mode, _ := output.ParseMode(cfg.OutputMode)

	// main context
	mainCtx, mainCancel := context.WithCancel(context.Background())
	defer mainCancel()

	// create pipeline
	p := pipeline.NewPipeline(
		pipeline.Config{
			Sources:         cfg.Sources,
			WhitelistSource: cfg.WhitelistSource,
			OutputMode:      mode,
			SetName:         cfg.SetName,
			HostSuffix:      cfg.HostSuffix,
		},
		fetcher.NewFetcher(nil, cfg.FetchTimeout, int(cfg.FetchWorkers)),
		log,
	)
	blacklist := types.NewBlackList()

	if cfg.ApiServerAddr == "" {
		if err := runOnce(mainCtx, p, cfg.OutputPath, log); err != nil {
			log.Raw().Error().Err(err).Msg("Build failed")
			log.Close()
			os.Exit(exitCode(err))
		}
		return
	}

	log.Raw().Info().Str("addr", cfg.ApiServerAddr).Msg("Running blgen...")
	log.Run(mainCtx, cfg.LoggersCount)

	u := updater.NewUpdater(p, blacklist, cfg.OutputPath, 0, log)
	if _, err := u.Update(mainCtx); err != nil {
		log.Raw().Error().Err(err).Msg("Initial update failed")
	}

	srv := server.NewServer(cfg.ApiServerAddr, cfg.Username, cfg.Password, blacklist, u, p.Options())

	// run daemon
	m := graceful.NewManager(graceful.WithContext(mainCtx))
	m.AddRunningJob(func(ctx context.Context) error {
		u.Run(ctx, cfg.UpdateInterval)
		return nil
	})
	m.AddRunningJob(func(ctx context.Context) error {
		defer mainCancel()

		if err := srv.Run(ctx); err != nil {
			log.Raw().Error().Err(err).Msg("Server failed")
		}

		return nil
	})
	m.AddShutdownJob(srv.Close)
	m.AddShutdownJob(log.Close)

	// wait till the end
	<-m.Done()
}

func runOnce(ctx context.Context, p *pipeline.Pipeline, path string, log *logger.Logger) error {
	res, err := p.Build(ctx)
	if err != nil {
		return err
	}

	if path == "" {
		return p.Render(os.Stdout, res.Set)
	}

	if err := output.WriteFile(path, res.Set, p.Options()); err != nil {
		return fmt.Errorf("%s: write: %w", path, err)
	}
	log.Raw().Info().Str("path", path).Int("size", res.Set.Len()).Msg("Blacklist written")

	return nil
}

func exitCode(err error) int {
	if errors.Is(err, types.ErrInvalidConfiguration) {
		return 2
	}

	return 1
}
