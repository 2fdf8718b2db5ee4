// Package pipeline builds the final blacklist: fetch, normalize, merge and
// subtract the whitelist.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/cnaize/blgen/lib/util"
	"github.com/cnaize/blgen/src/core/fetcher"
	"github.com/cnaize/blgen/src/core/logger"
	"github.com/cnaize/blgen/src/core/logger/event"
	"github.com/cnaize/blgen/src/core/merger"
	"github.com/cnaize/blgen/src/core/normalizer"
	"github.com/cnaize/blgen/src/core/output"
	"github.com/cnaize/blgen/src/core/subtractor"
	"github.com/cnaize/blgen/src/types"
)

const (
	ListBlacklist = "blacklist"
	ListWhitelist = "whitelist"
)

type Config struct {
	Sources         []string
	WhitelistSource string
	OutputMode      output.Mode
	SetName         string
	HostSuffix      bool
}

// Fetcher reads raw source bytes.
type Fetcher interface {
	FetchAll(ctx context.Context, sources []string) []fetcher.Result
}

type SourceReport struct {
	Source string
	Stats  normalizer.Stats
	Err    error
}

func (r SourceReport) Ok() bool {
	return r.Err == nil
}

type Result struct {
	Set       types.PrefixSet
	Sources   []SourceReport
	Whitelist *SourceReport
	// minimal inputs of the subtraction
	Blacklist    types.PrefixSet
	WhitelistSet types.PrefixSet
	Duration     time.Duration
}

// Partial reports whether any configured source could not be read.
func (r Result) Partial() bool {
	for _, source := range r.Sources {
		if !source.Ok() {
			return true
		}
	}

	return r.Whitelist != nil && !r.Whitelist.Ok()
}

// Stats sums the normalizer counters of every source, whitelist included.
func (r Result) Stats() normalizer.Stats {
	var stats normalizer.Stats
	for _, source := range r.Sources {
		stats = stats.Add(source.Stats)
	}
	if r.Whitelist != nil {
		stats = stats.Add(r.Whitelist.Stats)
	}

	return stats
}

func (r Result) Discarded() int {
	return r.Stats().Discarded
}

func (r Result) Failed() int {
	var failed int
	for _, source := range r.Sources {
		if !source.Ok() {
			failed++
		}
	}

	return failed
}

type Pipeline struct {
	config  Config
	fetcher Fetcher
	logger  *logger.Logger
}

func NewPipeline(config Config, fetcher Fetcher, logger *logger.Logger) *Pipeline {
	return &Pipeline{
		config:  config,
		fetcher: fetcher,
		logger:  logger,
	}
}

// Build runs the whole pipeline. Unavailable sources are skipped; an empty
// source configuration or a done ctx is an error. An empty result is valid.
func (p *Pipeline) Build(ctx context.Context) (Result, error) {
	start := time.Now()
	if len(p.config.Sources) < 1 {
		err := fmt.Errorf("no sources: %w", types.ErrInvalidConfiguration)
		p.logger.Log(event.Build{
			Message: event.NewMessage(zerolog.ErrorLevel, "Build failed"),
			Status:  event.StatusTypeFailed,
			Err:     err,
		})

		return Result{}, err
	}

	sources := p.config.Sources
	if p.config.WhitelistSource != "" {
		sources = append(sources[:len(sources):len(sources)], p.config.WhitelistSource)
	}
	fetched := p.fetcher.FetchAll(ctx, sources)
	if err := ctx.Err(); err != nil {
		// failed fetches say nothing about the sources
		err = fmt.Errorf("fetch: %w", err)
		p.logger.Log(event.Build{
			Message:  event.NewMessage(zerolog.WarnLevel, "Build aborted"),
			Status:   event.StatusTypeFailed,
			Failed:   len(sources),
			Duration: time.Since(start),
			Err:      err,
		})

		return Result{}, err
	}

	var res Result

	// blacklist
	var prefixes []types.Prefix
	for _, fr := range fetched[:len(p.config.Sources)] {
		set, report := p.normalize(ListBlacklist, fr)
		res.Sources = append(res.Sources, report)
		prefixes = append(prefixes, set.Prefixes()...)
	}
	res.Blacklist = p.merge(ListBlacklist, types.NewPrefixSet(prefixes))

	// whitelist
	res.Set = res.Blacklist
	if p.config.WhitelistSource != "" {
		set, report := p.normalize(ListWhitelist, fetched[len(fetched)-1])
		res.Whitelist = &report
		res.WhitelistSet = p.merge(ListWhitelist, set)

		if !res.WhitelistSet.IsEmpty() {
			subtractStart := time.Now()
			res.Set = p.subtract(res.Blacklist, res.WhitelistSet)
			p.logger.Log(event.NewStage(zerolog.DebugLevel, "Whitelist applied", "result", res.Blacklist.Len(), res.Set.Len(), time.Since(subtractStart)))
		}
	}
	res.Duration = time.Since(start)

	status := event.StatusTypeOk
	lvl := zerolog.InfoLevel
	if res.Partial() {
		status = event.StatusTypePartial
		lvl = zerolog.WarnLevel
	}
	p.logger.Log(event.Build{
		Message:  event.NewMessage(lvl, "Blacklist built"),
		Status:   status,
		Sources:  len(res.Sources),
		Failed:   res.Failed(),
		Size:     res.Set.Len(),
		Duration: res.Duration,
	})

	return res, nil
}

// Render hands the final set to the output formatter.
func (p *Pipeline) Render(w io.Writer, set types.PrefixSet) error {
	return output.Render(w, set, p.Options())
}

func (p *Pipeline) Options() output.Options {
	return output.Options{
		Mode:       p.config.OutputMode,
		SetName:    p.config.SetName,
		HostSuffix: p.config.HostSuffix,
	}
}

func (p *Pipeline) normalize(list string, fr fetcher.Result) (types.PrefixSet, SourceReport) {
	e := event.NewFetch(zerolog.InfoLevel, "Source loaded", list, fr.Source)
	e.Duration = fr.Duration

	if !fr.Ok() {
		e.Lvl, e.Msg, e.Err = zerolog.WarnLevel, "Source skipped", fr.Err
		p.logger.Log(e)

		return types.PrefixSet{}, SourceReport{Source: fr.Source, Err: fr.Err}
	}

	set, stats, err := normalizer.NormalizeReader(bytes.NewReader(fr.Data))
	if err != nil {
		// keep what was read before the failure, but report the source as incomplete
		err = fmt.Errorf("%s: %w: %w", fr.Source, types.ErrSourceUnavailable, err)
		e.Lvl, e.Msg, e.Err = zerolog.WarnLevel, "Source truncated", err
	}

	e.Bytes = len(fr.Data)
	e.Valid, e.Discarded, e.Skipped = stats.Valid, stats.Discarded, stats.Skipped
	p.logger.Log(e)

	return set, SourceReport{Source: fr.Source, Stats: stats, Err: err}
}

func (p *Pipeline) merge(list string, set types.PrefixSet) types.PrefixSet {
	start := time.Now()
	merged := merger.Merge(set)
	p.logger.Log(event.NewStage(zerolog.DebugLevel, "Merged", list, set.Len(), merged.Len(), time.Since(start)))

	return merged
}

func (p *Pipeline) subtract(blacklist, whitelist types.PrefixSet) types.PrefixSet {
	result := subtractor.Subtract(blacklist, whitelist)

	// no whitelisted address may stay reachable
	table := result.Table()
	for i := 0; i < whitelist.Len(); i++ {
		util.Assert(!table.OverlapsPrefix(whitelist.At(i).Netip()), "%s: whitelisted prefix still blacklisted", whitelist.At(i))
	}

	return result
}
