package updater

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/cnaize/blgen/src/core/fetcher"
	"github.com/cnaize/blgen/src/core/logger"
	"github.com/cnaize/blgen/src/core/output"
	"github.com/cnaize/blgen/src/core/pipeline"
	"github.com/cnaize/blgen/src/types"
)

type fakeBuilder struct {
	calls atomic.Int32
	delay time.Duration
	set   types.PrefixSet
	err   error
}

func (b *fakeBuilder) Build(ctx context.Context) (pipeline.Result, error) {
	b.calls.Add(1)
	time.Sleep(b.delay)

	return pipeline.Result{Set: b.set}, b.err
}

func (b *fakeBuilder) Options() output.Options {
	return output.Options{Mode: output.ModeRaw, HostSuffix: true}
}

// cancellingFetcher serves a list once, then cancels the build on the next fetch.
type cancellingFetcher struct {
	calls  int
	cancel context.CancelFunc
}

func (f *cancellingFetcher) FetchAll(ctx context.Context, sources []string) []fetcher.Result {
	f.calls++
	if f.calls > 1 {
		f.cancel()
	}

	results := make([]fetcher.Result, len(sources))
	for i, source := range sources {
		results[i].Source = source
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}
		results[i].Data = []byte("10.0.0.0/24\n")
	}

	return results
}

func newLogger() *logger.Logger {
	nop := zerolog.Nop()
	return logger.NewLogger(&nop, 16)
}

func TestUpdatePublishesAndWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blacklist.txt")
	builder := &fakeBuilder{set: types.ParsePrefixSet("10.0.0.1/32")}
	list := types.NewBlackList()

	res, err := NewUpdater(builder, list, path, time.Second, newLogger()).Update(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, res.Set.Len())
	_, ok := list.LookupPrefix(types.MustParsePrefix("10.0.0.1/32").Netip().Addr())
	require.True(t, ok)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "10.0.0.1/32\n", string(data))
}

func TestUpdateFailureKeepsPrevious(t *testing.T) {
	list := types.NewBlackList()
	list.Store(types.ParsePrefixSet("10.0.0.0/8"))
	builder := &fakeBuilder{err: types.ErrInvalidConfiguration}

	_, err := NewUpdater(builder, list, "", 0, newLogger()).Update(context.Background())
	require.ErrorIs(t, err, types.ErrInvalidConfiguration)
	require.Equal(t, 1, list.Load().Len())
}

func TestUpdateCancelledKeepsPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blacklist.txt")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := pipeline.NewPipeline(pipeline.Config{Sources: []string{"a"}}, &cancellingFetcher{cancel: cancel}, newLogger())
	list := types.NewBlackList()
	u := NewUpdater(p, list, path, 0, newLogger())

	_, err := u.Update(ctx)
	require.NoError(t, err)

	_, err = u.Update(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, []string{"10.0.0.0/24"}, list.Load().Strings(true))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "10.0.0.0/24\n", string(data))
}

func TestUpdateShared(t *testing.T) {
	builder := &fakeBuilder{delay: 50 * time.Millisecond}
	u := NewUpdater(builder, types.NewBlackList(), "", 0, newLogger())

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = u.Update(context.Background())
		}()
	}
	wg.Wait()

	require.Less(t, builder.calls.Load(), int32(5))
}
