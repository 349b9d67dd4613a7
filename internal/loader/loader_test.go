package loader

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InvestorsDaily/internal/model"
	"InvestorsDaily/internal/preparer"
)

const sampleCSV = `,Ticker,Date,Open,High,Low,Close,Adj Close,Volume
0,^GSPC,2020-01-02,100,101,99,105,104,1000
1,^GSPC,2020-01-03,104,106,103,103,102,1100
`

// mockSource serves fixed content with a controllable identity.
type mockSource struct {
	mu      sync.Mutex
	content string
	version int64
	opens   int32
	gate    chan struct{} // when set, Open blocks until it is closed
}

func (m *mockSource) Identify() (model.SourceIdentity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return model.SourceIdentity{Path: "mock.csv", Size: int64(len(m.content)), ModTime: time.Unix(m.version, 0)}, nil
}

func (m *mockSource) Open() (io.ReadCloser, error) {
	atomic.AddInt32(&m.opens, 1)
	if m.gate != nil {
		<-m.gate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return io.NopCloser(strings.NewReader(m.content)), nil
}

func (m *mockSource) set(content string) {
	m.mu.Lock()
	m.content = content
	m.version++
	m.mu.Unlock()
}

func TestLoader_MemoizesUntilSourceChanges(t *testing.T) {
	src := &mockSource{content: sampleCSV, version: 1}
	l := New(src)
	ctx := context.Background()

	first, err := l.Get(ctx)
	require.NoError(t, err)
	second, err := l.Get(ctx)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.EqualValues(t, 1, atomic.LoadInt32(&src.opens))

	src.set(sampleCSV + "2,^GSPC,2020-01-06,102,103,101,102,101,900\n")
	third, err := l.Get(ctx)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Len(t, third.Records, 3)
	assert.EqualValues(t, 2, atomic.LoadInt32(&src.opens))
}

func TestLoader_Invalidate(t *testing.T) {
	src := &mockSource{content: sampleCSV, version: 1}
	l := New(src)
	ctx := context.Background()

	first, err := l.Get(ctx)
	require.NoError(t, err)
	l.Invalidate()
	assert.Nil(t, l.Cached())

	second, err := l.Get(ctx)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.EqualValues(t, 2, atomic.LoadInt32(&src.opens))
}

func TestLoader_Refresh(t *testing.T) {
	src := &mockSource{content: sampleCSV, version: 1}
	l := New(src)
	ctx := context.Background()

	reloaded, err := l.Refresh(ctx)
	require.NoError(t, err)
	assert.True(t, reloaded)

	reloaded, err = l.Refresh(ctx)
	require.NoError(t, err)
	assert.False(t, reloaded)

	src.set(sampleCSV)
	reloaded, err = l.Refresh(ctx)
	require.NoError(t, err)
	assert.True(t, reloaded)
}

func TestLoader_FailedLoadKeepsPreviousTable(t *testing.T) {
	src := &mockSource{content: sampleCSV, version: 1}
	var events []*LoadEvent
	l := New(src, WithObserver(ObserverFunc(func(evt *LoadEvent) { events = append(events, evt) })))
	ctx := context.Background()

	good, err := l.Get(ctx)
	require.NoError(t, err)

	src.set(",Ticker,Date,Open,High,Low,Close,Adj Close,Volume\n0,^GSPC,bogus,1,1,1,1,1,1\n")
	_, err = l.Get(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, preparer.ErrParse))
	assert.Same(t, good, l.Cached())

	require.Len(t, events, 2)
	assert.NoError(t, events[0].Err)
	assert.NotNil(t, events[0].Table)
	assert.Error(t, events[1].Err)
	assert.Nil(t, events[1].Table)
}

func TestLoader_MemoizesFailureUntilSourceChanges(t *testing.T) {
	src := &mockSource{content: ",Ticker,Date,Open,High,Low,Close,Adj Close,Volume\n0,^GSPC,bogus,1,1,1,1,1,1\n", version: 1}
	var events int
	l := New(src, WithObserver(ObserverFunc(func(*LoadEvent) { events++ })))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := l.Get(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, preparer.ErrParse)
	}
	assert.EqualValues(t, 1, atomic.LoadInt32(&src.opens))
	assert.Equal(t, 1, events)

	reloaded, err := l.Refresh(ctx)
	assert.Error(t, err)
	assert.False(t, reloaded)
	assert.EqualValues(t, 1, atomic.LoadInt32(&src.opens))

	// Invalidate forgets the failure as well.
	l.Invalidate()
	_, err = l.Get(ctx)
	require.Error(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&src.opens))
	assert.Equal(t, 2, events)

	src.set(sampleCSV)
	tbl, err := l.Get(ctx)
	require.NoError(t, err)
	assert.Len(t, tbl.Records, 2)
	assert.Equal(t, 3, events)

	_, err = l.Get(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, atomic.LoadInt32(&src.opens))
}

func TestLoader_ConcurrentGetLoadsOnce(t *testing.T) {
	src := &mockSource{content: sampleCSV, version: 1, gate: make(chan struct{})}
	l := New(src)
	ctx := context.Background()

	const callers = 8
	var wg sync.WaitGroup
	tables := make([]*model.Table, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tables[i], errs[i] = l.Get(ctx)
		}(i)
	}

	require.Eventually(t, func() bool { return atomic.LoadInt32(&src.opens) == 1 }, time.Second, 5*time.Millisecond)
	// Give the remaining callers time to join the in-flight load.
	time.Sleep(20 * time.Millisecond)
	close(src.gate)
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, tables[0], tables[i])
	}
	assert.EqualValues(t, 1, atomic.LoadInt32(&src.opens))
}

func TestLoader_CanceledContext(t *testing.T) {
	l := New(&mockSource{content: sampleCSV})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := l.Get(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoader_FileSourceModTime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "MarketData.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(path, old, old))

	l := New(NewFileSource(path), WithPrepareOptions(preparer.WithAnomalyPolicy(preparer.AnomalyReject)))
	ctx := context.Background()

	first, err := l.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, path, first.Source.Path)
	assert.Equal(t, []string{"^GSPC"}, first.Tickers)

	again, err := l.Get(ctx)
	require.NoError(t, err)
	assert.Same(t, first, again)

	newer := time.Now()
	require.NoError(t, os.Chtimes(path, newer, newer))
	reloaded, err := l.Get(ctx)
	require.NoError(t, err)
	assert.NotSame(t, first, reloaded)
}

func TestLoader_MissingFile(t *testing.T) {
	l := New(NewFileSource(filepath.Join(t.TempDir(), "missing.csv")))
	_, err := l.Get(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
