// Package loader memoizes the prepared market table. The cache key is the
// source identity (path, size, modification time); it is dropped explicitly
// with Invalidate.
package loader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"InvestorsDaily/internal/model"
	"InvestorsDaily/internal/preparer"
)

// LoadEvent describes one load attempt.
type LoadEvent struct {
	Source   model.SourceIdentity
	Table    *model.Table // nil on failure
	Duration time.Duration
	Err      error
}

// Observer is notified after every load attempt.
type Observer interface {
	ObserveLoad(evt *LoadEvent)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(evt *LoadEvent)

func (f ObserverFunc) ObserveLoad(evt *LoadEvent) { f(evt) }

// Loader caches the last successfully prepared table.
type Loader struct {
	src       Source
	prepOpts  []preparer.Option
	observers []Observer
	log       zerolog.Logger

	group singleflight.Group

	mu    sync.RWMutex
	table *model.Table
	// last failed load; an unchanged source returns it without re-reading
	lastErr   error
	lastErrID model.SourceIdentity
}

// Option configures a Loader.
type Option func(*Loader)

// WithPrepareOptions passes options through to preparer.Prepare.
func WithPrepareOptions(opts ...preparer.Option) Option {
	return func(l *Loader) { l.prepOpts = append(l.prepOpts, opts...) }
}

// WithObserver registers an observer for load attempts.
func WithObserver(o Observer) Option {
	return func(l *Loader) { l.observers = append(l.observers, o) }
}

// WithLogger sets the loader's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(l *Loader) { l.log = log }
}

// New creates a Loader over src.
func New(src Source, opts ...Option) *Loader {
	l := &Loader{src: src, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Get returns the cached table if the source has not changed since it was
// loaded, otherwise loads it again.
func (l *Loader) Get(ctx context.Context) (*model.Table, error) {
	t, _, err := l.get(ctx)
	return t, err
}

// Refresh revalidates the cache and reports whether a reload happened.
func (l *Loader) Refresh(ctx context.Context) (bool, error) {
	_, reloaded, err := l.get(ctx)
	return reloaded, err
}

// Invalidate drops the cached table. The next Get loads from the source.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	l.table = nil
	l.lastErr = nil
	l.mu.Unlock()
	l.log.Info().Msg("cache invalidated")
}

// Reload invalidates the cache and loads immediately.
func (l *Loader) Reload(ctx context.Context) (*model.Table, error) {
	l.Invalidate()
	return l.Get(ctx)
}

// Cached returns the cached table without touching the source.
func (l *Loader) Cached() *model.Table {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.table
}

func (l *Loader) get(ctx context.Context) (*model.Table, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	id, err := l.src.Identify()
	if err != nil {
		return nil, false, fmt.Errorf("identify source: %w", err)
	}

	if t, ok, err := l.memoized(id); ok {
		return t, false, err
	}

	key := fmt.Sprintf("%s|%d|%d", id.Path, id.Size, id.ModTime.UnixNano())
	v, err, _ := l.group.Do(key, func() (interface{}, error) {
		// Another caller may have finished the same load while we waited.
		if t, ok, err := l.memoized(id); ok {
			return t, err
		}
		t, err := l.load(id)
		l.mu.Lock()
		defer l.mu.Unlock()
		if err != nil {
			l.lastErr, l.lastErrID = err, id
			return nil, err
		}
		l.table, l.lastErr = t, nil
		return t, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.(*model.Table), true, nil
}

// memoized returns the outcome of the last load of id, if there was one.
func (l *Loader) memoized(id model.SourceIdentity) (*model.Table, bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.table != nil && l.table.Source.Equal(id) {
		return l.table, true, nil
	}
	if l.lastErr != nil && l.lastErrID.Equal(id) {
		return nil, true, l.lastErr
	}
	return nil, false, nil
}

func (l *Loader) load(id model.SourceIdentity) (*model.Table, error) {
	start := time.Now()
	t, err := l.read(id)
	evt := &LoadEvent{Source: id, Table: t, Duration: time.Since(start), Err: err}
	for _, o := range l.observers {
		o.ObserveLoad(evt)
	}

	if err != nil {
		l.log.Error().Err(err).Str("path", id.Path).Msg("load failed")
		return nil, err
	}
	l.log.Info().
		Str("path", id.Path).
		Int("records", len(t.Records)).
		Int("tickers", len(t.Tickers)).
		Int("anomalies", t.Anomalies).
		Dur("duration", evt.Duration).
		Msg("market data loaded")
	return t, nil
}

func (l *Loader) read(id model.SourceIdentity) (*model.Table, error) {
	rc, err := l.src.Open()
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	defer rc.Close()

	rows, err := preparer.ReadCSV(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", id.Path, err)
	}
	t, err := preparer.Prepare(rows, append([]preparer.Option{preparer.WithLogger(l.log)}, l.prepOpts...)...)
	if err != nil {
		return nil, fmt.Errorf("prepare %s: %w", id.Path, err)
	}
	t.Source = id
	return t, nil
}
