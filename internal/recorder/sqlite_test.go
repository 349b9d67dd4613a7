package recorder

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InvestorsDaily/internal/loader"
	"InvestorsDaily/internal/model"
)

func TestSQLiteRecorder_RoundTrip(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "history.db"), zerolog.Nop())
	require.NoError(t, err)
	defer r.Close()

	src := model.SourceIdentity{Path: "MarketData.csv", Size: 42, ModTime: time.Unix(1700000000, 0)}
	ok := &loader.LoadEvent{
		Source:   src,
		Table:    &model.Table{Records: make([]model.MarketRecord, 3), Tickers: []string{"^DJI"}, Anomalies: 1},
		Duration: 15 * time.Millisecond,
	}
	failed := &loader.LoadEvent{Source: src, Err: errors.New("line 3: unparseable date \"x\"")}

	require.NoError(t, r.RecordLoad(NewLoadRecord(ok, time.Unix(100, 0))))
	require.NoError(t, r.RecordLoad(NewLoadRecord(failed, time.Unix(200, 0))))

	recs, err := r.RecentLoads(10)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, StatusFailed, recs[0].Status)
	assert.Contains(t, recs[0].Error, "unparseable date")
	assert.Equal(t, 0, recs[0].Rows)

	assert.Equal(t, StatusOK, recs[1].Status)
	assert.Equal(t, 3, recs[1].Rows)
	assert.Equal(t, 1, recs[1].Tickers)
	assert.Equal(t, 1, recs[1].Anomalies)
	assert.Equal(t, 15*time.Millisecond, recs[1].Duration)
	assert.True(t, recs[1].ModTime.Equal(src.ModTime))
	assert.Empty(t, recs[1].Error)

	limited, err := r.RecentLoads(1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestObserver_RecordsEveryLoad(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "history.db"), zerolog.Nop())
	require.NoError(t, err)
	defer r.Close()

	obs := Observer(r, zerolog.Nop())
	obs.ObserveLoad(&loader.LoadEvent{Source: model.SourceIdentity{Path: "a.csv"}})
	obs.ObserveLoad(&loader.LoadEvent{Source: model.SourceIdentity{Path: "a.csv"}, Err: errors.New("boom")})

	recs, err := r.RecentLoads(10)
	require.NoError(t, err)
	assert.Len(t, recs, 2)
	assert.NotEqual(t, recs[0].ID, recs[1].ID)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	assert.NoError(t, r.RecordLoad(&LoadRecord{}))
	recs, err := r.RecentLoads(5)
	assert.NoError(t, err)
	assert.Empty(t, recs)
	assert.NoError(t, r.Close())
}
