package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InvestorsDaily/internal/config"
	"InvestorsDaily/internal/logger"
	"InvestorsDaily/internal/metrics"
	"InvestorsDaily/internal/preparer"
	"InvestorsDaily/internal/recorder"
)

type failingRecorder struct {
	*recorder.NoopRecorder
}

func (*failingRecorder) RecordLoad(*recorder.LoadRecord) error { return errors.New("disk full") }

func TestNewLoader_RecorderErrorsAreTagged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "MarketData.csv")
	require.NoError(t, os.WriteFile(path, []byte(",Ticker,Date,Open,High,Low,Close,Adj Close,Volume\n0,^DJI,2020-01-02,1,1,1,2,2,10\n"), 0o644))

	var buf bytes.Buffer
	log, err := logger.New(logger.Config{Level: "info", Format: "json"}, &buf)
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Data.CSVPath = path
	ld := newLoader(cfg, preparer.AnomalyPropagate, &failingRecorder{recorder.NewNoopRecorder()}, metrics.New(), log)

	tbl, err := ld.Get(context.Background())
	require.NoError(t, err)
	assert.Len(t, tbl.Records, 1)
	assert.Contains(t, buf.String(), `"component":"recorder"`)
	assert.Contains(t, buf.String(), "disk full")
}
