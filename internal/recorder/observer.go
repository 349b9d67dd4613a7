package recorder

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"InvestorsDaily/internal/loader"
)

// NewLoadRecord converts a loader event into a history row.
func NewLoadRecord(evt *loader.LoadEvent, now time.Time) *LoadRecord {
	rec := &LoadRecord{
		ID:        uuid.NewString(),
		Timestamp: now,
		Path:      evt.Source.Path,
		Size:      evt.Source.Size,
		ModTime:   evt.Source.ModTime,
		Duration:  evt.Duration,
		Status:    StatusOK,
	}
	if evt.Err != nil {
		rec.Status = StatusFailed
		rec.Error = evt.Err.Error()
	}
	if evt.Table != nil {
		rec.Rows = len(evt.Table.Records)
		rec.Tickers = len(evt.Table.Tickers)
		rec.Anomalies = evt.Table.Anomalies
	}
	return rec
}

// Observer returns a loader observer that writes every load attempt to r.
// Write failures are logged and never fail the load.
func Observer(r Recorder, log zerolog.Logger) loader.Observer {
	return loader.ObserverFunc(func(evt *loader.LoadEvent) {
		if err := r.RecordLoad(NewLoadRecord(evt, time.Now())); err != nil {
			log.Error().Err(err).Msg("record load")
		}
	})
}
