package recorder

import "time"

// Load statuses.
const (
	StatusOK     = "OK"
	StatusFailed = "FAILED"
)

// LoadRecord is one row of load history.
type LoadRecord struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Path      string        `json:"path"`
	Size      int64         `json:"size"`
	ModTime   time.Time     `json:"mod_time"`
	Rows      int           `json:"rows"`
	Tickers   int           `json:"tickers"`
	Anomalies int           `json:"anomalies"`
	Duration  time.Duration `json:"duration_ns"`
	Status    string        `json:"status"`
	Error     string        `json:"error,omitempty"`
}

// Recorder persists load history for later inspection.
type Recorder interface {
	RecordLoad(rec *LoadRecord) error
	RecentLoads(limit int) ([]LoadRecord, error)
	Close() error
}
