package recorder

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordLoad(_ *LoadRecord) error          { return nil }
func (n *NoopRecorder) RecentLoads(_ int) ([]LoadRecord, error) { return nil, nil }
func (n *NoopRecorder) Close() error                            { return nil }
