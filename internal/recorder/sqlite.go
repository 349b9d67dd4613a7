package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists load history to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log zerolog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL so external readers can query history while the service writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS load_history (
			id          TEXT PRIMARY KEY,
			timestamp   INTEGER NOT NULL,
			path        TEXT NOT NULL,
			size        INTEGER,
			mod_time    INTEGER,
			row_count   INTEGER,
			tickers     INTEGER,
			anomalies   INTEGER,
			duration_ns INTEGER,
			status      TEXT NOT NULL,
			error       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_load_ts ON load_history(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordLoad(rec *LoadRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO load_history
		(id, timestamp, path, size, mod_time, row_count, tickers, anomalies, duration_ns, status, error)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		rec.ID, rec.Timestamp.UnixNano(), rec.Path, rec.Size, rec.ModTime.UnixNano(),
		rec.Rows, rec.Tickers, rec.Anomalies, int64(rec.Duration),
		rec.Status, rec.Error,
	)
	return err
}

// RecentLoads returns up to limit records, newest first.
func (r *SQLiteRecorder) RecentLoads(limit int) ([]LoadRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT id, timestamp, path, size, mod_time, row_count, tickers, anomalies, duration_ns, status, error
		FROM load_history ORDER BY timestamp DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query load history: %w", err)
	}
	defer rows.Close()

	var out []LoadRecord
	for rows.Next() {
		var (
			rec          LoadRecord
			ts, mod, dur int64
			errText      sql.NullString
		)
		if err := rows.Scan(&rec.ID, &ts, &rec.Path, &rec.Size, &mod, &rec.Rows, &rec.Tickers,
			&rec.Anomalies, &dur, &rec.Status, &errText); err != nil {
			return nil, fmt.Errorf("scan load history: %w", err)
		}
		rec.Timestamp = time.Unix(0, ts)
		rec.ModTime = time.Unix(0, mod)
		rec.Duration = time.Duration(dur)
		rec.Error = errText.String
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
