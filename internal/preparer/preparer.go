// Package preparer turns raw market-data rows into the enriched table the
// dashboard reads: parsed dates, day-over-day change columns, a per-ticker
// rolling average and calendar fields.
package preparer

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"InvestorsDaily/internal/calculator"
	"InvestorsDaily/internal/model"
)

// AnomalyPolicy decides what happens to rows whose percent change is
// non-finite, which happens when Open is zero or too small to divide by.
type AnomalyPolicy string

const (
	// AnomalyPropagate keeps the non-finite percent change and counts it.
	AnomalyPropagate AnomalyPolicy = "propagate"
	// AnomalyReject aborts the load with a DivisionAnomalyError.
	AnomalyReject AnomalyPolicy = "reject"
)

// ParseAnomalyPolicy validates a policy name from configuration.
func ParseAnomalyPolicy(s string) (AnomalyPolicy, error) {
	switch p := AnomalyPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case AnomalyPropagate, AnomalyReject:
		return p, nil
	case "":
		return AnomalyPropagate, nil
	}
	return "", fmt.Errorf("unknown anomaly policy %q", s)
}

// tickerNames is read-only after init.
var tickerNames = map[string]string{
	"^NYA":  "New York Stock Exchange",
	"^IXIC": "NASDAQ",
	"^DJI":  "Dow Jones",
	"^GSPC": "S&P 500",
}

// TickerName resolves a ticker symbol to its display name. Unknown symbols
// are returned unchanged.
func TickerName(ticker string) string {
	if name, ok := tickerNames[ticker]; ok {
		return name
	}
	return ticker
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
}

// ParseDate parses s with the accepted layouts and truncates it to the day.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

type options struct {
	policy AnomalyPolicy
	log    zerolog.Logger
	now    func() time.Time
}

// Option configures Prepare.
type Option func(*options)

// WithAnomalyPolicy sets the non-finite percent change policy. The default is AnomalyPropagate.
func WithAnomalyPolicy(p AnomalyPolicy) Option {
	return func(o *options) { o.policy = p }
}

// WithLogger sets the logger used for load warnings.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithClock overrides the LoadedAt timestamp source.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Prepare parses and enriches rows. Any error aborts the whole load; a
// partially derived table is never returned. Records keep their source order.
func Prepare(rows []model.RawRow, opts ...Option) (*model.Table, error) {
	o := options{policy: AnomalyPropagate, log: zerolog.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	records := make([]model.MarketRecord, len(rows))
	seen := make(map[string]int, len(rows))
	anomalies := 0

	for i, row := range rows {
		rec, err := parseRow(row)
		if err != nil {
			return nil, err
		}

		key := rec.Ticker + "\x00" + rec.Date.Format("2006-01-02")
		if prev, ok := seen[key]; ok {
			return nil, &InputFormatError{
				Line:   row.Line,
				Column: colDate,
				Msg:    fmt.Sprintf("duplicate record for %s on %s (first at line %d)", rec.Ticker, row.Date, prev),
			}
		}
		seen[key] = row.Line

		rec.PriceChange = calculator.PriceChange(rec.Open, rec.AdjClose)
		rec.PriceChangeDirection = model.Direction(calculator.IsUp(rec.PriceChange))

		pct := calculator.PriceChangePercent(rec.Open, rec.Close)
		if math.IsInf(pct, 0) || math.IsNaN(pct) {
			if o.policy == AnomalyReject {
				return nil, &DivisionAnomalyError{Line: row.Line, Ticker: rec.Ticker, Date: row.Date, Open: rec.Open}
			}
			anomalies++
			o.log.Warn().
				Int("line", row.Line).
				Str("ticker", rec.Ticker).
				Str("date", row.Date).
				Float64("open", rec.Open).
				Msg("percent change is non-finite")
		}
		rec.PriceChangePercent = model.Float(pct)
		rec.PriceChangePercentDirection = model.Direction(calculator.IsUp(pct))

		rec.Year = rec.Date.Year()
		rec.Month = int(rec.Date.Month())
		rec.MonthName = rec.Date.Month().String()
		rec.TickerName = TickerName(rec.Ticker)

		records[i] = rec
	}

	tickers, err := applyMovingAverage(records)
	if err != nil {
		return nil, err
	}

	t := &model.Table{
		Records:   records,
		Years:     distinctYears(records),
		Tickers:   tickers,
		Anomalies: anomalies,
		LoadedAt:  o.now(),
	}
	return t, nil
}

func parseRow(row model.RawRow) (model.MarketRecord, error) {
	var rec model.MarketRecord

	if row.Ticker == "" {
		return rec, &InputFormatError{Line: row.Line, Column: colTicker, Msg: "empty ticker"}
	}
	rec.Ticker = row.Ticker

	d, ok := ParseDate(row.Date)
	if !ok {
		return rec, &ParseError{Line: row.Line, Value: row.Date}
	}
	rec.Date = d

	var err error
	if rec.Open, err = parsePrice(row, colOpen, row.Open, true); err != nil {
		return rec, err
	}
	if rec.High, err = parsePrice(row, colHigh, row.High, false); err != nil {
		return rec, err
	}
	if rec.Low, err = parsePrice(row, colLow, row.Low, false); err != nil {
		return rec, err
	}
	if rec.Close, err = parsePrice(row, colClose, row.Close, true); err != nil {
		return rec, err
	}
	if rec.AdjClose, err = parsePrice(row, colAdjClose, row.AdjClose, true); err != nil {
		return rec, err
	}
	if rec.Volume, err = parseVolume(row); err != nil {
		return rec, err
	}
	return rec, nil
}

func parsePrice(row model.RawRow, col, s string, required bool) (float64, error) {
	if s == "" {
		if required {
			return 0, &InputFormatError{Line: row.Line, Column: col, Msg: "missing value"}
		}
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &InputFormatError{Line: row.Line, Column: col, Msg: fmt.Sprintf("invalid number %q", s)}
	}
	return v, nil
}

// parseVolume accepts integers and integral floats such as "1200.0".
func parseVolume(row model.RawRow) (int64, error) {
	bad := func(msg string) error {
		return &InputFormatError{Line: row.Line, Column: colVolume, Msg: msg}
	}
	if row.Volume == "" {
		return 0, bad("missing value")
	}
	v, err := strconv.ParseInt(row.Volume, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(row.Volume, 64)
		if ferr != nil || f != math.Trunc(f) || math.Abs(f) >= 1<<63 {
			return 0, bad(fmt.Sprintf("invalid integer %q", row.Volume))
		}
		v = int64(f)
	}
	if v < 0 {
		return 0, bad(fmt.Sprintf("negative volume %d", v))
	}
	return v, nil
}

// applyMovingAverage fills MovingAverage per ticker, ordering each ticker's
// rows by date regardless of how tickers are interleaved in the input.
func applyMovingAverage(records []model.MarketRecord) ([]string, error) {
	groups := make(map[string][]int)
	for i := range records {
		groups[records[i].Ticker] = append(groups[records[i].Ticker], i)
	}

	tickers := make([]string, 0, len(groups))
	for ticker, idx := range groups {
		tickers = append(tickers, ticker)
		sort.SliceStable(idx, func(a, b int) bool {
			return records[idx[a]].Date.Before(records[idx[b]].Date)
		})
		closes := make([]float64, len(idx))
		for k, i := range idx {
			closes[k] = records[i].AdjClose
		}
		ma, err := calculator.RollingSMA(closes, calculator.MovingAverageWindow)
		if err != nil {
			return nil, fmt.Errorf("moving average for %s: %w", ticker, err)
		}
		for k, i := range idx {
			records[i].MovingAverage = ma[k]
		}
	}
	sort.Strings(tickers)
	return tickers, nil
}

func distinctYears(records []model.MarketRecord) []int {
	seen := make(map[int]bool)
	var years []int
	for _, r := range records {
		if !seen[r.Year] {
			seen[r.Year] = true
			years = append(years, r.Year)
		}
	}
	return years
}
