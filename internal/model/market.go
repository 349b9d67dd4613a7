package model

import "time"

// RawRow is one CSV data row before any parsing. Line is the 1-based line
// number in the source, used for error reporting.
type RawRow struct {
	Line     int
	Ticker   string
	Date     string
	Open     string
	High     string
	Low      string
	Close    string
	AdjClose string
	Volume   string
}

// MarketRecord is one enriched row per (Ticker, Date).
type MarketRecord struct {
	Ticker     string    `json:"ticker"`
	TickerName string    `json:"ticker_name"`
	Date       time.Time `json:"date"`
	Open       float64   `json:"open"`
	High       float64   `json:"high"`
	Low        float64   `json:"low"`
	Close      float64   `json:"close"`
	AdjClose   float64   `json:"adj_close"`
	Volume     int64     `json:"volume"`

	PriceChange                 float64   `json:"price_change"`
	PriceChangeDirection        Direction `json:"price_change_direction"`
	PriceChangePercent          Float     `json:"price_change_percent"` // non-finite when Open is 0
	PriceChangePercentDirection Direction `json:"price_change_percent_direction"`
	MovingAverage               NullFloat `json:"moving_average"`

	Year      int    `json:"year"`
	Month     int    `json:"month"`
	MonthName string `json:"month_name"`
}

// SourceIdentity identifies one version of a source file.
type SourceIdentity struct {
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// Equal reports whether both identities describe the same file version.
func (s SourceIdentity) Equal(o SourceIdentity) bool {
	return s.Path == o.Path && s.Size == o.Size && s.ModTime.Equal(o.ModTime)
}

// Table is the result of one load. It is read-only once built.
type Table struct {
	Records   []MarketRecord
	Years     []int // distinct years in order of first appearance
	Tickers   []string
	Anomalies int // records whose percent change is non-finite
	Source    SourceIdentity
	LoadedAt  time.Time
}

// YearRecords returns the records dated in the given year, in table order.
func (t *Table) YearRecords(year int) []MarketRecord {
	var out []MarketRecord
	for _, r := range t.Records {
		if r.Year == year {
			out = append(out, r)
		}
	}
	return out
}

// HasYear reports whether any record falls in the given year.
func (t *Table) HasYear(year int) bool {
	for _, y := range t.Years {
		if y == year {
			return true
		}
	}
	return false
}
