package model

import "time"

// ProfitLoss counts down and up days for one ticker.
type ProfitLoss struct {
	Ticker  string `json:"ticker"`
	Losses  int    `json:"losses"`
	Profits int    `json:"profits"`
}

// PercentPoint is one bar of the percent-change chart.
type PercentPoint struct {
	Date    string `json:"date"`
	Ticker  string `json:"ticker"`
	Percent Float  `json:"percent"`
}

// MonthlyVolume is the summed volume of one ticker in one month.
type MonthlyVolume struct {
	Month      int    `json:"month"`
	MonthName  string `json:"month_name"`
	TickerName string `json:"ticker_name"`
	Volume     int64  `json:"volume"`
}

// PricePoint is one point of a price line.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// PriceLine is the adjusted-close series of one ticker.
type PriceLine struct {
	Ticker string       `json:"ticker"`
	Label  string       `json:"label"`
	Points []PricePoint `json:"points"`
}

// DateRange is an inclusive [Start, End] window.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// PriceSeries is the payload of the pan/zoom line chart.
type PriceSeries struct {
	Lines []PriceLine `json:"lines"`
	Range DateRange   `json:"range"`
}
