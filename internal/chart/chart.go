// Package chart shapes the prepared table into the series each dashboard
// chart consumes. Nothing here renders anything.
package chart

import (
	"sort"
	"time"

	"InvestorsDaily/internal/calculator"
	"InvestorsDaily/internal/model"
)

// lineLabels are the short legend labels of the price chart. They differ
// from the table's TickerName for ^NYA.
var lineLabels = map[string]string{
	"^NYA":  "NYSE",
	"^IXIC": "NASDAQ",
	"^DJI":  "Dow Jones",
	"^GSPC": "S&P 500",
}

func lineLabel(ticker string) string {
	if l, ok := lineLabels[ticker]; ok {
		return l
	}
	return ticker
}

// Years returns the selectable years in order of first appearance.
func Years(t *model.Table) []int {
	out := make([]int, len(t.Years))
	copy(out, t.Years)
	return out
}

// ProfitLossCounts counts down days and up days per ticker in the given year.
// Tickers are sorted; tickers with no rows in the year are omitted.
func ProfitLossCounts(t *model.Table, year int) []model.ProfitLoss {
	counts := make(map[string]*model.ProfitLoss)
	for _, r := range t.Records {
		if r.Year != year {
			continue
		}
		pl, ok := counts[r.Ticker]
		if !ok {
			pl = &model.ProfitLoss{Ticker: r.Ticker}
			counts[r.Ticker] = pl
		}
		if r.PriceChangeDirection {
			pl.Profits++
		} else {
			pl.Losses++
		}
	}

	out := make([]model.ProfitLoss, 0, len(counts))
	for _, pl := range counts {
		out = append(out, *pl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	return out
}

// PercentChangeSeries returns one bar per record of the year, in table order.
func PercentChangeSeries(t *model.Table, year int) []model.PercentPoint {
	recs := t.YearRecords(year)
	out := make([]model.PercentPoint, 0, len(recs))
	for _, r := range recs {
		out = append(out, model.PercentPoint{
			Date:    r.Date.Format("2006-01-02"),
			Ticker:  r.Ticker,
			Percent: r.PriceChangePercent,
		})
	}
	return out
}

// MonthlyVolume sums volume per (month, ticker name) in the given year.
// Months come in calendar order, ticker names sorted within a month.
func MonthlyVolume(t *model.Table, year int) []model.MonthlyVolume {
	type key struct {
		month int
		name  string
	}
	sums := make(map[key]int64)
	for _, r := range t.Records {
		if r.Year != year {
			continue
		}
		sums[key{r.Month, r.TickerName}] += r.Volume
	}

	out := make([]model.MonthlyVolume, 0, len(sums))
	for k, v := range sums {
		out = append(out, model.MonthlyVolume{
			Month:      k.month,
			MonthName:  time.Month(k.month).String(),
			TickerName: k.name,
			Volume:     v,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[i].Month < out[j].Month
		}
		return out[i].TickerName < out[j].TickerName
	})
	return out
}

// PriceSeries groups adjusted closes by ticker for the pan/zoom line chart.
func PriceSeries(t *model.Table) (model.PriceSeries, error) {
	rng, err := calculator.CalculateDateRange(t.Records)
	if err != nil {
		return model.PriceSeries{}, err
	}

	byTicker := make(map[string][]model.PricePoint)
	for _, r := range t.Records {
		byTicker[r.Ticker] = append(byTicker[r.Ticker], model.PricePoint{Date: r.Date, Close: r.AdjClose})
	}

	tickers := make([]string, 0, len(byTicker))
	for tk := range byTicker {
		tickers = append(tickers, tk)
	}
	sort.Strings(tickers)

	series := model.PriceSeries{Range: rng}
	for _, tk := range tickers {
		pts := byTicker[tk]
		sort.SliceStable(pts, func(i, j int) bool { return pts[i].Date.Before(pts[j].Date) })
		series.Lines = append(series.Lines, model.PriceLine{Ticker: tk, Label: lineLabel(tk), Points: pts})
	}
	return series, nil
}
