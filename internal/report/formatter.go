package report

import (
	"fmt"
	"strings"

	"InvestorsDaily/internal/chart"
	"InvestorsDaily/internal/model"
)

// FormatYearReport renders a plain-text summary of one year of the table.
func FormatYearReport(t *model.Table, year int) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Investor's Daily | %d\n", year))
	b.WriteString(fmt.Sprintf("Source: %s (%d records, loaded %s)\n\n",
		t.Source.Path, len(t.Records), t.LoadedAt.Format("2006-01-02 15:04")))

	if !t.HasYear(year) {
		b.WriteString("No data for this year.\n")
		return b.String()
	}

	b.WriteString("Losses / profits per day:\n")
	for _, pl := range chart.ProfitLossCounts(t, year) {
		b.WriteString(fmt.Sprintf("  %-8s %4d down  %4d up\n", pl.Ticker, pl.Losses, pl.Profits))
	}

	b.WriteString("\nMonthly volume:\n")
	month := 0
	for _, mv := range chart.MonthlyVolume(t, year) {
		if mv.Month != month {
			month = mv.Month
			b.WriteString(fmt.Sprintf("  %s\n", mv.MonthName))
		}
		b.WriteString(fmt.Sprintf("    %-24s %d\n", mv.TickerName, mv.Volume))
	}

	if t.Anomalies > 0 {
		b.WriteString(fmt.Sprintf("\n⚠️ %d record(s) with a non-finite percent change\n", t.Anomalies))
	}
	return b.String()
}
