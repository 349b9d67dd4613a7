package exporter

import (
	"fmt"
	"io"
	"math"

	"github.com/xuri/excelize/v2"

	"InvestorsDaily/internal/model"
)

// SheetName is the worksheet holding the enriched table.
const SheetName = "MarketData"

var columns = []string{
	"Ticker", "Ticker Name", "Date", "Open", "High", "Low", "Close", "Adj Close", "Volume",
	"Price Change", "Price Change Direction", "Price Change Percent", "Price Change Percent Direction",
	"Moving Average", "Year", "Month", "Month Name",
}

// WriteXLSX writes the enriched table as a single-sheet workbook.
func WriteXLSX(w io.Writer, t *model.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("stream writer: %w", err)
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, r := range t.Records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			r.Ticker, r.TickerName, r.Date.Format("2006-01-02"),
			r.Open, r.High, r.Low, r.Close, r.AdjClose, r.Volume,
			r.PriceChange, r.PriceChangeDirection.Int(), cellFloat(float64(r.PriceChangePercent)),
			r.PriceChangePercentDirection.Int(), cellNull(r.MovingAverage),
			r.Year, r.Month, r.MonthName,
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return f.Write(w)
}

// cellFloat writes non-finite values as text; spreadsheets have no Inf or NaN.
func cellFloat(v float64) interface{} {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	}
	return v
}

func cellNull(n model.NullFloat) interface{} {
	if !n.Valid {
		return nil
	}
	return cellFloat(n.Value)
}
