package preparer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"InvestorsDaily/internal/model"
)

const (
	colTicker   = "Ticker"
	colDate     = "Date"
	colOpen     = "Open"
	colHigh     = "High"
	colLow      = "Low"
	colClose    = "Close"
	colAdjClose = "Adj Close"
	colVolume   = "Volume"
)

var requiredColumns = []string{colTicker, colDate, colOpen, colClose, colAdjClose, colVolume}

// headerAliases maps accepted header spellings to canonical column names.
// Anything not listed, including the unnamed index column, is dropped.
var headerAliases = map[string]string{
	"Ticker":    colTicker,
	"Date":      colDate,
	"Open":      colOpen,
	"High":      colHigh,
	"Low":       colLow,
	"Close":     colClose,
	"Adj Close": colAdjClose,
	"Adj_Close": colAdjClose,
	"AdjClose":  colAdjClose,
	"Volume":    colVolume,
}

// ReadCSV decodes a market-data CSV with a header row into raw rows.
func ReadCSV(r io.Reader) ([]model.RawRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &InputFormatError{Msg: "empty input, header row missing"}
	}
	if err != nil {
		return nil, &InputFormatError{Msg: fmt.Sprintf("read header: %v", err)}
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if canon, ok := headerAliases[h]; ok {
			if _, dup := index[canon]; dup {
				return nil, &InputFormatError{Column: canon, Msg: "duplicate column"}
			}
			index[canon] = i
		}
	}
	for _, c := range requiredColumns {
		if _, ok := index[c]; !ok {
			return nil, &InputFormatError{Column: c, Msg: "required column missing"}
		}
	}

	field := func(rec []string, col string) string {
		i, ok := index[col]
		if !ok {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var rows []model.RawRow
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, &InputFormatError{Line: pe.Line, Msg: pe.Err.Error()}
			}
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, model.RawRow{
			Line:     line,
			Ticker:   field(rec, colTicker),
			Date:     field(rec, colDate),
			Open:     field(rec, colOpen),
			High:     field(rec, colHigh),
			Low:      field(rec, colLow),
			Close:    field(rec, colClose),
			AdjClose: field(rec, colAdjClose),
			Volume:   field(rec, colVolume),
		})
	}
	return rows, nil
}
