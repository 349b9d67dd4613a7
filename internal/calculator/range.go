package calculator

import (
	"errors"

	"InvestorsDaily/internal/model"
)

// CalculateDateRange scans all records and returns the earliest and latest date.
func CalculateDateRange(records []model.MarketRecord) (model.DateRange, error) {
	if len(records) == 0 {
		return model.DateRange{}, errors.New("no records provided")
	}
	r := model.DateRange{Start: records[0].Date, End: records[0].Date}
	for _, rec := range records[1:] {
		if rec.Date.Before(r.Start) {
			r.Start = rec.Date
		}
		if rec.Date.After(r.End) {
			r.End = rec.Date
		}
	}
	return r, nil
}
