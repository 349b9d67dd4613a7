package exporter

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"InvestorsDaily/internal/model"
)

func TestWriteXLSX(t *testing.T) {
	tbl := &model.Table{Records: []model.MarketRecord{
		{
			Ticker: "^DJI", TickerName: "Dow Jones",
			Date: time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC),
			Open: 100, Close: 105, AdjClose: 104, Volume: 1000,
			PriceChange: 4, PriceChangeDirection: true,
			PriceChangePercent: 5, PriceChangePercentDirection: true,
			Year: 2020, Month: 1, MonthName: "January",
		},
		{
			Ticker: "^DJI", TickerName: "Dow Jones",
			Date:               time.Date(2020, 1, 3, 0, 0, 0, 0, time.UTC),
			PriceChangePercent: model.Float(math.Inf(1)),
			MovingAverage:      model.Some(101.5),
			Year:               2020, Month: 1, MonthName: "January",
		},
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, tbl))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Ticker", rows[0][0])
	assert.Equal(t, "Month Name", rows[0][len(rows[0])-1])

	assert.Equal(t, "^DJI", rows[1][0])
	assert.Equal(t, "2020-01-02", rows[1][2])
	assert.Equal(t, "5", rows[1][11])
	assert.Equal(t, "", rows[1][13])

	assert.Equal(t, "+Inf", rows[2][11])
	assert.Equal(t, "101.5", rows[2][13])
}
