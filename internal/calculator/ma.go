package calculator

import (
	"errors"

	"InvestorsDaily/internal/model"
)

// MovingAverageWindow is the trailing window used for the MovingAverage column.
const MovingAverageWindow = 5

// CalculateSMA computes the simple moving average of the given prices over the specified period.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// RollingSMA returns, for every index i, the mean of prices[i-period+1..i].
// The first period-1 entries are missing.
func RollingSMA(prices []float64, period int) ([]model.NullFloat, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	out := make([]model.NullFloat, len(prices))
	for i := period - 1; i < len(prices); i++ {
		// Each window is summed from scratch so the result does not depend
		// on the rounding history of earlier windows.
		ma, err := CalculateSMA(prices[:i+1], period)
		if err != nil {
			return nil, err
		}
		out[i] = model.Some(ma)
	}
	return out, nil
}
