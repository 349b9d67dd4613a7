package calculator

// PriceChange is the adjusted close minus the open.
func PriceChange(open, adjClose float64) float64 {
	return adjClose - open
}

// PriceChangePercent is (close - open) / open * 100. An open of zero yields
// +Inf, -Inf or NaN following IEEE division; callers decide what to do with it.
func PriceChangePercent(open, close float64) float64 {
	return (close - open) / open * 100
}

// IsUp reports a strictly positive change. NaN is not up.
func IsUp(change float64) bool {
	return change > 0
}
