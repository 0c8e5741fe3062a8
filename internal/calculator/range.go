package calculator

import (
	"errors"
	"math"
)

// CalculateRange returns the high and low of prices.
func CalculateRange(prices []float64) (high, low float64, err error) {
	if len(prices) == 0 {
		return 0, 0, errors.New("no prices provided")
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, p := range prices {
		high = math.Max(high, p)
		low = math.Min(low, p)
	}
	return high, low, nil
}

// CalculatePosition returns where current sits within [low, high], clamped to 0..1.
func CalculatePosition(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (current - low) / (high - low)
	return math.Min(math.Max(pos, 0), 1), nil
}
