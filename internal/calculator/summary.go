// Package calculator derives price statistics from a history series.
package calculator

import "SignalSG/internal/model"

// RSIPeriod is the lookback used for the history RSI.
const RSIPeriod = 14

// Summarize computes range, average, position and (when the series is long
// enough) RSI. ok is false for an empty series.
func Summarize(days int, points []model.PricePoint) (s model.HistoryStats, ok bool) {
	prices := extractPrices(points)
	high, low, err := CalculateRange(prices)
	if err != nil {
		return model.HistoryStats{}, false
	}
	s = model.HistoryStats{Days: days, Low: low, High: high}
	s.Average, _ = CalculateSMA(prices, len(prices))
	s.Position, _ = CalculatePosition(prices[len(prices)-1], high, low)
	if rsi, err := CalculateRSI(prices, RSIPeriod); err == nil {
		s.RSI = rsi
		s.HasRSI = true
	}
	return s, true
}
