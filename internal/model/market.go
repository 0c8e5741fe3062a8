package model

import (
	"strings"
	"time"
)

// PriceSnapshot is the point-in-time price data for one asset.
// Fields the provider omits are left at zero.
type PriceSnapshot struct {
	AssetID           string
	PrimaryCurrency   string
	SecondaryCurrency string
	Primary           float64
	Secondary         float64
	Change24h         float64 // percent, in the primary currency
	UpdatedAt         time.Time
}

// PricePoint is a single sample of a price history series.
type PricePoint struct {
	Time  time.Time
	Price float64
}

// HistoryStats summarizes a price history series in the primary currency.
type HistoryStats struct {
	Days     int
	Low      float64
	High     float64
	Average  float64
	Position float64 // where the last price sits within [Low, High], 0..1
	RSI      float64
	HasRSI   bool // false when the series is too short for the RSI period
}

// CurrencyPrefix returns the symbol printed before an amount. Codes without
// a well-known symbol get none; the code itself follows the amount.
func CurrencyPrefix(code string) string {
	switch strings.ToLower(code) {
	case "usd":
		return "$"
	case "sgd":
		return "S$"
	case "eur":
		return "€"
	case "gbp":
		return "£"
	default:
		return ""
	}
}
