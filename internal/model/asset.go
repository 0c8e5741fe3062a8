package model

import "strings"

// Asset is one entry of the market-data provider's coin list.
type Asset struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// NormalizeQuery lowercases and trims a user-supplied ticker or name.
func NormalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}
