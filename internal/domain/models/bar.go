package models

import "time"

// Bar is one daily OHLCV bar.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// TradingValueOku is close * volume expressed in oku yen (1e8).
func (b Bar) TradingValueOku() float64 {
	return b.Close * b.Volume / 1e8
}

// TypicalValueOku is typical price ((H+L+C)/3) * volume in oku yen.
// Used for index products whose raw close understates turnover.
func (b Bar) TypicalValueOku() float64 {
	return (b.High + b.Low + b.Close) / 3 * b.Volume / 1e8
}
