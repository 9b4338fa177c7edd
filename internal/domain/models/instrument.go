package models

// SectorETF marks listings with no 33-sector classification (ETFs, ETNs,
// REITs and other funds) in the JPX master list.
const SectorETF = "-"

// Instrument is one listing from the universe master list.
type Instrument struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Sector  string `json:"sector"`
	Segment string `json:"segment"`
}

// IsEquity reports whether the instrument is an ordinary stock rather than
// an ETF or other fund product.
func (i Instrument) IsEquity() bool {
	return i.Sector != SectorETF
}
