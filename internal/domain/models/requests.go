package models

// ScanRequest is the POST /api/scan body. Unset numeric fields inherit the
// preset's values; pointer booleans distinguish "not sent" from false.
type ScanRequest struct {
	Preset string `json:"preset" default:"default" validate:"oneof=default strict two-stage"`
	Sort   string `json:"sort" validate:"omitempty,oneof=trading_value gap composite"`
	TopK   int    `json:"top_k" validate:"gte=0,lte=500"`

	MinTradingValueOku float64 `json:"min_trading_value_oku" validate:"gte=0"`
	MinRvolShort       float64 `json:"min_rvol_short" validate:"gte=0"`
	MinRvolLong        float64 `json:"min_rvol_long" validate:"gte=0"`
	MinCloseStrength   float64 `json:"min_close_strength" validate:"gte=0,lte=1"`

	RequirePositiveGap     *bool `json:"require_positive_gap"`
	RequireTrendOrBreakout *bool `json:"require_trend_or_breakout"`

	WindowDays int `json:"window_days" validate:"gte=0,lte=365"`
	BatchSize  int `json:"batch_size" validate:"gte=0,lte=200"`
}

// UniverseResponse is the GET /api/universe body.
type UniverseResponse struct {
	Count       int          `json:"count"`
	Instruments []Instrument `json:"instruments"`
}
