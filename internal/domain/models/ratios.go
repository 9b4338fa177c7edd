package models

// SkipReason explains why an instrument was excluded from scoring.
type SkipReason int

const (
	SkipNone SkipReason = iota
	SkipInsufficientBars
	SkipZeroOpen
	SkipZeroPrevClose
	SkipZeroVolumeAvg
	SkipMissingData
)

func (r SkipReason) String() string {
	switch r {
	case SkipNone:
		return "none"
	case SkipInsufficientBars:
		return "insufficient_bars"
	case SkipZeroOpen:
		return "zero_open"
	case SkipZeroPrevClose:
		return "zero_prev_close"
	case SkipZeroVolumeAvg:
		return "zero_volume_avg"
	case SkipMissingData:
		return "missing_data"
	default:
		return "unknown"
	}
}

// RatioSet is the full set of derived ratios for one instrument as of the
// latest bar. Long-window fields carry validity flags because a recent
// listing can be scoreable on the short window alone.
type RatioSet struct {
	GapFromOpenPct  float64 `json:"gap_from_open_pct"`
	DayOverDayPct   float64 `json:"day_over_day_pct"`
	TradingValueOku float64 `json:"trading_value_oku"`
	RvolShort       float64 `json:"rvol_short"`
	RvolLong        float64 `json:"rvol_long"`
	HasRvolLong     bool    `json:"has_rvol_long"`
	CloseStrength   float64 `json:"close_strength"`
	RollingHigh20   float64 `json:"rolling_high_20"`
	HasRollingHigh  bool    `json:"has_rolling_high"`
	TrendUp         bool    `json:"trend_up"`
	BreakoutReach   bool    `json:"breakout_reach"`
}
