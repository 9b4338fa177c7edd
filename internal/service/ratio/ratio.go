// Package ratio computes the derived per-instrument ratios a scan needs from
// an ordered sequence of daily bars (oldest to newest).
//
// Convention: relative volume averages the trailing window including the
// current day. The sources this replaces disagreed between including and
// excluding today; including it is the documented choice here.
package ratio

import (
	"KabuScan/internal/domain/models"
)

const (
	// ShortWindow and LongWindow are the relative-volume window lengths.
	ShortWindow = 5
	LongWindow  = 20

	// TrendFast and TrendSlow are the moving-average lengths for the
	// trend-up condition.
	TrendFast = 5
	TrendSlow = 25

	// BreakoutWindow is the rolling-high lookback, excluding today.
	BreakoutWindow = 20

	// BreakoutTolerance counts a close within 0.5% below the literal
	// 20-day high as having reached it.
	BreakoutTolerance = 0.995

	// rangeEpsilon guards the close-strength division when high == low.
	rangeEpsilon = 1e-9
)

// GapFromOpenPct is the percent move from today's open to today's close.
// Not defined when the open is zero.
func GapFromOpenPct(b models.Bar) (float64, bool) {
	if b.Open == 0 {
		return 0, false
	}
	return (b.Close - b.Open) / b.Open * 100, true
}

// DayOverDayPct is the percent move from the previous close to today's close.
// Not defined when the previous close is zero.
func DayOverDayPct(today, prev models.Bar) (float64, bool) {
	if prev.Close == 0 {
		return 0, false
	}
	return (today.Close - prev.Close) / prev.Close * 100, true
}

// RelativeVolume is today's volume over the mean volume of the trailing
// window, today included. Not defined when there are fewer bars than the
// window or the mean is not positive.
func RelativeVolume(bars []models.Bar, window int) (float64, bool) {
	if window <= 0 || len(bars) < window {
		return 0, false
	}
	var sum float64
	for _, b := range bars[len(bars)-window:] {
		sum += b.Volume
	}
	mean := sum / float64(window)
	if mean <= 0 {
		return 0, false
	}
	return bars[len(bars)-1].Volume / mean, true
}

// CloseStrength is the position of the close within the day's range, in
// [0,1]. A flat bar (high == low) reads 0.5: the close sat in the middle of
// a range that did not exist.
func CloseStrength(b models.Bar) float64 {
	rng := b.High - b.Low
	if rng < rangeEpsilon {
		return 0.5
	}
	s := (b.Close - b.Low) / rng
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

// RollingHigh is the maximum high over the window most recent days strictly
// before today. Not defined with fewer than window+1 bars.
func RollingHigh(bars []models.Bar, window int) (float64, bool) {
	if window <= 0 || len(bars) < window+1 {
		return 0, false
	}
	prior := bars[len(bars)-1-window : len(bars)-1]
	high := prior[0].High
	for _, b := range prior[1:] {
		if b.High > high {
			high = b.High
		}
	}
	return high, true
}

// SMA is the simple moving average of closes over the last n bars.
func SMA(bars []models.Bar, n int) (float64, bool) {
	if n <= 0 || len(bars) < n {
		return 0, false
	}
	var sum float64
	for _, b := range bars[len(bars)-n:] {
		sum += b.Close
	}
	return sum / float64(n), true
}

// TrendUp holds when the fast average sits above the slow one and today's
// close sits above the slow one. False whenever either average is undefined.
func TrendUp(bars []models.Bar) bool {
	fast, ok := SMA(bars, TrendFast)
	if !ok {
		return false
	}
	slow, ok := SMA(bars, TrendSlow)
	if !ok {
		return false
	}
	today := bars[len(bars)-1].Close
	return fast > slow && today > slow
}

// BreakoutReach holds when the close is within the tolerance band of the
// rolling high or above it.
func BreakoutReach(close, rollingHigh float64) bool {
	return close > rollingHigh*BreakoutTolerance
}

// Compute derives the full RatioSet for one instrument. A skip reason other
// than SkipNone means the instrument cannot be scored this scan; that is a
// filtering outcome, not an error. Long-window fields are flagged invalid
// rather than skipping, so a short fetch window still yields a usable set.
func Compute(bars []models.Bar) (models.RatioSet, models.SkipReason) {
	var rs models.RatioSet

	if len(bars) < 2 {
		return rs, models.SkipInsufficientBars
	}
	today := bars[len(bars)-1]
	prev := bars[len(bars)-2]

	gap, ok := GapFromOpenPct(today)
	if !ok {
		return rs, models.SkipZeroOpen
	}
	dod, ok := DayOverDayPct(today, prev)
	if !ok {
		return rs, models.SkipZeroPrevClose
	}

	if len(bars) < ShortWindow {
		return rs, models.SkipInsufficientBars
	}
	rvolShort, ok := RelativeVolume(bars, ShortWindow)
	if !ok {
		return rs, models.SkipZeroVolumeAvg
	}

	rs.GapFromOpenPct = gap
	rs.DayOverDayPct = dod
	rs.TradingValueOku = today.TradingValueOku()
	rs.RvolShort = rvolShort
	rs.CloseStrength = CloseStrength(today)

	if rvolLong, ok := RelativeVolume(bars, LongWindow); ok {
		rs.RvolLong = rvolLong
		rs.HasRvolLong = true
	}
	if high, ok := RollingHigh(bars, BreakoutWindow); ok {
		rs.RollingHigh20 = high
		rs.HasRollingHigh = true
		rs.BreakoutReach = BreakoutReach(today.Close, high)
	}
	rs.TrendUp = TrendUp(bars)

	return rs, models.SkipNone
}
