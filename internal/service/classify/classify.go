// Package classify maps a RatioSet to discrete labels. The momentum ladder
// is evaluated in fixed priority order with first match winning; reordering
// the rules changes behavior.
package classify

import (
	"KabuScan/internal/domain/models"
)

// Market-weather volume-heat thresholds, ratio of today's trading value to
// its trailing 20-day average.
const (
	HeatHotRatio  = 1.15
	HeatColdRatio = 0.90
)

// Momentum returns exactly one label for the RatioSet.
func Momentum(rs models.RatioSet) models.Momentum {
	switch {
	case rs.GapFromOpenPct > 1.0 && rs.DayOverDayPct > 2.0:
		return models.MomentumStrongBullish
	case rs.GapFromOpenPct > 2.0:
		return models.MomentumSharpRise
	case rs.DayOverDayPct > 0 && rs.GapFromOpenPct < -0.5:
		return models.MomentumFading
	case rs.DayOverDayPct > 0.5 && rs.GapFromOpenPct > 0:
		return models.MomentumSteadyGain
	case rs.DayOverDayPct < -1.0:
		return models.MomentumWeak
	default:
		return models.MomentumNeutral
	}
}

// Breakout classifies today's price action against the trailing 20-day high.
// Applied alongside Momentum, not instead of it. Without a defined rolling
// high the status is normal.
func Breakout(today models.Bar, rs models.RatioSet) models.BreakoutStatus {
	if !rs.HasRollingHigh {
		return models.BreakoutNormal
	}
	switch {
	case today.Close > rs.RollingHigh20:
		return models.BreakoutNewHigh
	case today.High > rs.RollingHigh20:
		return models.BreakoutAttempt
	case rs.CloseStrength < 0.3:
		return models.BreakoutUpperWick
	case rs.CloseStrength > 0.9:
		return models.BreakoutClosingHigh
	default:
		return models.BreakoutNormal
	}
}

// HeatOf buckets the benchmark trading-value ratio.
func HeatOf(valueRatio float64) models.Heat {
	switch {
	case valueRatio >= HeatHotRatio:
		return models.HeatHot
	case valueRatio <= HeatColdRatio:
		return models.HeatCold
	default:
		return models.HeatNormal
	}
}

// Weather merges direction and heat into one of six labels plus an optional
// caution annotation. The label set follows the risk-on/risk-off wording of
// the benchmark dashboard this replaces.
func Weather(dayOverDayPct float64, heat models.Heat, hasHeat bool) (models.Direction, string, string) {
	dir := models.DirectionUp
	if dayOverDayPct < 0 {
		dir = models.DirectionDown
	}
	if !hasHeat {
		heat = models.HeatNormal
	}

	var label string
	if dir == models.DirectionUp {
		switch heat {
		case models.HeatHot:
			label = "risk-on (hot)"
		case models.HeatCold:
			label = "risk-on (cold)"
		default:
			label = "risk-on (normal)"
		}
	} else {
		switch heat {
		case models.HeatHot:
			label = "risk-off (hot)"
		case models.HeatCold:
			label = "risk-off (cold)"
		default:
			label = "risk-off (normal)"
		}
	}

	var caution string
	switch {
	case dir == models.DirectionDown && heat == models.HeatHot:
		caution = "capitulation or hedging pressure"
	case dir == models.DirectionUp && heat == models.HeatCold:
		caution = "thin rally, continuation doubtful"
	case dir == models.DirectionDown && heat == models.HeatCold:
		caution = "quiet drift lower, mostly sidelined"
	}

	return dir, label, caution
}
