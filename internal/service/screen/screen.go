// Package screen applies threshold gates to scored instruments and ranks the
// survivors. Gates are independent and AND-combined: any single failing gate
// excludes the instrument.
package screen

import (
	"sort"

	"KabuScan/internal/domain/models"
)

// SortKey selects the descending ranking order.
type SortKey string

const (
	SortTradingValue SortKey = "trading_value"
	SortGap          SortKey = "gap"
	SortComposite    SortKey = "composite" // trading value x short rvol
)

// Thresholds is one set of candidate gates. Zero values disable the
// corresponding numeric gate.
type Thresholds struct {
	MinTradingValueOku     float64 `json:"min_trading_value_oku" yaml:"min_trading_value_oku"`
	MinRvolShort           float64 `json:"min_rvol_short" yaml:"min_rvol_short"`
	MinRvolLong            float64 `json:"min_rvol_long" yaml:"min_rvol_long"`
	MinCloseStrength       float64 `json:"min_close_strength" yaml:"min_close_strength"`
	RequirePositiveGap     bool    `json:"require_positive_gap" yaml:"require_positive_gap"`
	RequireTrendOrBreakout bool    `json:"require_trend_or_breakout" yaml:"require_trend_or_breakout"`
}

// Pass evaluates every active gate against the RatioSet. The failed gate
// name comes back for observability; evaluation short-circuits but the
// outcome is identical either way.
func (t Thresholds) Pass(rs models.RatioSet) (bool, string) {
	if t.MinTradingValueOku > 0 && rs.TradingValueOku < t.MinTradingValueOku {
		return false, "min_trading_value"
	}
	if t.MinRvolShort > 0 && rs.RvolShort < t.MinRvolShort {
		return false, "min_rvol_short"
	}
	if t.MinRvolLong > 0 {
		if !rs.HasRvolLong || rs.RvolLong < t.MinRvolLong {
			return false, "min_rvol_long"
		}
	}
	if t.MinCloseStrength > 0 && rs.CloseStrength < t.MinCloseStrength {
		return false, "min_close_strength"
	}
	if t.RequirePositiveGap && rs.GapFromOpenPct <= 0 {
		return false, "require_positive_gap"
	}
	if t.RequireTrendOrBreakout && !rs.TrendUp && !rs.BreakoutReach {
		return false, "require_trend_or_breakout"
	}
	return true, ""
}

// SortValue computes the ranking value for one result under the key.
func SortValue(rs models.RatioSet, key SortKey) float64 {
	switch key {
	case SortGap:
		return rs.GapFromOpenPct
	case SortComposite:
		return rs.TradingValueOku * rs.RvolShort
	default:
		return rs.TradingValueOku
	}
}

// Filter keeps the results whose RatioSet passes every active gate. The
// output is always a subset of the input, in input order.
func Filter(results []models.ScanResult, t Thresholds) []models.ScanResult {
	kept := make([]models.ScanResult, 0, len(results))
	for _, r := range results {
		if ok, _ := t.Pass(r.Ratios); ok {
			kept = append(kept, r)
		}
	}
	return kept
}

// Rank sorts descending by the key, stably so ties keep input order, and
// assigns 1-based ranks. topK > 0 truncates after sorting.
func Rank(results []models.ScanResult, key SortKey, topK int) []models.ScanResult {
	ranked := make([]models.ScanResult, len(results))
	copy(ranked, results)
	for i := range ranked {
		ranked[i].SortValue = SortValue(ranked[i].Ratios, key)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].SortValue > ranked[j].SortValue
	})
	if topK > 0 && topK < len(ranked) {
		ranked = ranked[:topK]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// Screen is Filter followed by Rank.
func Screen(results []models.ScanResult, t Thresholds, key SortKey, topK int) []models.ScanResult {
	return Rank(Filter(results, t), key, topK)
}
