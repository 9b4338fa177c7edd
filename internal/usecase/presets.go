package usecase

import "KabuScan/internal/service/screen"

// Preset names selectable per scan request.
const (
	PresetDefault  = "default"
	PresetStrict   = "strict"
	PresetTwoStage = "two-stage"
)

// Preset returns the named threshold configuration. The numbers are the
// empirical dashboard defaults, not validated signals.
func Preset(name string) (ScanConfig, bool) {
	switch name {
	case PresetDefault, "":
		return ScanConfig{
			Thresholds: screen.Thresholds{
				MinTradingValueOku: 10,
				MinRvolShort:       1.5,
				MinCloseStrength:   0.6,
				RequirePositiveGap: true,
			},
			Sort: screen.SortTradingValue,
			TopK: 30,
		}, true
	case PresetStrict:
		return ScanConfig{
			Thresholds: screen.Thresholds{
				MinTradingValueOku:     20,
				MinRvolShort:           2.0,
				MinRvolLong:            1.5,
				MinCloseStrength:       0.7,
				RequirePositiveGap:     true,
				RequireTrendOrBreakout: true,
			},
			Sort:       screen.SortComposite,
			TopK:       20,
			WindowDays: 90,
		}, true
	case PresetTwoStage:
		return ScanConfig{
			Thresholds: screen.Thresholds{
				MinTradingValueOku: 10,
				MinRvolShort:       1.5,
				MinCloseStrength:   0.6,
				RequirePositiveGap: true,
			},
			Sort:      screen.SortTradingValue,
			TopK:      20,
			TwoStage:  true,
			StageTopN: 120,
			Strict: screen.Thresholds{
				MinTradingValueOku:     20,
				MinRvolShort:           2.0,
				MinRvolLong:            1.5,
				MinCloseStrength:       0.7,
				RequirePositiveGap:     true,
				RequireTrendOrBreakout: true,
			},
		}, true
	default:
		return ScanConfig{}, false
	}
}
