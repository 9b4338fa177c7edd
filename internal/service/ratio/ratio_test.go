package ratio

import (
	"math"
	"testing"
	"time"

	"KabuScan/internal/domain/models"
)

func mkBars(rows [][5]float64) []models.Bar {
	bars := make([]models.Bar, 0, len(rows))
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	for i, r := range rows {
		bars = append(bars, models.Bar{
			Date:   day.AddDate(0, 0, i),
			Open:   r[0],
			High:   r[1],
			Low:    r[2],
			Close:  r[3],
			Volume: r[4],
		})
	}
	return bars
}

// flatBars returns n identical bars, handy as padding before the day under test.
func flatBars(n int, price, volume float64) []models.Bar {
	rows := make([][5]float64, n)
	for i := range rows {
		rows[i] = [5]float64{price, price, price, price, volume}
	}
	return mkBars(rows)
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestGapFromOpenPct(t *testing.T) {
	got, ok := GapFromOpenPct(models.Bar{Open: 1000, Close: 1050})
	if !ok {
		t.Fatalf("expected defined gap")
	}
	if !almostEqual(got, 5.0) {
		t.Fatalf("gap = %v, want 5.0", got)
	}

	if _, ok := GapFromOpenPct(models.Bar{Open: 0, Close: 1050}); ok {
		t.Fatalf("zero open must be undefined")
	}
}

func TestDayOverDayPct(t *testing.T) {
	got, ok := DayOverDayPct(models.Bar{Close: 1050}, models.Bar{Close: 1000})
	if !ok || !almostEqual(got, 5.0) {
		t.Fatalf("dod = %v ok=%v, want 5.0 true", got, ok)
	}

	if _, ok := DayOverDayPct(models.Bar{Close: 1050}, models.Bar{Close: 0}); ok {
		t.Fatalf("zero previous close must be undefined")
	}
}

func TestRelativeVolumeIncludesToday(t *testing.T) {
	bars := mkBars([][5]float64{
		{100, 100, 100, 100, 1000},
		{100, 100, 100, 100, 1000},
		{100, 100, 100, 100, 1000},
		{100, 100, 100, 100, 1000},
		{100, 100, 100, 100, 6000},
	})
	got, ok := RelativeVolume(bars, 5)
	if !ok {
		t.Fatalf("expected defined rvol")
	}
	// mean = (4*1000 + 6000) / 5 = 2000, today inclusive
	if !almostEqual(got, 3.0) {
		t.Fatalf("rvol = %v, want 3.0", got)
	}
}

func TestRelativeVolumeUndefined(t *testing.T) {
	short := flatBars(3, 100, 1000)
	if _, ok := RelativeVolume(short, 5); ok {
		t.Fatalf("short window must be undefined")
	}
	zero := flatBars(5, 100, 0)
	if _, ok := RelativeVolume(zero, 5); ok {
		t.Fatalf("zero mean volume must be undefined")
	}
}

func TestCloseStrength(t *testing.T) {
	cases := []struct {
		name string
		bar  models.Bar
		want float64
	}{
		{"at high", models.Bar{High: 110, Low: 100, Close: 110}, 1.0},
		{"at low", models.Bar{High: 110, Low: 100, Close: 100}, 0.0},
		{"middle", models.Bar{High: 110, Low: 100, Close: 105}, 0.5},
		{"flat bar", models.Bar{High: 100, Low: 100, Close: 100}, 0.5},
	}
	for _, tc := range cases {
		got := CloseStrength(tc.bar)
		if !almostEqual(got, tc.want) {
			t.Errorf("%s: close strength = %v, want %v", tc.name, got, tc.want)
		}
		if got < 0 || got > 1 || math.IsNaN(got) {
			t.Errorf("%s: close strength %v outside [0,1]", tc.name, got)
		}
	}
}

func TestRollingHighExcludesToday(t *testing.T) {
	bars := flatBars(20, 100, 1000)
	// today spikes above every prior high; the rolling high must not see it
	bars = append(bars, models.Bar{Open: 100, High: 200, Low: 100, Close: 190, Volume: 1000})
	high, ok := RollingHigh(bars, 20)
	if !ok {
		t.Fatalf("expected defined rolling high")
	}
	if !almostEqual(high, 100) {
		t.Fatalf("rolling high = %v, want 100", high)
	}
}

func TestTrendUpRequiresSlowWindow(t *testing.T) {
	if TrendUp(flatBars(24, 100, 1000)) {
		t.Fatalf("trend-up must be false with fewer than 25 bars")
	}

	// rising closes: fast SMA above slow SMA and close above slow SMA
	rows := make([][5]float64, 30)
	for i := range rows {
		p := 100 + float64(i)
		rows[i] = [5]float64{p, p, p, p, 1000}
	}
	if !TrendUp(mkBars(rows)) {
		t.Fatalf("steadily rising series must be trend-up")
	}
}

func TestBreakoutReachTolerance(t *testing.T) {
	if !BreakoutReach(99.6, 100) {
		t.Fatalf("close 0.4%% below the high is within tolerance")
	}
	if BreakoutReach(99.4, 100) {
		t.Fatalf("close 0.6%% below the high is out of tolerance")
	}
}

func TestComputeSkipReasons(t *testing.T) {
	if _, reason := Compute(flatBars(1, 100, 1000)); reason != models.SkipInsufficientBars {
		t.Fatalf("one bar: reason = %v, want insufficient_bars", reason)
	}

	zeroOpen := flatBars(5, 100, 1000)
	zeroOpen[len(zeroOpen)-1].Open = 0
	if _, reason := Compute(zeroOpen); reason != models.SkipZeroOpen {
		t.Fatalf("zero open: reason = %v, want zero_open", reason)
	}

	zeroPrev := flatBars(5, 100, 1000)
	zeroPrev[len(zeroPrev)-2].Close = 0
	if _, reason := Compute(zeroPrev); reason != models.SkipZeroPrevClose {
		t.Fatalf("zero prev close: reason = %v, want zero_prev_close", reason)
	}

	zeroVol := flatBars(5, 100, 0)
	if _, reason := Compute(zeroVol); reason != models.SkipZeroVolumeAvg {
		t.Fatalf("zero volume: reason = %v, want zero_volume_avg", reason)
	}
}

func TestComputeFullSet(t *testing.T) {
	bars := flatBars(25, 1000, 1_000_000)
	bars[len(bars)-1] = models.Bar{
		Date: bars[len(bars)-1].Date,
		Open: 1000, High: 1100, Low: 1000, Close: 1050, Volume: 1_000_000,
	}
	rs, reason := Compute(bars)
	if reason != models.SkipNone {
		t.Fatalf("reason = %v, want none", reason)
	}
	if !almostEqual(rs.GapFromOpenPct, 5.0) {
		t.Errorf("gap = %v, want 5.0", rs.GapFromOpenPct)
	}
	if !almostEqual(rs.DayOverDayPct, 5.0) {
		t.Errorf("dod = %v, want 5.0", rs.DayOverDayPct)
	}
	if !almostEqual(rs.TradingValueOku, 10.5) {
		t.Errorf("trading value = %v oku, want 10.5", rs.TradingValueOku)
	}
	if !rs.HasRvolLong || !almostEqual(rs.RvolLong, 1.0) {
		t.Errorf("rvol long = %v (valid=%v), want 1.0 valid", rs.RvolLong, rs.HasRvolLong)
	}
	if !rs.HasRollingHigh || !almostEqual(rs.RollingHigh20, 1000) {
		t.Errorf("rolling high = %v (valid=%v), want 1000 valid", rs.RollingHigh20, rs.HasRollingHigh)
	}
	if !rs.BreakoutReach {
		t.Errorf("close above the prior 20-day high must reach breakout")
	}
	if !almostEqual(rs.CloseStrength, 0.5) {
		t.Errorf("close strength = %v, want 0.5", rs.CloseStrength)
	}
}

func TestComputeShortWindowLeavesLongFieldsInvalid(t *testing.T) {
	rs, reason := Compute(flatBars(10, 100, 1000))
	if reason != models.SkipNone {
		t.Fatalf("reason = %v, want none", reason)
	}
	if rs.HasRvolLong || rs.HasRollingHigh {
		t.Fatalf("10 bars must not define long-window fields")
	}
	if rs.TrendUp {
		t.Fatalf("trend-up undefined below 25 bars")
	}
}
