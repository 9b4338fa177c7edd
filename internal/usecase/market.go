package usecase

import (
	"context"
	"time"

	"KabuScan/internal/domain/models"
	drepo "KabuScan/internal/domain/repository"
	"KabuScan/internal/service/classify"
	"KabuScan/internal/service/ratio"
	xlogger "KabuScan/pkg/logger"
)

// Value-temperature windows for the benchmark read. The average covers the
// 20 sessions before today, taken from a 21-row tail; a thinner history
// falls back to averaging whatever the tail holds.
const (
	marketWindowDays  = 90
	valueTailSessions = 21
	valueMinSessions  = 6
	valueAvgMinRows   = 7
)

// MarketSummarizer produces the market-weather snapshot from one benchmark
// instrument, independently of any scan.
type MarketSummarizer struct {
	source    drepo.BarSource
	benchmark string
	logger    *xlogger.Logger
}

func NewMarketSummarizer(source drepo.BarSource, benchmark string, logger *xlogger.Logger) *MarketSummarizer {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &MarketSummarizer{source: source, benchmark: benchmark, logger: logger}
}

// Condition computes the snapshot. A stale or missing benchmark feed makes
// the snapshot unavailable; it never fails the caller.
func (m *MarketSummarizer) Condition(ctx context.Context) *models.MarketCondition {
	cond := &models.MarketCondition{
		Benchmark: m.benchmark,
		AsOf:      time.Now(),
	}

	barsByCode, err := m.source.FetchBars(ctx, []string{m.benchmark}, marketWindowDays)
	if err != nil {
		m.logger.Warn("benchmark fetch failed", xlogger.String("benchmark", m.benchmark), xlogger.Error(err))
		return cond
	}
	bars := barsByCode[m.benchmark]
	if len(bars) < 2 {
		m.logger.Warn("benchmark history too short", xlogger.Int("bars", len(bars)))
		return cond
	}

	today := bars[len(bars)-1]
	prev := bars[len(bars)-2]

	gap, ok := ratio.GapFromOpenPct(today)
	if !ok {
		return cond
	}
	dod, ok := ratio.DayOverDayPct(today, prev)
	if !ok {
		return cond
	}

	cond.Available = true
	cond.GapFromOpenPct = gap
	cond.DayOverDayPct = dod

	if len(bars) >= valueMinSessions {
		cond.ValueOku = today.TypicalValueOku()

		tail := bars
		if len(tail) > valueTailSessions {
			tail = tail[len(tail)-valueTailSessions:]
		}
		avgOver := tail
		if len(tail) >= valueAvgMinRows {
			avgOver = tail[:len(tail)-1] // today excluded
		}
		var sum float64
		for _, b := range avgOver {
			sum += b.TypicalValueOku()
		}
		avg := sum / float64(len(avgOver))
		if avg > 0 {
			cond.AvgValueOku = avg
			cond.ValueRatio = cond.ValueOku / avg
			cond.HasValueRatio = true
			cond.Heat = classify.HeatOf(cond.ValueRatio)
		}
	}

	if !cond.HasValueRatio {
		// the weather label assumes normal heat in this case; the field
		// must say the same
		cond.Heat = models.HeatNormal
	}
	cond.Direction, cond.Label, cond.Caution = classify.Weather(dod, cond.Heat, cond.HasValueRatio)
	return cond
}
