package usecase

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"KabuScan/internal/domain/models"
)

type benchSource struct {
	bars map[string][]models.Bar
	err  error
}

func (b *benchSource) FetchBars(_ context.Context, codes []string, _ int) (map[string][]models.Bar, error) {
	if b.err != nil {
		return nil, b.err
	}
	out := make(map[string][]models.Bar)
	for _, c := range codes {
		if bars, ok := b.bars[c]; ok {
			out[c] = bars
		}
	}
	return out, nil
}

// benchBars builds a flat benchmark history and lets the test shape the
// last two sessions.
func benchBars(n int, price, volume float64) []models.Bar {
	bars := make([]models.Bar, n)
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		bars[i] = models.Bar{
			Date: day.AddDate(0, 0, i),
			Open: price, High: price, Low: price, Close: price, Volume: volume,
		}
	}
	return bars
}

func TestConditionUpHot(t *testing.T) {
	bars := benchBars(30, 100, 1000)
	prev := &bars[len(bars)-2]
	today := &bars[len(bars)-1]
	// +0.5% day over day, volume 1.3x the trailing average
	prev.Close = 100
	today.Open = 100
	today.High = 100.5
	today.Low = 100.5
	today.Close = 100.5
	today.Volume = 1000 * 1.30 * (100.0 / 100.5) // typical-price ratio exactly 1.30

	src := &benchSource{bars: map[string][]models.Bar{"1570.T": bars}}
	m := NewMarketSummarizer(src, "1570.T", nil)
	cond := m.Condition(context.Background())

	if !cond.Available {
		t.Fatalf("expected available condition")
	}
	if cond.Direction != models.DirectionUp {
		t.Fatalf("direction = %q, want up", cond.Direction)
	}
	if !cond.HasValueRatio || math.Abs(cond.ValueRatio-1.30) > 1e-9 {
		t.Fatalf("value ratio = %v (valid=%v), want 1.30", cond.ValueRatio, cond.HasValueRatio)
	}
	if cond.Heat != models.HeatHot {
		t.Fatalf("heat = %q, want hot at ratio 1.30", cond.Heat)
	}
	if cond.Label != "risk-on (hot)" {
		t.Fatalf("label = %q, want risk-on (hot)", cond.Label)
	}
	if cond.Caution != "" {
		t.Fatalf("up+hot must carry no caution, got %q", cond.Caution)
	}
}

func TestConditionUnavailableOnShortHistory(t *testing.T) {
	src := &benchSource{bars: map[string][]models.Bar{"1570.T": benchBars(1, 100, 1000)}}
	m := NewMarketSummarizer(src, "1570.T", nil)
	cond := m.Condition(context.Background())
	if cond.Available {
		t.Fatalf("one bar must be unavailable, not an error")
	}
}

func TestConditionUnavailableOnFetchError(t *testing.T) {
	src := &benchSource{err: errors.New("feed down")}
	m := NewMarketSummarizer(src, "1570.T", nil)
	cond := m.Condition(context.Background())
	if cond.Available {
		t.Fatalf("fetch failure must yield unavailable, not a panic or error")
	}
	if cond.Benchmark != "1570.T" {
		t.Fatalf("benchmark = %q", cond.Benchmark)
	}
}

func TestConditionWithoutValueRatioReportsNormalHeat(t *testing.T) {
	// four sessions: enough for direction, too few for the value windows
	bars := benchBars(4, 100, 1000)
	bars[len(bars)-1].Close = 100.5

	src := &benchSource{bars: map[string][]models.Bar{"1570.T": bars}}
	m := NewMarketSummarizer(src, "1570.T", nil)
	cond := m.Condition(context.Background())

	if !cond.Available {
		t.Fatalf("expected available condition")
	}
	if cond.HasValueRatio {
		t.Fatalf("four sessions must not produce a value ratio")
	}
	if cond.Heat != models.HeatNormal {
		t.Fatalf("heat = %q, want normal to match the %q label", cond.Heat, cond.Label)
	}
	if cond.Label != "risk-on (normal)" {
		t.Fatalf("label = %q, want risk-on (normal)", cond.Label)
	}
}

func TestConditionAverageExcludesToday(t *testing.T) {
	// 21 flat sessions at value V, today spikes to 2V; the average must not
	// include the spike
	bars := benchBars(22, 100, 1000)
	today := &bars[len(bars)-1]
	today.Volume = 2000
	today.Close = 100.5 // up day

	src := &benchSource{bars: map[string][]models.Bar{"1570.T": bars}}
	m := NewMarketSummarizer(src, "1570.T", nil)
	cond := m.Condition(context.Background())
	if !cond.HasValueRatio {
		t.Fatalf("expected a value ratio")
	}
	// today's typical value ~2x the flat sessions
	if cond.ValueRatio < 1.9 {
		t.Fatalf("value ratio = %v; a spike diluted below 1.9 means today leaked into the average", cond.ValueRatio)
	}
}
