package models

import "time"

// Direction is the benchmark's day-over-day direction.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Heat classifies benchmark turnover against its trailing average.
type Heat string

const (
	HeatHot    Heat = "hot"
	HeatNormal Heat = "normal"
	HeatCold   Heat = "cold"
)

// MarketCondition summarizes the benchmark session. Available=false means
// the summary could not be computed; that is a degraded state, not an error.
type MarketCondition struct {
	Available      bool      `json:"available"`
	Benchmark      string    `json:"benchmark"`
	GapFromOpenPct float64   `json:"gap_from_open_pct"`
	DayOverDayPct  float64   `json:"day_over_day_pct"`
	ValueOku       float64   `json:"value_oku"`
	AvgValueOku    float64   `json:"avg_value_oku"`
	ValueRatio     float64   `json:"value_ratio"`
	HasValueRatio  bool      `json:"has_value_ratio"`
	Direction      Direction `json:"direction"`
	Heat           Heat      `json:"heat"`
	Label          string    `json:"label"`
	Caution        string    `json:"caution,omitempty"`
	AsOf           time.Time `json:"as_of"`
}
