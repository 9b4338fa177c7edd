package models

import "time"

// Scan outcomes. A clean scan that matched nothing is OutcomeNoCandidates,
// never an error.
const (
	OutcomeOK           = "ok"
	OutcomeNoCandidates = "no-candidates"
)

// ScanResult is one ranked candidate.
type ScanResult struct {
	Instrument Instrument     `json:"instrument"`
	Ratios     RatioSet       `json:"ratios"`
	Momentum   Momentum       `json:"momentum"`
	Breakout   BreakoutStatus `json:"breakout"`
	SortValue  float64        `json:"sort_value"`
	Rank       int            `json:"rank"`
}

// Exclusion records one instrument dropped during scoring.
type Exclusion struct {
	Code   string     `json:"code"`
	Reason SkipReason `json:"reason"`
	Cause  string     `json:"cause,omitempty"`
}

// ScanReport is the full result of one scan run.
type ScanReport struct {
	Results     []ScanResult  `json:"results"`
	Outcome     string        `json:"outcome"`
	Universe    int           `json:"universe"`
	Scored      int           `json:"scored"`
	FetchFailed int           `json:"fetch_failed"`
	Exclusions  []Exclusion   `json:"exclusions,omitempty"`
	Started     time.Time     `json:"started"`
	Elapsed     time.Duration `json:"elapsed"`
}

// SkippedTotal counts every universe member that did not reach scoring.
func (r *ScanReport) SkippedTotal() int {
	return r.FetchFailed + len(r.Exclusions)
}
