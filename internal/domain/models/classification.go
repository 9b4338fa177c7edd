package models

// Momentum is the first-match momentum label for an instrument.
type Momentum string

const (
	MomentumStrongBullish Momentum = "strong-bullish"
	MomentumSharpRise     Momentum = "sharp-rise"
	MomentumFading        Momentum = "fading"
	MomentumSteadyGain    Momentum = "steady-gain"
	MomentumWeak          Momentum = "weak"
	MomentumNeutral       Momentum = "neutral"
)

// BreakoutStatus describes the bar's position against the trailing 20-day high.
type BreakoutStatus string

const (
	BreakoutNewHigh     BreakoutStatus = "new-20d-high"
	BreakoutAttempt     BreakoutStatus = "breakout-attempt"
	BreakoutUpperWick   BreakoutStatus = "upper-wick-warning"
	BreakoutClosingHigh BreakoutStatus = "closing-near-high"
	BreakoutNormal      BreakoutStatus = "normal"
)
