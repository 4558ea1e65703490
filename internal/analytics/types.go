// Package analytics implements network analytics (C4): multi-block sampling
// for throughput/block-time/utilization/health, cross-network comparison,
// and growth estimation over a historical window.
package analytics

import "iotagateway/internal/token"

// Metrics is the derived per-network analytics snapshot (spec §3).
type Metrics struct {
	Network       string
	BlockHeight   uint64
	SampleSize    int
	AvgBlockTime  float64 // seconds
	AvgTxPerBlock float64
	RecentTPS     float64
	AvgGasUsed    float64
	Utilization   float64 // percent
	GasPriceWei   string
	Healthy       bool
	TokenInfo     token.FungibleMetadata
}

// Ranking is one ordered view produced by Compare.
type Ranking struct {
	Criterion string
	Networks  []string // network short names, ordered best-to-worst
}

// Comparison bundles the four rankings Compare produces (spec §4.4).
type Comparison struct {
	Primary  string
	Metrics  map[string]*Metrics
	Rankings []Ranking
}

// Growth is the delta analysis between now and a block ~periodDays back
// (spec §4.4 "Growth").
type Growth struct {
	Network                 string
	PeriodDays              float64
	DailyBlockCount         float64
	DailyTxCount            float64
	AvgDailyTPS             float64
	BlockTimeImprovementPct float64
	TxGrowthRatePct         float64
}
