// Package arbitrage implements the cross-chain arbitrage engine (C7): it
// quotes a token symbol against a fixed pool registry on every candidate
// network using constant-product reserve pricing, then enumerates directed
// routes whose profit clears a caller-supplied threshold (spec §4.7).
package arbitrage

import "time"

// Quote is one network's constant-product reading for a symbol.
type Quote struct {
	Network   string
	DEX       string
	BaseToken string // the pool's other token; price is denominated in this
	Price     string // formatted in the base token's decimals
	Liquidity string // target-token reserve, formatted in its own decimals
	IsSibling bool
	price     float64 // unexported: the float used for ranking/profit math
}

// Pair is a directed arbitrage opportunity: buy low on one network, sell
// high on another.
type Pair struct {
	Token            string
	BaseToken        string
	Buy              Leg
	Sell             Leg
	ProfitPct        float64
	BridgingRequired bool
	TakenAt          time.Time
}

// Leg is one side (buy or sell) of an arbitrage pair.
type Leg struct {
	Network   string
	Price     string
	DEX       string
	Liquidity string
}

// TokenSummary is one row of the pool-registry listing
// (list_arbitrage_tokens): the payload isn't specified beyond the tool name,
// so it reports what a caller needs before invoking
// find_arbitrage_opportunities — how many networks quote the symbol, and
// whether any of them is a sibling network.
type TokenSummary struct {
	Symbol          string
	NetworkCount    int
	HasSiblingQuote bool
	Networks        []string
}
