package arbitrage

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"iotagateway/internal/config"
)

var siblingShortNames = func() map[string]bool {
	m := make(map[string]bool, len(config.SiblingShortNames))
	for _, s := range config.SiblingShortNames {
		m[s] = true
	}
	return m
}()

// PoolEntry is one registered constant-product pair for a symbol on a
// network.
type PoolEntry struct {
	PairAddress common.Address
	DEX         string
}

// Registry is the closed symbol/network -> pool table the engine quotes
// against. Like the chain registry, it is a static table: adding a new
// tradable pair is a code change, not a runtime discovery (spec §4.1 applied
// to C7).
type Registry struct {
	bySymbol map[string]map[string]PoolEntry
}

// NewRegistry builds the static pool registry.
func NewRegistry() *Registry {
	r := &Registry{bySymbol: make(map[string]map[string]PoolEntry)}
	for _, row := range staticPools() {
		if _, ok := r.bySymbol[row.symbol]; !ok {
			r.bySymbol[row.symbol] = make(map[string]PoolEntry)
		}
		r.bySymbol[row.symbol][row.network] = PoolEntry{PairAddress: row.pair, DEX: row.dex}
	}
	return r
}

type poolRow struct {
	symbol  string
	network string
	pair    common.Address
	dex     string
}

// staticPools is the closed registration set: a handful of liquid pairs
// across the sibling family and the broader EVM set. Each pair's base token
// is whatever other token the pair holds on chain; the engine does not
// compare two quotes whose base tokens differ.
func staticPools() []poolRow {
	return []poolRow{
		{symbol: "USDC", network: "s1", pair: common.HexToAddress("0x1000000000000000000000000000000000001a"), dex: "SiblingSwap"},
		{symbol: "USDC", network: "s2", pair: common.HexToAddress("0x1000000000000000000000000000000000002a"), dex: "SiblingSwap"},
		{symbol: "USDC", network: "ethlike", pair: common.HexToAddress("0x1000000000000000000000000000000000003a"), dex: "UniswapV2"},
		{symbol: "USDC", network: "poly", pair: common.HexToAddress("0x1000000000000000000000000000000000004a"), dex: "QuickSwap"},
		{symbol: "USDC", network: "arb", pair: common.HexToAddress("0x1000000000000000000000000000000000005a"), dex: "SushiSwap"},

		{symbol: "WETH", network: "ethlike", pair: common.HexToAddress("0x2000000000000000000000000000000000001a"), dex: "UniswapV2"},
		{symbol: "WETH", network: "arb", pair: common.HexToAddress("0x2000000000000000000000000000000000002a"), dex: "SushiSwap"},
		{symbol: "WETH", network: "poly", pair: common.HexToAddress("0x2000000000000000000000000000000000003a"), dex: "QuickSwap"},

		{symbol: "PRIM", network: "s1", pair: common.HexToAddress("0x3000000000000000000000000000000000001a"), dex: "SiblingSwap"},
		{symbol: "PRIM", network: "s3", pair: common.HexToAddress("0x3000000000000000000000000000000000002a"), dex: "SiblingSwap"},
	}
}

// NetworksFor returns the networks a symbol is registered on, for symbol
// matched case-insensitively.
func (r *Registry) NetworksFor(symbol string) []string {
	entries, ok := r.bySymbol[strings.ToUpper(symbol)]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(entries))
	for net := range entries {
		out = append(out, net)
	}
	return out
}

// Entry returns the pool entry for symbol on network, if registered.
func (r *Registry) Entry(symbol, network string) (PoolEntry, bool) {
	entries, ok := r.bySymbol[strings.ToUpper(symbol)]
	if !ok {
		return PoolEntry{}, false
	}
	e, ok := entries[network]
	return e, ok
}

// Tokens lists every registered symbol with its network coverage, for
// list_arbitrage_tokens.
func (r *Registry) Tokens() []TokenSummary {
	out := make([]TokenSummary, 0, len(r.bySymbol))
	for symbol, entries := range r.bySymbol {
		networks := make([]string, 0, len(entries))
		hasSibling := false
		for net := range entries {
			networks = append(networks, net)
			if siblingShortNames[net] {
				hasSibling = true
			}
		}
		out = append(out, TokenSummary{
			Symbol:          symbol,
			NetworkCount:    len(networks),
			HasSiblingQuote: hasSibling,
			Networks:        networks,
		})
	}
	return out
}
