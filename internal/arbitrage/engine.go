package arbitrage

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"iotagateway/internal/apperrors"
	"iotagateway/internal/chain"
	"iotagateway/internal/logger"
	"iotagateway/internal/token"
)

const defaultMinProfitPct = 1.0

var (
	typeUint112, _ = abi.NewType("uint112", "", nil)
	typeUint32, _ = abi.NewType("uint32", "", nil)
	typeAddress, _ = abi.NewType("address", "", nil)

	argsReserves = abi.Arguments{{Type: typeUint112}, {Type: typeUint112}, {Type: typeUint32}}
	argsAddress  = abi.Arguments{{Type: typeAddress}}
)

// Engine quotes a symbol against the closed pool registry, per network, and
// enumerates directed profitable routes (spec §4.7).
type Engine struct {
	chains *chain.Registry
	tokens *token.Reader
	pools  *Registry
	log    logger.Logger
}

// NewEngine builds an arbitrage Engine.
func NewEngine(chains *chain.Registry, tokens *token.Reader, pools *Registry, log logger.Logger) *Engine {
	return &Engine{chains: chains, tokens: tokens, pools: pools, log: log}
}

var nowFunc = time.Now

// quoteOne reads the canonical pair at the registered pool address for
// symbol on network and derives a constant-product quote.
func (e *Engine) quoteOne(ctx context.Context, symbol, network string) (*Quote, error) {
	entry, ok := e.pools.Entry(symbol, network)
	if !ok {
		return nil, apperrors.NewNotFound("pool", symbol+"@"+network)
	}
	net, err := e.chains.Resolve(network)
	if err != nil {
		return nil, err
	}
	client, err := e.chains.Client(ctx, net)
	if err != nil {
		return nil, err
	}

	reserve0, reserve1, token0Addr, token1Addr, err := readPair(ctx, client, entry.PairAddress)
	if err != nil {
		return nil, err
	}

	meta0, err0 := e.tokens.FungibleMetadata(ctx, net, token0Addr)
	meta1, err1 := e.tokens.FungibleMetadata(ctx, net, token1Addr)
	if err0 != nil || err1 != nil {
		return nil, apperrors.NewUpstream("pool token metadata", fmt.Errorf("token0 err=%v token1 err=%v", err0, err1))
	}

	var reserveTarget, reserveBase *big.Int
	var decimalsTarget, decimalsBase uint8
	var baseSymbol string
	switch {
	case strings.EqualFold(meta0.Symbol, symbol):
		reserveTarget, decimalsTarget = reserve0, meta0.Decimals
		reserveBase, decimalsBase = reserve1, meta1.Decimals
		baseSymbol = meta1.Symbol
	case strings.EqualFold(meta1.Symbol, symbol):
		reserveTarget, decimalsTarget = reserve1, meta1.Decimals
		reserveBase, decimalsBase = reserve0, meta0.Decimals
		baseSymbol = meta0.Symbol
	default:
		return nil, apperrors.NewLogic(fmt.Sprintf("pool %s@%s does not quote symbol %s", symbol, network, symbol))
	}

	if reserveTarget.Sign() == 0 {
		return nil, apperrors.NewLogic("pool has zero target reserve")
	}

	priceRaw := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimalsTarget)), nil)
	priceRaw.Mul(priceRaw, reserveBase)
	priceRaw.Quo(priceRaw, reserveTarget)

	priceFloat, _ := new(big.Float).Quo(
		new(big.Float).SetInt(priceRaw),
		new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimalsBase)), nil)),
	).Float64()

	return &Quote{
		Network:   network,
		DEX:       entry.DEX,
		BaseToken: baseSymbol,
		Price:     formatDecimal(priceRaw, decimalsBase),
		Liquidity: formatDecimal(reserveTarget, decimalsTarget),
		IsSibling: e.chains.IsSiblingDescriptor(net),
		price:     priceFloat,
	}, nil
}

// warnf logs a warning if the engine was built with a logger; arbitrage is
// exercised extensively in tests with a nil logger (spec has no logging
// requirement on the core, only the ambient stack).
func (e *Engine) warnf(format string, args ...interface{}) {
	if e.log != nil {
		e.log.Warningf(format, args...)
	}
}

func readPair(ctx context.Context, client chain.Client, pair common.Address) (reserve0, reserve1 *big.Int, token0, token1 common.Address, err error) {
	eg, egctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		raw, err := client.Call(egctx, pair, selGetReserves)
		if err != nil {
			return err
		}
		vals, err := argsReserves.Unpack(raw)
		if err != nil || len(vals) != 3 {
			return fmt.Errorf("can not decode getReserves return")
		}
		reserve0 = vals[0].(*big.Int)
		reserve1 = vals[1].(*big.Int)
		return nil
	})
	eg.Go(func() error {
		raw, err := client.Call(egctx, pair, selToken0)
		if err != nil {
			return err
		}
		vals, err := argsAddress.Unpack(raw)
		if err != nil || len(vals) != 1 {
			return fmt.Errorf("can not decode token0 return")
		}
		token0 = vals[0].(common.Address)
		return nil
	})
	eg.Go(func() error {
		raw, err := client.Call(egctx, pair, selToken1)
		if err != nil {
			return err
		}
		vals, err := argsAddress.Unpack(raw)
		if err != nil || len(vals) != 1 {
			return fmt.Errorf("can not decode token1 return")
		}
		token1 = vals[0].(common.Address)
		return nil
	})

	if err = eg.Wait(); err != nil {
		return nil, nil, common.Address{}, common.Address{}, apperrors.NewUpstream("pair read", err)
	}
	return reserve0, reserve1, token0, token1, nil
}

// QuoteAll quotes symbol on every network in candidates that the pool
// registry actually covers, concurrently, one task per network (spec §5).
// Networks the registry doesn't cover are silently dropped, not errored.
func (e *Engine) QuoteAll(ctx context.Context, symbol string, candidates []string) (map[string]*Quote, error) {
	quotable := make([]string, 0, len(candidates))
	for _, n := range candidates {
		if _, ok := e.pools.Entry(symbol, n); ok {
			quotable = append(quotable, n)
		}
	}

	out := make(map[string]*Quote, len(quotable))
	var mu sync.Mutex
	eg, egctx := errgroup.WithContext(ctx)
	for _, n := range quotable {
		n := n
		eg.Go(func() error {
			q, err := e.quoteOne(egctx, symbol, n)
			if err != nil {
				return nil // tolerated: that network simply contributes no quote
			}
			mu.Lock()
			out[n] = q
			mu.Unlock()
			return nil
		})
	}
	_ = eg.Wait()
	return out, nil
}

// FindOpportunities quotes symbol across networks and enumerates directed
// pairs whose profit clears minProfitPct, sorted descending by profit
// (spec §4.7). Fewer than two quotable networks yields an empty list, not an
// error.
func (e *Engine) FindOpportunities(ctx context.Context, symbol string, networks []string, minProfitPct float64) ([]Pair, error) {
	if minProfitPct <= 0 {
		minProfitPct = defaultMinProfitPct
	}

	quotes, err := e.QuoteAll(ctx, symbol, networks)
	if err != nil {
		return nil, err
	}
	if len(quotes) < 2 {
		return nil, nil
	}

	names := make([]string, 0, len(quotes))
	for n := range quotes {
		names = append(names, n)
	}
	sort.Strings(names)

	taken := nowFunc()
	pairs := make([]Pair, 0)
	for _, buyNet := range names {
		for _, sellNet := range names {
			if buyNet == sellNet {
				continue
			}
			buy := quotes[buyNet]
			sell := quotes[sellNet]
			if buy.price <= 0 {
				continue
			}
			if !strings.EqualFold(buy.BaseToken, sell.BaseToken) {
				e.warnf("arbitrage: skipping %s %s->%s: base token mismatch (%s vs %s)",
					symbol, buyNet, sellNet, buy.BaseToken, sell.BaseToken)
				continue
			}
			profitPct := (sell.price - buy.price) / buy.price * 100
			if profitPct < minProfitPct {
				continue
			}
			pairs = append(pairs, Pair{
				Token:            symbol,
				BaseToken:        buy.BaseToken,
				Buy:              Leg{Network: buyNet, Price: buy.Price, DEX: buy.DEX, Liquidity: buy.Liquidity},
				Sell:             Leg{Network: sellNet, Price: sell.Price, DEX: sell.DEX, Liquidity: sell.Liquidity},
				ProfitPct:        profitPct,
				BridgingRequired: !(buy.IsSibling && sell.IsSibling),
				TakenAt:          taken,
			})
		}
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].ProfitPct > pairs[j].ProfitPct })
	return pairs, nil
}

// ListTokens returns the pool-registry summary for list_arbitrage_tokens.
func (e *Engine) ListTokens() []TokenSummary {
	return e.pools.Tokens()
}

// formatDecimal renders a smallest-unit integer as a fixed-point decimal
// string at the given precision, without losing precision to float64 (same
// technique the gas engine uses for wei amounts).
func formatDecimal(raw *big.Int, decimals uint8) string {
	if decimals == 0 {
		return raw.String()
	}
	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	quotient := new(big.Int)
	remainder := new(big.Int)
	quotient.QuoRem(raw, divisor, remainder)

	remStr := remainder.String()
	neg := remainder.Sign() < 0
	if neg {
		remStr = remStr[1:]
	}
	for len(remStr) < int(decimals) {
		remStr = "0" + remStr
	}
	i := len(remStr)
	for i > 1 && remStr[i-1] == '0' {
		i--
	}
	remStr = remStr[:i]

	sign := ""
	if neg && quotient.Sign() == 0 {
		sign = "-"
	}
	return fmt.Sprintf("%s%s.%s", sign, quotient.String(), remStr)
}
