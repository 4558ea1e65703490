package gas

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"iotagateway/internal/apperrors"
	"iotagateway/internal/chain"
	"iotagateway/internal/logger"
)

const (
	congestionLowCeiling    = 0.4
	congestionMediumCeiling = 0.7
)

// tier multipliers are fixed by spec §4.5, expressed as (numerator,
// denominator) pairs to stay in integer arithmetic over wei amounts.
var tierMultipliers = map[Speed][2]int64{
	SpeedSlow:     {8, 10},
	SpeedStandard: {1, 1},
	SpeedFast:     {12, 10},
	SpeedInstant:  {15, 10},
}

// Engine derives gas quotes and transaction-cost estimates.
type Engine struct {
	registry *chain.Registry
	log      logger.Logger
}

// NewEngine builds a gas Engine.
func NewEngine(registry *chain.Registry, log logger.Logger) *Engine {
	return &Engine{registry: registry, log: log}
}

// nowFunc is indirected for deterministic tests.
var nowFunc = time.Now

// Quote fetches the current gas price and newest block, derives congestion
// from the block's gas-used ratio, and returns the four fixed-multiplier
// tiers plus a textual recommendation (spec §4.5).
func (e *Engine) Quote(ctx context.Context, net *chain.NetworkDescriptor) (*Quote, error) {
	client, err := e.registry.Client(ctx, net)
	if err != nil {
		return nil, err
	}

	price, err := client.GetGasPrice(ctx)
	if err != nil {
		return nil, err
	}
	block, err := client.LatestBlock(ctx, false)
	if err != nil {
		return nil, err
	}

	congestion := classifyCongestion(block.GasUsed, block.GasLimit)

	base := big.NewInt(0)
	if block.BaseFeePerGas != nil {
		base = block.BaseFeePerGas
	}

	return &Quote{
		Base:           base.String(),
		Slow:           applyTier(price, SpeedSlow).String(),
		Standard:       applyTier(price, SpeedStandard).String(),
		Fast:           applyTier(price, SpeedFast).String(),
		Instant:        applyTier(price, SpeedInstant).String(),
		Congestion:     congestion,
		Recommendation: recommendation(congestion),
		TakenAt:        nowFunc(),
	}, nil
}

func classifyCongestion(gasUsed, gasLimit uint64) Congestion {
	if gasLimit == 0 {
		return CongestionLow
	}
	ratio := float64(gasUsed) / float64(gasLimit)
	switch {
	case ratio <= congestionLowCeiling:
		return CongestionLow
	case ratio <= congestionMediumCeiling:
		return CongestionMedium
	default:
		return CongestionHigh
	}
}

func recommendation(c Congestion) string {
	switch c {
	case CongestionLow:
		return "network is quiet, standard fee is sufficient"
	case CongestionMedium:
		return "moderate congestion, consider fast for timely inclusion"
	default:
		return "high congestion, use instant for reliable inclusion"
	}
}

func applyTier(price *big.Int, speed Speed) *big.Int {
	m := tierMultipliers[speed]
	out := new(big.Int).Mul(price, big.NewInt(m[0]))
	return out.Div(out, big.NewInt(m[1]))
}

// EstimateCost computes the total cost of a transaction given a gas limit
// and optional explicit gas price (else the quote's standard tier). USD
// conversion is always nil — a documented stub (spec §4.5, §9).
func (e *Engine) EstimateCost(ctx context.Context, net *chain.NetworkDescriptor, gasLimit uint64, explicitPrice *big.Int, speed Speed) (*CostEstimate, error) {
	if gasLimit == 0 {
		return nil, apperrors.NewValidation("gasLimit", "must be positive")
	}

	price := explicitPrice
	if price == nil {
		q, err := e.Quote(ctx, net)
		if err != nil {
			return nil, err
		}
		tier := speed
		if tier == "" {
			tier = SpeedStandard
		}
		tierValue, ok := quoteTierValue(q, tier)
		if !ok {
			return nil, apperrors.NewValidation("speed", fmt.Sprintf("unknown speed %q", tier))
		}
		price = tierValue
	}

	total := new(big.Int).Mul(big.NewInt(int64(gasLimit)), price)

	return &CostEstimate{
		GasLimit:       gasLimit,
		GasPrice:       price.String(),
		TotalWei:       total.String(),
		TotalFormatted: formatNative(total, net.NativeToken.Decimals),
		USDEquivalent:  nil,
	}, nil
}

func quoteTierValue(q *Quote, speed Speed) (*big.Int, bool) {
	var s string
	switch speed {
	case SpeedSlow:
		s = q.Slow
	case SpeedStandard:
		s = q.Standard
	case SpeedFast:
		s = q.Fast
	case SpeedInstant:
		s = q.Instant
	default:
		return nil, false
	}
	v, ok := new(big.Int).SetString(s, 10)
	return v, ok
}

// FormatNative renders a wei amount as a decimal string with the token's
// decimal precision, without losing precision to float64. Exported so other
// components (the balance tool, resources) can reuse the same formatting
// rather than re-deriving it.
func FormatNative(wei *big.Int, decimals uint8) string {
	return formatNative(wei, decimals)
}

func formatNative(wei *big.Int, decimals uint8) string {
	if decimals == 0 {
		return wei.String()
	}
	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	quotient := new(big.Int)
	remainder := new(big.Int)
	quotient.QuoRem(wei, divisor, remainder)

	remStr := remainder.String()
	neg := remainder.Sign() < 0
	if neg {
		remStr = remStr[1:]
	}
	for len(remStr) < int(decimals) {
		remStr = "0" + remStr
	}
	// trim trailing zeros but keep at least one digit
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
