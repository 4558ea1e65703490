package dispatch

import (
	"context"
	"encoding/json"
	"math/big"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"

	"iotagateway/internal/analytics"
	"iotagateway/internal/apperrors"
	"iotagateway/internal/arbitrage"
	"iotagateway/internal/chain"
	"iotagateway/internal/defi"
	"iotagateway/internal/gas"
	"iotagateway/internal/historian"
	"iotagateway/internal/logger"
	"iotagateway/internal/token"
)

// Dispatcher wires every gateway component (C1-C7) behind the closed tool
// and resource set (spec §4.8, §6.3, §6.4).
type Dispatcher struct {
	registry  *chain.Registry
	tokens    *token.Reader
	analytics *analytics.Gatherer
	gasEngine *gas.Engine
	scanner   *historian.Scanner
	arb       *arbitrage.Engine
	staking   defi.StakingProvider
	log       logger.Logger
}

// New builds a Dispatcher over the already-constructed components.
func New(
	registry *chain.Registry,
	tokens *token.Reader,
	analyticsGatherer *analytics.Gatherer,
	gasEngine *gas.Engine,
	scanner *historian.Scanner,
	arb *arbitrage.Engine,
	staking defi.StakingProvider,
	log logger.Logger,
) *Dispatcher {
	if staking == nil {
		staking = defi.PlaceholderStakingProvider{}
	}
	return &Dispatcher{
		registry:  registry,
		tokens:    tokens,
		analytics: analyticsGatherer,
		gasEngine: gasEngine,
		scanner:   scanner,
		arb:       arb,
		staking:   staking,
		log:       log,
	}
}

// bizHandler is a business-logic handler before it is wrapped into the
// fixed tool envelope.
type bizHandler func(ctx context.Context, args map[string]interface{}) (interface{}, error)

// wrap adapts a bizHandler into a ToolHandler: it validates args against
// schema, runs the handler, and always returns a fully-formed envelope —
// a handler error becomes an isError:true envelope, never a Go error, since
// the envelope itself is the contract with the transport (spec §4.8).
func wrap(schema Schema, h bizHandler) ToolHandler {
	return func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		if err := validate(schema, args); err != nil {
			return errorEnvelope(err), nil
		}
		result, err := h(ctx, args)
		if err != nil {
			return errorEnvelope(err), nil
		}
		return successEnvelope(result), nil
	}
}

func successEnvelope(result interface{}) *ToolEnvelope {
	body, err := json.Marshal(result)
	if err != nil {
		return errorEnvelope(err)
	}
	return &ToolEnvelope{Content: []ToolContent{{Type: "text", Text: string(body)}}, RequestID: uuid.NewString()}
}

func errorEnvelope(err error) *ToolEnvelope {
	return &ToolEnvelope{Content: []ToolContent{{Type: "text", Text: err.Error()}}, IsError: true, RequestID: uuid.NewString()}
}

func argString(args map[string]interface{}, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

// RegisterAll registers the closed tool set (spec §4.8, §6.3) and the
// resource templates (§6.4) against the downstream server.
func (d *Dispatcher) RegisterAll(tools ToolServer, resources ResourceServer) {
	d.registerTools(tools)
	d.registerResources(resources)
}

func (d *Dispatcher) resolve(args map[string]interface{}) (*chain.NetworkDescriptor, error) {
	return d.registry.ResolveOrDefault(argString(args, "network"))
}

// handleNetworkInfo returns the registry entry plus the full C4 network
// metrics snapshot (spec §3 "Network metrics", §4.4 Gather) for the
// resolved network.
func (d *Dispatcher) handleNetworkInfo(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	net, err := d.resolve(args)
	if err != nil {
		return nil, err
	}
	metrics, err := d.analytics.Gather(ctx, net, 0)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"network":     net.ShortName,
		"chainId":     net.ChainID,
		"displayName": net.DisplayName,
		"isSibling":   net.IsSiblingFamily,
		"metrics":     metrics,
	}, nil
}

func (d *Dispatcher) handleBalance(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	net, err := d.resolve(args)
	if err != nil {
		return nil, err
	}
	addrStr := argString(args, "address")
	if !common.IsHexAddress(addrStr) {
		return nil, apperrors.NewValidation("address", "not a valid hex address")
	}
	addr := common.HexToAddress(addrStr)
	client, err := d.registry.Client(ctx, net)
	if err != nil {
		return nil, err
	}
	raw, err := client.GetBalance(ctx, addr)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"network":   net.ShortName,
		"address":   addr.Hex(),
		"raw":       raw.String(),
		"formatted": gas.FormatNative(raw, net.NativeToken.Decimals),
	}, nil
}

func (d *Dispatcher) handleTransferDelegated(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	return nil, apperrors.NewUnsupported("transfer_iota (delegated to the signer module)")
}

func (d *Dispatcher) handleDeployDelegated(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	return nil, apperrors.NewUnsupported("deploy_iota_smart_contract (delegated to the signer module)")
}

func (d *Dispatcher) handleStaking(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	net, err := d.resolve(args)
	if err != nil {
		return nil, err
	}
	return d.staking.Staking(ctx, net.ShortName)
}

// finalityDepth buckets how far to trust the chain head given how stale it
// is: a fresher head has had less time to be reorged out from under us
// (spec §6.3 "verify_*_network_status" returns an estimated finality depth;
// the same 60s staleness threshold C4's Gather uses for `healthy`).
func finalityDepth(delay time.Duration) string {
	switch {
	case delay < 30*time.Second:
		return "high"
	case delay < 60*time.Second:
		return "medium"
	default:
		return "low"
	}
}

func (d *Dispatcher) handleVerifyStatus(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	net, err := d.resolve(args)
	if err != nil {
		return nil, err
	}
	client, err := d.registry.Client(ctx, net)
	if err != nil {
		return nil, err
	}
	block, err := client.LatestBlock(ctx, false)
	if err != nil {
		return nil, err
	}
	blockTime := time.Unix(int64(block.Timestamp), 0)
	delay := time.Since(blockTime)
	status := "healthy"
	if delay >= 60*time.Second {
		status = "degraded"
	}
	return map[string]interface{}{
		"network":        net.ShortName,
		"status":         status,
		"latestBlock":    strconv.FormatUint(block.Number, 10),
		"blockTimestamp": blockTime,
		"blockDelay":     historian.BucketAge(delay) + " ago",
		"finality":       finalityDepth(delay),
	}, nil
}

func (d *Dispatcher) handleGasPrices(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	net, err := d.resolve(args)
	if err != nil {
		return nil, err
	}
	return d.gasEngine.Quote(ctx, net)
}

func (d *Dispatcher) handleEstimateCost(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	net, err := d.resolve(args)
	if err != nil {
		return nil, err
	}
	gasLimit, ok := new(big.Int).SetString(argString(args, "gasLimit"), 10)
	if !ok {
		return nil, apperrors.NewValidation("gasLimit", "must be a base-10 integer")
	}

	var explicitPrice *big.Int
	if p := argString(args, "gasPrice"); p != "" {
		v, ok := new(big.Int).SetString(p, 10)
		if !ok {
			return nil, apperrors.NewValidation("gasPrice", "must be a base-10 integer")
		}
		explicitPrice = v
	}
	speed := gas.Speed(argString(args, "speed"))

	return d.gasEngine.EstimateCost(ctx, net, gasLimit.Uint64(), explicitPrice, speed)
}

func (d *Dispatcher) handleAnalyzeContract(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	net, err := d.resolve(args)
	if err != nil {
		return nil, err
	}
	addrStr := argString(args, "contractAddress")
	if !common.IsHexAddress(addrStr) {
		return nil, apperrors.NewValidation("contractAddress", "not a valid hex address")
	}
	abiJSON, err := json.Marshal(args["abi"])
	if err != nil {
		return nil, apperrors.NewValidation("abi", "could not be re-serialized as JSON")
	}
	return d.tokens.Analyze(ctx, net, common.HexToAddress(addrStr), string(abiJSON))
}

func (d *Dispatcher) handleCrossChainPrice(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	symbol := argString(args, "token")
	network := argString(args, "network")
	quotes, err := d.arb.QuoteAll(ctx, symbol, []string{network})
	if err != nil {
		return nil, err
	}
	q, ok := quotes[network]
	if !ok {
		return nil, apperrors.NewNotFound("pool", symbol+"@"+network)
	}
	return q, nil
}

// findArbitrageArgs is decoded via mapstructure rather than the single-field
// arg* helpers: this tool has three optional/required fields of differing
// shape, the natural case for a typed decode instead of three lookups.
type findArbitrageArgs struct {
	Token            string
	Networks         []string
	MinProfitPercent float64 `mapstructure:"minProfitPercent"`
}

func (d *Dispatcher) handleFindArbitrage(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	var parsed findArbitrageArgs
	if err := mapstructure.Decode(args, &parsed); err != nil {
		return nil, apperrors.NewValidation("networks", "could not be decoded")
	}

	networks := parsed.Networks
	if len(networks) == 0 {
		networks = defaultArbitrageNetworks(d.registry)
	}

	pairs, err := d.arb.FindOpportunities(ctx, parsed.Token, networks, parsed.MinProfitPercent)
	if err != nil {
		return nil, err
	}
	preview := pairs
	if len(preview) > 3 {
		preview = preview[:3]
	}
	return map[string]interface{}{
		"token":       parsed.Token,
		"count":       len(pairs),
		"preview":     preview,
		"opportunity": pairs,
	}, nil
}

func (d *Dispatcher) handleListArbitrageTokens(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	return d.arb.ListTokens(), nil
}

func defaultArbitrageNetworks(registry *chain.Registry) []string {
	descs := registry.List()
	out := make([]string, 0, len(descs))
	for _, d := range descs {
		out = append(out, d.ShortName)
	}
	return out
}
