// Package defi defines the pluggable interface DeFi inventory readers
// (staking, lending, liquidity pools) must satisfy. Only a placeholder
// provider ships here; wiring a real synthesis backend is out of scope for
// the core (spec §1, §9).
package defi

import "context"

// StakingSummary is a network's staking inventory snapshot.
type StakingSummary struct {
	Network        string
	TotalStaked    string
	ValidatorCount int
	APYPercent     float64
	Placeholder    bool
}

// StakingProvider is the interface any staking-data backend must satisfy.
type StakingProvider interface {
	Staking(ctx context.Context, network string) (*StakingSummary, error)
}

// PlaceholderStakingProvider returns a fixed, clearly-marked placeholder
// summary. It never fails and never calls out to any chain.
type PlaceholderStakingProvider struct{}

// Staking returns a placeholder summary for network.
func (PlaceholderStakingProvider) Staking(ctx context.Context, network string) (*StakingSummary, error) {
	return &StakingSummary{
		Network:        network,
		TotalStaked:    "0",
		ValidatorCount: 0,
		APYPercent:     0,
		Placeholder:    true,
	}, nil
}
