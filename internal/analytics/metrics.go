package analytics

import (
	"context"
	"math/big"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"iotagateway/internal/chain"
	"iotagateway/internal/logger"
	"iotagateway/internal/token"
)

const (
	// defaultSampleSize is used when the caller does not override it (spec §4.4).
	defaultSampleSize = 20

	// batchSize is the concurrency cap for block sampling (spec §5).
	batchSize = 5

	// healthyWindow is the maximum newest-block age for a network to be
	// reported healthy (spec §4.4).
	healthyWindow = 60 * time.Second
)

// Gatherer computes network analytics from sampled blocks.
type Gatherer struct {
	registry *chain.Registry
	reader   *token.Reader
	log      logger.Logger
}

// NewGatherer builds a Gatherer.
func NewGatherer(registry *chain.Registry, reader *token.Reader, log logger.Logger) *Gatherer {
	return &Gatherer{registry: registry, reader: reader, log: log}
}

// nowFunc is indirected for deterministic testing of the health window.
var nowFunc = time.Now

// Gather samples the most recent sampleSize blocks (default 20 when <= 0)
// and derives the metrics described in spec §3/§4.4. Block sampling is
// batched in groups of at most 5 concurrent RPC reads; partial batch
// failures are tolerated — the result is computed over whatever was
// obtained. Fewer than 2 usable blocks degrades every derived rate to zero
// with healthy=false, rather than failing the call.
func (g *Gatherer) Gather(ctx context.Context, net *chain.NetworkDescriptor, sampleSize int) (*Metrics, error) {
	if sampleSize <= 0 {
		sampleSize = defaultSampleSize
	}

	client, err := g.registry.Client(ctx, net)
	if err != nil {
		return nil, err
	}

	height, err := client.BlockNumber(ctx)
	if err != nil {
		return nil, err
	}

	samples := gatherBlocks(ctx, client, height, sampleSize)

	m := &Metrics{
		Network:     net.ShortName,
		BlockHeight: height,
		SampleSize:  len(samples),
		TokenInfo: token.FungibleMetadata{
			Name:        net.NativeToken.Name,
			Symbol:      net.NativeToken.Symbol,
			Decimals:    net.NativeToken.Decimals,
			TotalSupply: big.NewInt(0),
		},
	}

	if price, err := client.GetGasPrice(ctx); err == nil {
		m.GasPriceWei = price.String()
	} else {
		m.GasPriceWei = "0"
	}

	if len(samples) < 2 {
		m.Healthy = false
		return m, nil
	}

	sort.Slice(samples, func(i, j int) bool { return samples[i].Timestamp < samples[j].Timestamp })

	var gasUsedSum, txSum uint64
	for _, s := range samples {
		gasUsedSum += s.GasUsed
		txSum += uint64(s.TxCount)
	}
	var timeDiffSum uint64
	for i := 1; i < len(samples); i++ {
		timeDiffSum += samples[i].Timestamp - samples[i-1].Timestamp
	}

	k := float64(len(samples))
	m.AvgBlockTime = float64(timeDiffSum) / (k - 1)
	m.AvgTxPerBlock = float64(txSum) / k
	if m.AvgBlockTime > 0 {
		m.RecentTPS = m.AvgTxPerBlock / m.AvgBlockTime
	}
	m.AvgGasUsed = float64(gasUsedSum) / k

	newest := samples[len(samples)-1]
	if newest.GasLimit > 0 {
		m.Utilization = float64(gasUsedSum) / (k * float64(newest.GasLimit)) * 100
	}

	m.Healthy = nowFunc().Unix()-int64(newest.Timestamp) < int64(healthyWindow.Seconds())

	return m, nil
}

// gatherBlocks fetches the sampleSize most recent blocks ending at height,
// in batches of at most batchSize concurrent reads, tolerating individual
// and whole-batch failures.
func gatherBlocks(ctx context.Context, client chain.Client, height uint64, sampleSize int) []*chain.BlockSample {
	numbers := make([]uint64, 0, sampleSize)
	for i := 0; i < sampleSize && int64(height)-int64(i) >= 0; i++ {
		numbers = append(numbers, height-uint64(i))
	}

	results := make([]*chain.BlockSample, len(numbers))
	for start := 0; start < len(numbers); start += batchSize {
		end := start + batchSize
		if end > len(numbers) {
			end = len(numbers)
		}
		batch := numbers[start:end]

		g, gctx := errgroup.WithContext(ctx)
		batchResults := make([]*chain.BlockSample, len(batch))
		for i, n := range batch {
			i, n := i, n
			g.Go(func() error {
				s, err := client.BlockByNumber(gctx, n, false)
				if err != nil {
					// tolerated: this slot stays nil, contributing nothing.
					return nil
				}
				batchResults[i] = s
				return nil
			})
		}
		_ = g.Wait() // errors are never returned by the goroutines above

		for i, s := range batchResults {
			if s != nil {
				results[start+i] = s
			}
		}
	}

	usable := make([]*chain.BlockSample, 0, len(results))
	for _, s := range results {
		if s != nil {
			usable = append(usable, s)
		}
	}
	return usable
}
