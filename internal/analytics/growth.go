package analytics

import (
	"context"
	"sort"

	"iotagateway/internal/apperrors"
	"iotagateway/internal/chain"
)

// maxGrowthIntermediateBlocks bounds the intermediate samples taken when
// locating the block ~periodDays back (spec §4.4 "Growth").
const maxGrowthIntermediateBlocks = 50

// growthEndpointSampleSize is the small local sample taken around each
// endpoint to estimate that era's average tx-per-block, since scanning the
// full span would defeat the whole point of a bounded sampling approach.
const growthEndpointSampleSize = 10

// Growth estimates deltas between now and a block ~periodDays back by
// sampling at most 50 intermediate blocks to locate it, then comparing the
// two endpoints' block count, tx count, TPS, block-time, and growth rate.
func (g *Gatherer) Growth(ctx context.Context, net *chain.NetworkDescriptor, periodDays float64) (*Growth, error) {
	if periodDays <= 0 {
		return nil, apperrors.NewValidation("periodDays", "must be positive")
	}

	client, err := g.registry.Client(ctx, net)
	if err != nil {
		return nil, err
	}

	latest, err := client.LatestBlock(ctx, false)
	if err != nil {
		return nil, err
	}

	periodSeconds := uint64(periodDays * 24 * 3600)
	target := uint64(0)
	if periodSeconds < latest.Timestamp {
		target = latest.Timestamp - periodSeconds
	}

	past, err := locateBlockNear(ctx, client, latest.Number, target)
	if err != nil {
		return nil, err
	}
	if past == nil || past.Number >= latest.Number || latest.Timestamp <= past.Timestamp {
		return nil, apperrors.NewLogic("insufficient history to compute growth")
	}

	blockSpan := latest.Number - past.Number
	elapsedDays := float64(latest.Timestamp-past.Timestamp) / 86400
	avgBlockTimeNow := float64(latest.Timestamp-past.Timestamp) / float64(blockSpan)

	nowSamples := gatherBlocks(ctx, client, latest.Number, growthEndpointSampleSize)
	pastSamples := gatherBlocks(ctx, client, past.Number, growthEndpointSampleSize)

	nowAvgTx := avgTxPerBlock(nowSamples)
	pastAvgTx := avgTxPerBlock(pastSamples)

	dailyBlocks := float64(blockSpan) / elapsedDays
	dailyTx := dailyBlocks * nowAvgTx
	avgDailyTPS := 0.0
	if avgBlockTimeNow > 0 {
		avgDailyTPS = nowAvgTx / avgBlockTimeNow
	}

	txGrowthRate := 0.0
	if pastAvgTx > 0 {
		txGrowthRate = (nowAvgTx - pastAvgTx) / pastAvgTx * 100
	}

	blockTimeImprovement := 0.0
	nowAvgBlockTime := localAvgBlockTime(nowSamples)
	pastAvgBlockTime := localAvgBlockTime(pastSamples)
	if pastAvgBlockTime > 0 {
		blockTimeImprovement = (pastAvgBlockTime - nowAvgBlockTime) / pastAvgBlockTime * 100
	}

	return &Growth{
		Network:                 net.ShortName,
		PeriodDays:              periodDays,
		DailyBlockCount:         dailyBlocks,
		DailyTxCount:            dailyTx,
		AvgDailyTPS:             avgDailyTPS,
		BlockTimeImprovementPct: blockTimeImprovement,
		TxGrowthRatePct:         txGrowthRate,
	}, nil
}

// localAvgBlockTime averages consecutive-timestamp deltas within one
// endpoint's local sample, the same reduced-precision estimate used for
// nowAvgTx/pastAvgTx — sorted first since gatherBlocks returns samples
// newest first (descending block number), not chronologically.
func localAvgBlockTime(samples []*chain.BlockSample) float64 {
	if len(samples) < 2 {
		return 0
	}
	ordered := append([]*chain.BlockSample(nil), samples...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Timestamp < ordered[j].Timestamp })
	var sum uint64
	for i := 1; i < len(ordered); i++ {
		sum += ordered[i].Timestamp - ordered[i-1].Timestamp
	}
	return float64(sum) / float64(len(ordered)-1)
}

func avgTxPerBlock(samples []*chain.BlockSample) float64 {
	if len(samples) == 0 {
		return 0
	}
	total := 0
	for _, s := range samples {
		total += s.TxCount
	}
	return float64(total) / float64(len(samples))
}

// locateBlockNear performs a bounded binary search over at most
// maxGrowthIntermediateBlocks samples to find the block whose timestamp is
// closest to (but not after) targetTimestamp.
func locateBlockNear(ctx context.Context, client chain.Client, fromNumber uint64, targetTimestamp uint64) (*chain.BlockSample, error) {
	lo, hi := uint64(0), fromNumber
	var best *chain.BlockSample

	steps := 0
	for lo <= hi && steps < maxGrowthIntermediateBlocks {
		steps++
		mid := lo + (hi-lo)/2
		s, err := client.BlockByNumber(ctx, mid, false)
		if err != nil {
			if mid == 0 {
				break
			}
			hi = mid - 1
			continue
		}
		if s.Timestamp <= targetTimestamp {
			best = s
			lo = mid + 1
		} else {
			if mid == 0 {
				break
			}
			hi = mid - 1
		}
	}
	return best, nil
}
