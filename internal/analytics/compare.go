package analytics

import (
	"context"
	"math/big"
	"sort"

	"golang.org/x/sync/errgroup"

	"iotagateway/internal/chain"
)

// comparisonSampleSize is the reduced sample used for the non-primary
// networks in a comparison, trading precision for latency (spec §4.4).
const comparisonSampleSize = 5

// Compare runs metrics gathering in parallel across primary and others, then
// returns four rankings: TPS descending, block-time ascending, gas-price
// ascending, utilization descending. A network that errors out still enters
// the rankings with zeroed values, per spec §4.4.
func (g *Gatherer) Compare(ctx context.Context, primary *chain.NetworkDescriptor, others []*chain.NetworkDescriptor) (*Comparison, error) {
	all := append([]*chain.NetworkDescriptor{primary}, others...)

	metrics := make([]*Metrics, len(all))
	eg, egctx := errgroup.WithContext(ctx)
	for i, net := range all {
		i, net := i, net
		sampleSize := comparisonSampleSize
		if i == 0 {
			sampleSize = defaultSampleSize
		}
		eg.Go(func() error {
			m, err := g.Gather(egctx, net, sampleSize)
			if err != nil {
				m = &Metrics{Network: net.ShortName, Healthy: false, GasPriceWei: "0"}
			}
			metrics[i] = m
			return nil
		})
	}
	_ = eg.Wait()

	byName := make(map[string]*Metrics, len(metrics))
	chainIDByName := make(map[string]int64, len(all))
	for i, m := range metrics {
		byName[m.Network] = m
		chainIDByName[m.Network] = all[i].ChainID
	}

	names := make([]string, len(metrics))
	for i, m := range metrics {
		names[i] = m.Network
	}

	rankings := []Ranking{
		rank(names, byName, chainIDByName, func(m *Metrics) float64 { return m.RecentTPS }, true),
		rank(names, byName, chainIDByName, func(m *Metrics) float64 { return m.AvgBlockTime }, false),
		rank(names, byName, chainIDByName, func(m *Metrics) float64 { return gasPriceFloat(m.GasPriceWei) }, false),
		rank(names, byName, chainIDByName, func(m *Metrics) float64 { return m.Utilization }, true),
	}
	rankings[0].Criterion = "tps_desc"
	rankings[1].Criterion = "block_time_asc"
	rankings[2].Criterion = "gas_price_asc"
	rankings[3].Criterion = "utilization_desc"

	return &Comparison{Primary: primary.ShortName, Metrics: byName, Rankings: rankings}, nil
}

func rank(names []string, byName map[string]*Metrics, chainIDByName map[string]int64, value func(*Metrics) float64, descending bool) Ranking {
	ordered := append([]string(nil), names...)
	sort.Slice(ordered, func(i, j int) bool {
		vi, vj := value(byName[ordered[i]]), value(byName[ordered[j]])
		if vi == vj {
			return chainIDByName[ordered[i]] < chainIDByName[ordered[j]]
		}
		if descending {
			return vi > vj
		}
		return vi < vj
	})
	return Ranking{Networks: ordered}
}

func gasPriceFloat(wei string) float64 {
	v, ok := new(big.Int).SetString(wei, 10)
	if !ok {
		return 0
	}
	f := new(big.Float).SetInt(v)
	out, _ := f.Float64()
	return out
}
