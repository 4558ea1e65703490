package analytics

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	. "github.com/onsi/gomega"

	"iotagateway/internal/chain"
	"iotagateway/internal/config"
)

// fakeClient is a hand-written test double for chain.Client, in the
// teacher's habit of small purpose-built doubles rather than a mocking
// framework.
type fakeClient struct {
	blocks    map[uint64]*chain.BlockSample
	height    uint64
	gasPrice  *big.Int
	failAt    map[uint64]bool
}

func newFakeClient() *fakeClient {
	return &fakeClient{blocks: map[uint64]*chain.BlockSample{}, gasPrice: big.NewInt(1), failAt: map[uint64]bool{}}
}

func (f *fakeClient) BlockNumber(ctx context.Context) (uint64, error) { return f.height, nil }

func (f *fakeClient) LatestBlock(ctx context.Context, fullTxs bool) (*chain.BlockSample, error) {
	return f.BlockByNumber(ctx, f.height, fullTxs)
}

func (f *fakeClient) BlockByNumber(ctx context.Context, number uint64, fullTxs bool) (*chain.BlockSample, error) {
	if f.failAt[number] {
		return nil, errTest
	}
	s, ok := f.blocks[number]
	if !ok {
		return nil, errTest
	}
	return s, nil
}

var errTest = &testError{"no such block"}

type testError struct{ msg string }

func (e *testError) Error() string { return e.msg }

func (f *fakeClient) GetTx(ctx context.Context, hash common.Hash) (*chain.TransactionRecord, error) {
	return nil, errTest
}
func (f *fakeClient) GetReceipt(ctx context.Context, hash common.Hash) (*chain.Receipt, error) {
	return nil, errTest
}
func (f *fakeClient) GetBalance(ctx context.Context, addr common.Address) (*big.Int, error) {
	return big.NewInt(0), nil
}
func (f *fakeClient) GetBytecode(ctx context.Context, addr common.Address) ([]byte, error) {
	return nil, nil
}
func (f *fakeClient) GetGasPrice(ctx context.Context) (*big.Int, error) { return f.gasPrice, nil }
func (f *fakeClient) EstimateGas(ctx context.Context, call chain.Call) (uint64, error) {
	return 21000, nil
}
func (f *fakeClient) Call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	return nil, errTest
}

func TestGatherWithFewerThanTwoUsableBlocksZeroesRates(t *testing.T) {
	g := NewWithT(t)
	fc := newFakeClient()
	fc.height = 10
	fc.blocks[10] = &chain.BlockSample{Number: 10, Timestamp: uint64(time.Now().Unix()), GasUsed: 100, GasLimit: 1000, TxCount: 1}

	samples := gatherBlocks(context.Background(), fc, fc.height, 20)
	g.Expect(samples).To(HaveLen(1))

	m := gatherFrom(t, fc, 20)
	g.Expect(m.SampleSize).To(Equal(1))
	g.Expect(m.Healthy).To(BeFalse())
	g.Expect(m.AvgBlockTime).To(Equal(0.0))
	g.Expect(m.RecentTPS).To(Equal(0.0))
	g.Expect(m.Utilization).To(Equal(0.0))
}

// gatherFrom runs Gather against fc, pinned as the s1 client of a fresh
// registry.
func gatherFrom(t *testing.T, fc *fakeClient, sampleSize int) *Metrics {
	t.Helper()
	registry := chain.New(&config.Config{}, nil)
	registry.RegisterClient("s1", fc)
	net, err := registry.Resolve("s1")
	if err != nil {
		t.Fatalf("resolve s1: %v", err)
	}
	m, err := NewGatherer(registry, nil, nil).Gather(context.Background(), net, sampleSize)
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	return m
}

func TestGatherUtilizationUsesNewestBlockGasLimit(t *testing.T) {
	g := NewWithT(t)
	fc := newFakeClient()
	now := uint64(time.Now().Unix())
	fc.height = 3
	fc.blocks[1] = &chain.BlockSample{Number: 1, Timestamp: now - 20, GasUsed: 50, GasLimit: 1000, TxCount: 2}
	fc.blocks[2] = &chain.BlockSample{Number: 2, Timestamp: now - 10, GasUsed: 60, GasLimit: 1000, TxCount: 3}
	fc.blocks[3] = &chain.BlockSample{Number: 3, Timestamp: now, GasUsed: 70, GasLimit: 2000, TxCount: 4}

	samples := gatherBlocks(context.Background(), fc, fc.height, 3)
	g.Expect(samples).To(HaveLen(3))

	// (50+60+70) / (3 * 2000) * 100 = 3%; the older blocks' 1000 limit
	// would give 6%.
	m := gatherFrom(t, fc, 3)
	g.Expect(m.Utilization).To(BeNumerically("~", 3.0, 1e-9))
}

func TestGasLimitZeroYieldsZeroUtilizationNotPanic(t *testing.T) {
	g := NewWithT(t)
	fc := newFakeClient()
	now := uint64(time.Now().Unix())
	fc.height = 2
	fc.blocks[1] = &chain.BlockSample{Number: 1, Timestamp: now - 10, GasUsed: 10, GasLimit: 1000, TxCount: 1}
	fc.blocks[2] = &chain.BlockSample{Number: 2, Timestamp: now, GasUsed: 10, GasLimit: 0, TxCount: 1}

	m := gatherFrom(t, fc, 2)
	g.Expect(m.Utilization).To(Equal(0.0))
}
