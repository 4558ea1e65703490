package historian

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	. "github.com/onsi/gomega"

	"iotagateway/internal/chain"
)

// fakeClient is a hand-written test double for chain.Client: just enough
// wired behavior to drive the scanner over a handful of blocks.
type fakeClient struct {
	latest   uint64
	blocks   map[uint64]*chain.BlockSample
	receipts map[common.Hash]*chain.Receipt
}

func (f *fakeClient) BlockNumber(ctx context.Context) (uint64, error) { return f.latest, nil }

func (f *fakeClient) LatestBlock(ctx context.Context, fullTxs bool) (*chain.BlockSample, error) {
	return f.blocks[f.latest], nil
}

func (f *fakeClient) BlockByNumber(ctx context.Context, number uint64, fullTxs bool) (*chain.BlockSample, error) {
	b, ok := f.blocks[number]
	if !ok {
		return nil, nil
	}
	return b, nil
}

func (f *fakeClient) GetTx(ctx context.Context, hash common.Hash) (*chain.TransactionRecord, error) {
	return nil, nil
}

func (f *fakeClient) GetReceipt(ctx context.Context, hash common.Hash) (*chain.Receipt, error) {
	return f.receipts[hash], nil
}

func (f *fakeClient) GetBalance(ctx context.Context, addr common.Address) (*big.Int, error) {
	return big.NewInt(0), nil
}

func (f *fakeClient) GetBytecode(ctx context.Context, addr common.Address) ([]byte, error) {
	return nil, nil
}

func (f *fakeClient) GetGasPrice(ctx context.Context) (*big.Int, error) { return big.NewInt(0), nil }

func (f *fakeClient) EstimateGas(ctx context.Context, call chain.Call) (uint64, error) {
	return 0, nil
}

func (f *fakeClient) Call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	return nil, nil
}

func hash(b byte) common.Hash {
	var h common.Hash
	h[31] = b
	return h
}

func addr(b byte) common.Address {
	var a common.Address
	a[19] = b
	return a
}

func txRecord(h common.Hash, from common.Address, to *common.Address, value *big.Int, blockNumber uint64) *chain.TransactionRecord {
	ts := blockNumber * 10
	return &chain.TransactionRecord{
		Hash:             h,
		From:             from,
		To:               to,
		Value:            value,
		Gas:              21000,
		GasPriceOrFeeCap: big.NewInt(1),
		BlockNumber:      blockNumber,
		BlockTimestamp:   &ts,
	}
}

func TestAddressMetricsZeroMatchesYieldsZeroCountsAndNilFirstSeen(t *testing.T) {
	g := NewWithT(t)

	to := addr(2)
	f := &fakeClient{
		latest: 1,
		blocks: map[uint64]*chain.BlockSample{
			1: {Number: 1, Timestamp: 10, GasUsed: 1000, GasLimit: 2000, Txs: []chain.TxRef{
				{Tx: txRecord(hash(1), addr(9), &to, big.NewInt(5), 1)},
			}},
		},
		receipts: map[common.Hash]*chain.Receipt{},
	}

	w, err := scanClient(context.Background(), f)
	g.Expect(err).NotTo(HaveOccurred())
	m := aggregateAddressMetrics(w, addr(3))
	g.Expect(m.TxCount).To(Equal(0))
	g.Expect(m.FirstSeen).To(BeNil())
	g.Expect(m.LastSeen).To(BeNil())
	g.Expect(m.ScanCap).To(Equal(maxScanBlocks))
}

func TestAddressMetricsAggregatesSentAndReceived(t *testing.T) {
	g := NewWithT(t)

	me := addr(1)
	other := addr(2)
	f := &fakeClient{
		latest: 2,
		blocks: map[uint64]*chain.BlockSample{
			1: {Number: 1, Timestamp: 10, Txs: []chain.TxRef{
				{Tx: txRecord(hash(1), me, &other, big.NewInt(100), 1)},
			}},
			2: {Number: 2, Timestamp: 20, Txs: []chain.TxRef{
				{Tx: txRecord(hash(2), other, &me, big.NewInt(40), 2)},
			}},
		},
		receipts: map[common.Hash]*chain.Receipt{
			hash(1): {GasUsed: 21000},
			hash(2): {GasUsed: 21000},
		},
	}

	w, err := scanClient(context.Background(), f)
	g.Expect(err).NotTo(HaveOccurred())
	m := aggregateAddressMetrics(w, me)
	g.Expect(m.TxCount).To(Equal(2))
	g.Expect(m.Sent).To(Equal(1))
	g.Expect(m.Received).To(Equal(1))
	g.Expect(m.TotalSent.String()).To(Equal("100"))
	g.Expect(m.TotalReceived.String()).To(Equal("40"))
	g.Expect(m.FirstSeen).NotTo(BeNil())
	g.Expect(m.LastSeen).NotTo(BeNil())
	g.Expect(m.AccountAge).NotTo(BeNil())
}

func TestScanClientClassifiesExhaustively(t *testing.T) {
	g := NewWithT(t)

	to := addr(5)
	deploy := txRecord(hash(2), addr(1), nil, big.NewInt(0), 1)
	deploy.Input = []byte{0x60, 0x80}
	f := &fakeClient{
		latest: 1,
		blocks: map[uint64]*chain.BlockSample{
			1: {Number: 1, Timestamp: 10, Txs: []chain.TxRef{
				{Tx: txRecord(hash(1), addr(1), &to, big.NewInt(1), 1)},
				{Tx: deploy},
			}},
		},
		receipts: map[common.Hash]*chain.Receipt{
			hash(1): {GasUsed: 21000},
		},
	}

	w, err := scanClient(context.Background(), f)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(w.txs).To(HaveLen(2))
	for _, tx := range w.txs {
		g.Expect(tx.Label).NotTo(BeEmpty())
	}
}

func TestScanClientTruncatesToMaxTxPerBlock(t *testing.T) {
	g := NewWithT(t)

	to := addr(5)
	txs := make([]chain.TxRef, 0, maxTxPerBlock+5)
	for i := 0; i < maxTxPerBlock+5; i++ {
		txs = append(txs, chain.TxRef{Tx: txRecord(hash(byte(i+1)), addr(1), &to, big.NewInt(1), 1)})
	}
	f := &fakeClient{
		latest:   1,
		blocks:   map[uint64]*chain.BlockSample{1: {Number: 1, Timestamp: 10, Txs: txs}},
		receipts: map[common.Hash]*chain.Receipt{},
	}

	w, err := scanClient(context.Background(), f)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(w.txs).To(HaveLen(maxTxPerBlock))
}
