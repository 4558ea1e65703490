package arbitrage

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	. "github.com/onsi/gomega"

	"iotagateway/internal/chain"
	"iotagateway/internal/config"
	"iotagateway/internal/token"
)

var (
	fTypeString, _  = abi.NewType("string", "", nil)
	fTypeUint8, _   = abi.NewType("uint8", "", nil)
	fTypeUint256, _ = abi.NewType("uint256", "", nil)

	fArgsString  = abi.Arguments{{Type: fTypeString}}
	fArgsUint8   = abi.Arguments{{Type: fTypeUint8}}
	fArgsUint256 = abi.Arguments{{Type: fTypeUint256}}
)

// fakeContract is one ABI-callable address in the fake client, keyed by
// selector.
type fakeContract struct {
	onGetReserves func() []byte
	onToken0      func() []byte
	onToken1      func() []byte
	onName        func() []byte
	onSymbol      func() []byte
	onDecimals    func() []byte
	onTotalSupply func() []byte
}

type fakeClient struct {
	contracts map[common.Address]*fakeContract
}

func (f *fakeClient) BlockNumber(ctx context.Context) (uint64, error) { return 0, nil }
func (f *fakeClient) LatestBlock(ctx context.Context, fullTxs bool) (*chain.BlockSample, error) {
	return nil, nil
}
func (f *fakeClient) BlockByNumber(ctx context.Context, number uint64, fullTxs bool) (*chain.BlockSample, error) {
	return nil, nil
}
func (f *fakeClient) GetTx(ctx context.Context, hash common.Hash) (*chain.TransactionRecord, error) {
	return nil, nil
}
func (f *fakeClient) GetReceipt(ctx context.Context, hash common.Hash) (*chain.Receipt, error) {
	return nil, nil
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
	c, ok := f.contracts[to]
	if !ok || len(data) < 4 {
		return nil, nil
	}
	var sel [4]byte
	copy(sel[:], data[:4])
	switch sel {
	case asSel(selGetReserves):
		return c.onGetReserves(), nil
	case asSel(selToken0):
		return c.onToken0(), nil
	case asSel(selToken1):
		return c.onToken1(), nil
	case asSel([]byte{0x06, 0xfd, 0xde, 0x03}): // name()
		return c.onName(), nil
	case asSel([]byte{0x95, 0xd8, 0x9b, 0x41}): // symbol()
		return c.onSymbol(), nil
	case asSel([]byte{0x31, 0x3c, 0xe5, 0x67}): // decimals()
		return c.onDecimals(), nil
	case asSel([]byte{0x18, 0x16, 0x0d, 0xdd}): // totalSupply()
		return c.onTotalSupply(), nil
	}
	return nil, nil
}

func asSel(b []byte) [4]byte {
	var s [4]byte
	copy(s[:], b)
	return s
}

func packReserves(r0, r1 *big.Int) []byte {
	b, _ := argsReserves.Pack(r0, r1, uint32(0))
	return b
}

func packAddress(a common.Address) []byte {
	b, _ := argsAddress.Pack(a)
	return b
}

func packString(s string) []byte {
	b, _ := fArgsString.Pack(s)
	return b
}

func packUint8(v uint8) []byte {
	b, _ := fArgsUint8.Pack(v)
	return b
}

func packUint256(v *big.Int) []byte {
	b, _ := fArgsUint256.Pack(v)
	return b
}

func tokenContract(name, symbol string, decimals uint8) *fakeContract {
	return &fakeContract{
		onName:        func() []byte { return packString(name) },
		onSymbol:      func() []byte { return packString(symbol) },
		onDecimals:    func() []byte { return packUint8(decimals) },
		onTotalSupply: func() []byte { return packUint256(big.NewInt(0)) },
	}
}

func newTestEngine(t *testing.T, network string, reserve0, reserve1 *big.Int, decimals0, decimals1 uint8, symbol0, symbol1 string) (*Engine, common.Address) {
	pools := NewRegistry()
	entry, ok := pools.Entry("USDC", network)
	if !ok {
		t.Fatalf("no pool entry for USDC@%s", network)
	}

	token0Addr := common.HexToAddress("0xaaaa000000000000000000000000000000000a")
	token1Addr := common.HexToAddress("0xbbbb000000000000000000000000000000000b")

	fc := &fakeClient{contracts: map[common.Address]*fakeContract{
		entry.PairAddress: {
			onGetReserves: func() []byte { return packReserves(reserve0, reserve1) },
			onToken0:      func() []byte { return packAddress(token0Addr) },
			onToken1:      func() []byte { return packAddress(token1Addr) },
		},
		token0Addr: tokenContract("Token0", symbol0, decimals0),
		token1Addr: tokenContract("Token1", symbol1, decimals1),
	}}

	registry := chain.New(&config.Config{}, nil)
	registry.RegisterClient(network, fc)

	reader, err := token.NewReader(registry, nil)
	if err != nil {
		t.Fatalf("new reader: %v", err)
	}

	return NewEngine(registry, reader, pools, nil), entry.PairAddress
}

func TestQuoteOneIdentifiesTargetBySymbolEitherSlot(t *testing.T) {
	g := NewWithT(t)

	// USDC is token1, PRIM-like base is token0: reserve0=2_000_000 (base,
	// 6 decimals), reserve1=1_000_000 (USDC, 6 decimals) -> price ~ 2.0
	e, _ := newTestEngine(t, "s1", big.NewInt(2_000_000), big.NewInt(1_000_000), 6, 6, "PRIM", "USDC")

	q, err := e.quoteOne(context.Background(), "USDC", "s1")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(q.Price).To(Equal("2.0"))
	g.Expect(q.Liquidity).To(Equal("1.0"))
	g.Expect(q.IsSibling).To(BeTrue())

	// Same pool with the slots swapped: USDC is token0 (reserve0=1_000_000),
	// PRIM is token1 (reserve1=2_000_000) -> the same price ~ 2.0
	e0, _ := newTestEngine(t, "s1", big.NewInt(1_000_000), big.NewInt(2_000_000), 6, 6, "USDC", "PRIM")

	q0, err := e0.quoteOne(context.Background(), "USDC", "s1")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(q0.Price).To(Equal("2.0"))
	g.Expect(q0.Liquidity).To(Equal("1.0"))
	g.Expect(q0.BaseToken).To(Equal("PRIM"))
}

func TestFindOpportunitiesRequiresAtLeastTwoQuotableNetworks(t *testing.T) {
	g := NewWithT(t)

	e, _ := newTestEngine(t, "s1", big.NewInt(2_000_000), big.NewInt(1_000_000), 6, 6, "PRIM", "USDC")

	pairs, err := e.FindOpportunities(context.Background(), "USDC", []string{"s1"}, 0.1)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(pairs).To(BeEmpty())
}

func TestFindOpportunitiesSkipsMismatchedBaseTokenPairs(t *testing.T) {
	g := NewWithT(t)

	pools := NewRegistry()
	token0Addr := common.HexToAddress("0xaaaa000000000000000000000000000000000a")
	token1Addr := common.HexToAddress("0xbbbb000000000000000000000000000000000b")
	token2Addr := common.HexToAddress("0xcccc000000000000000000000000000000000c")

	entryS1, _ := pools.Entry("USDC", "s1")
	entryS2, _ := pools.Entry("USDC", "s2")

	fc := &fakeClient{contracts: map[common.Address]*fakeContract{
		entryS1.PairAddress: {
			onGetReserves: func() []byte { return packReserves(big.NewInt(2_000_000), big.NewInt(1_000_000)) },
			onToken0:      func() []byte { return packAddress(token0Addr) },
			onToken1:      func() []byte { return packAddress(token1Addr) },
		},
		entryS2.PairAddress: {
			onGetReserves: func() []byte { return packReserves(big.NewInt(1_000_000), big.NewInt(5_000_000)) },
			onToken0:      func() []byte { return packAddress(token1Addr) },
			onToken1:      func() []byte { return packAddress(token2Addr) },
		},
		token0Addr: tokenContract("Base0", "PRIM", 6),
		token1Addr: tokenContract("Target", "USDC", 6),
		token2Addr: tokenContract("Base1", "WETH", 18),
	}}

	registry := chain.New(&config.Config{}, nil)
	registry.RegisterClient("s1", fc)
	registry.RegisterClient("s2", fc)

	reader, err := token.NewReader(registry, nil)
	g.Expect(err).NotTo(HaveOccurred())

	e := NewEngine(registry, reader, pools, nil)

	pairs, err := e.FindOpportunities(context.Background(), "USDC", []string{"s1", "s2"}, 0.1)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(pairs).To(BeEmpty())
}

func TestListTokensReportsSiblingCoverage(t *testing.T) {
	g := NewWithT(t)
	pools := NewRegistry()
	e := NewEngine(nil, nil, pools, nil)

	summaries := e.ListTokens()
	found := false
	for _, s := range summaries {
		if s.Symbol == "USDC" {
			found = true
			g.Expect(s.HasSiblingQuote).To(BeTrue())
			g.Expect(s.NetworkCount).To(BeNumerically(">=", 2))
		}
	}
	g.Expect(found).To(BeTrue())
}
